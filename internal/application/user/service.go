// Package user 提供用户管理应用服务
package user

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/pkg/errors"
	"storyweave-api/pkg/logger"
)

var tracer = otel.Tracer("application.user")

// Service 用户应用服务
type Service struct {
	userRepo repository.UserRepository
}

// NewService 创建用户服务
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// CreateInput 创建用户入参
type CreateInput struct {
	Name     string
	Email    string
	Password string
}

// Create 创建用户，邮箱重复返回 Conflict
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "user.Create")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, errors.Validation(errors.CodeInvalidParam, "name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, errors.Validation(errors.CodeInvalidParam, "valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, errors.Validation(errors.CodeInvalidParam, "password must be at least 8 characters")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to check email")
	}
	if exists {
		return nil, errors.ErrEmailAlreadyExists.WithDetail("email", in.Email)
	}

	user := entity.NewUser(in.Name, in.Email)
	if err := user.SetPassword(in.Password); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeInternalError, "failed to hash password")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to create user")
	}

	logger.Info(ctx, "user created", "user_id", user.ID)
	return user, nil
}

// Get 获取用户
func (s *Service) Get(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "user.Get")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to load user")
	}
	if user == nil {
		return nil, errors.ErrUserNotFound.WithContext(errors.Context{UserID: id})
	}
	return user, nil
}

// UpdateInput 更新用户入参，nil 字段表示不修改
type UpdateInput struct {
	Name  *string
	Email *string
}

// Update 更新用户，改邮箱撞库返回 Conflict
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "user.Update")
	defer span.End()

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, errors.Validation(errors.CodeInvalidParam, "name must not be empty")
		}
		user.Name = *in.Name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, errors.Validation(errors.CodeInvalidParam, "valid email is required")
		}
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to check email")
			}
			if exists {
				return nil, errors.ErrEmailAlreadyExists.WithDetail("email", email)
			}
			user.Email = email
			user.EmailVerifiedAt = nil
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to update user")
	}
	return user, nil
}

// Deactivate 停用账号
func (s *Service) Deactivate(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "user.Deactivate")
	defer span.End()

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	user.Deactivate()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to deactivate user")
	}

	logger.Info(ctx, "user deactivated", "user_id", id)
	return nil
}

// Delete 软删除用户
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "user.Delete")
	defer span.End()

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to delete user")
	}

	logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}
