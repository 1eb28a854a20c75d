// Package story 提供故事管理应用服务
package story

import (
	"context"

	"go.opentelemetry.io/otel"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/pkg/errors"
	"storyweave-api/pkg/logger"
)

var tracer = otel.Tracer("application.story")

// Service 故事应用服务
type Service struct {
	storyRepo   repository.StoryRepository
	contentRepo repository.StoryContentRepository
	choiceRepo  repository.StoryChoiceRepository
	userRepo    repository.UserRepository
	transactor  repository.Transactor
}

// NewService 创建故事服务
func NewService(
	storyRepo repository.StoryRepository,
	contentRepo repository.StoryContentRepository,
	choiceRepo repository.StoryChoiceRepository,
	userRepo repository.UserRepository,
	transactor repository.Transactor,
) *Service {
	return &Service{
		storyRepo:   storyRepo,
		contentRepo: contentRepo,
		choiceRepo:  choiceRepo,
		userRepo:    userRepo,
		transactor:  transactor,
	}
}

// CreateInput 创建故事入参
type CreateInput struct {
	UserID      string
	Title       string
	Description string
	Genre       string
	Settings    *entity.StorySettings
}

// Create 创建故事
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "story.Create")
	defer span.End()

	if in.Title == "" {
		return nil, errors.Validation(errors.CodeInvalidParam, "title is required")
	}
	if in.UserID == "" {
		return nil, errors.Validation(errors.CodeInvalidParam, "user_id is required")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to load user")
	}
	if user == nil {
		return nil, errors.ErrUserNotFound.WithContext(errors.Context{UserID: in.UserID})
	}

	story := entity.NewStory(in.UserID, in.Title)
	story.Description = in.Description
	story.Genre = in.Genre
	if in.Settings != nil {
		story.Settings = in.Settings
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to create story")
	}

	logger.Info(ctx, "story created", "story_id", story.ID, "user_id", in.UserID)
	return story, nil
}

// Get 获取故事
func (s *Service) Get(ctx context.Context, id string) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "story.Get")
	defer span.End()

	story, err := s.storyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to load story")
	}
	if story == nil {
		return nil, errors.ErrStoryNotFound.WithContext(errors.Context{StoryID: id})
	}
	return story, nil
}

// ListByUser 分页查询用户的故事
func (s *Service) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	ctx, span := tracer.Start(ctx, "story.ListByUser")
	defer span.End()

	result, err := s.storyRepo.ListByUser(ctx, userID, pagination)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to list stories")
	}
	return result, nil
}

// UpdateInput 更新故事入参，nil 字段表示不修改
type UpdateInput struct {
	Title       *string
	Description *string
	Genre       *string
	Status      *entity.StoryStatus
	Settings    *entity.StorySettings
}

// Update 更新故事
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "story.Update")
	defer span.End()

	story, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		switch *in.Status {
		case entity.StoryStatusDraft, entity.StoryStatusActive,
			entity.StoryStatusCompleted, entity.StoryStatusArchived:
		default:
			return nil, errors.Validation(errors.CodeInvalidParam, "invalid story status").
				WithDetail("status", string(*in.Status))
		}
		story.Status = *in.Status
	}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, errors.Validation(errors.CodeInvalidParam, "title must not be empty")
		}
		story.Title = *in.Title
	}
	if in.Description != nil {
		story.Description = *in.Description
	}
	if in.Genre != nil {
		story.Genre = *in.Genre
	}
	if in.Settings != nil {
		story.Settings = in.Settings
	}

	if err := s.storyRepo.Update(ctx, story); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to update story")
	}
	return story, nil
}

// Delete 软删除故事
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "story.Delete")
	defer span.End()

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.storyRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to delete story")
	}

	logger.Info(ctx, "story deleted", "story_id", id)
	return nil
}

// AppendContentInput 追加内容入参
type AppendContentInput struct {
	StoryID         string
	ParentContentID *string
	Result          *entity.GenerationResult
}

// AppendContent 把一次生成结果落为内容节点（含选项）
func (s *Service) AppendContent(ctx context.Context, in AppendContentInput) (*entity.StoryContent, error) {
	ctx, span := tracer.Start(ctx, "story.AppendContent")
	defer span.End()

	if in.Result == nil || !in.Result.Success {
		return nil, errors.BusinessRule(errors.CodeGenerationFailed, "generation result is not persistable")
	}

	story, err := s.Get(ctx, in.StoryID)
	if err != nil {
		return nil, err
	}
	if !story.IsEditable() {
		return nil, errors.BusinessRule(errors.CodeStoryStatusInvalid, "story is not editable").
			WithDetail("status", string(story.Status))
	}

	content := &entity.StoryContent{
		StoryID:         story.ID,
		ParentContentID: in.ParentContentID,
		Content:         in.Result.Content,
		Provider:        in.Result.Provider,
		Model:           in.Result.Model,
	}
	if in.Result.Breakdown != nil {
		if img := in.Result.Breakdown.ImageGeneration; img != nil && img.Success {
			content.ImageURL = img.MediaURL
		}
		if aud := in.Result.Breakdown.AudioGeneration; aud != nil && aud.Success {
			content.AudioURL = aud.MediaURL
		}
	} else if in.Result.MediaURL != "" {
		content.ImageURL = in.Result.MediaURL
	}
	for _, c := range in.Result.Choices {
		content.Choices = append(content.Choices, entity.StoryChoice{
			Text:        c.Text,
			Description: c.Description,
			ChoiceType:  c.Type,
		})
	}

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.contentRepo.Create(ctx, content); err != nil {
			return err
		}
		if story.Status == entity.StoryStatusDraft {
			story.Status = entity.StoryStatusActive
			return s.storyRepo.Update(ctx, story)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to append content")
	}

	logger.Info(ctx, "story content appended",
		"story_id", story.ID, "content_id", content.ID, "choices", len(content.Choices))
	return content, nil
}

// GetContent 获取内容节点
func (s *Service) GetContent(ctx context.Context, contentID string) (*entity.StoryContent, error) {
	ctx, span := tracer.Start(ctx, "story.GetContent")
	defer span.End()

	content, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to load content")
	}
	if content == nil {
		return nil, errors.NotFound(errors.CodeContentNotFound, "story content not found").
			WithContext(errors.Context{ContentID: contentID})
	}
	return content, nil
}

// ListContents 按创建顺序查询故事的全部内容
func (s *Service) ListContents(ctx context.Context, storyID string) ([]*entity.StoryContent, error) {
	ctx, span := tracer.Start(ctx, "story.ListContents")
	defer span.End()

	if _, err := s.Get(ctx, storyID); err != nil {
		return nil, err
	}
	contents, err := s.contentRepo.ListByStory(ctx, storyID)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to list contents")
	}
	return contents, nil
}

// GetChoice 获取选项
func (s *Service) GetChoice(ctx context.Context, choiceID string) (*entity.StoryChoice, error) {
	ctx, span := tracer.Start(ctx, "story.GetChoice")
	defer span.End()

	choice, err := s.choiceRepo.GetByID(ctx, choiceID)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to load choice")
	}
	if choice == nil {
		return nil, errors.NotFound(errors.CodeChoiceNotFound, "story choice not found").
			WithContext(errors.Context{ChoiceID: choiceID})
	}
	return choice, nil
}

// SelectChoice 选择分支选项并挂接后续内容节点。
// 同一选项只能被选择一次，重复选择返回 Conflict。
func (s *Service) SelectChoice(ctx context.Context, choiceID string, next *entity.StoryContent) (*entity.StoryChoice, error) {
	ctx, span := tracer.Start(ctx, "story.SelectChoice")
	defer span.End()

	if next == nil {
		return nil, errors.Validation(errors.CodeInvalidParam, "next content is required")
	}

	choice, err := s.choiceRepo.GetByID(ctx, choiceID)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to load choice")
	}
	if choice == nil {
		return nil, errors.NotFound(errors.CodeChoiceNotFound, "story choice not found").
			WithContext(errors.Context{ChoiceID: choiceID})
	}
	if choice.IsSelected {
		return nil, errors.ErrChoiceAlreadyChosen.WithContext(errors.Context{ChoiceID: choiceID})
	}

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if next.ID == "" {
			if err := s.contentRepo.Create(ctx, next); err != nil {
				return err
			}
		}
		return s.choiceRepo.MarkSelected(ctx, choiceID, next.ID)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to select choice")
	}

	choice.IsSelected = true
	choice.NextContentID = &next.ID

	logger.Info(ctx, "story choice selected", "choice_id", choiceID, "next_content_id", next.ID)
	return choice, nil
}
