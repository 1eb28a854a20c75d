package repository

import (
	"context"

	"storyweave-api/internal/domain/entity"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByEmail 根据邮箱获取用户，未找到时返回 (nil, nil)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// Update 更新用户
	Update(ctx context.Context, user *entity.User) error

	// Delete 软删除用户
	Delete(ctx context.Context, id string) error

	// List 分页查询用户列表
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.User], error)

	// ExistsByEmail 检查邮箱是否已被注册
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
