package repository

import (
	"context"

	"storyweave-api/internal/domain/entity"
)

// StoryRepository 故事数据访问接口
type StoryRepository interface {
	// Create 创建故事
	Create(ctx context.Context, story *entity.Story) error

	// GetByID 根据 ID 获取故事，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Story, error)

	// Update 更新故事
	Update(ctx context.Context, story *entity.Story) error

	// Delete 软删除故事
	Delete(ctx context.Context, id string) error

	// ListByUser 分页查询用户的故事
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.Story], error)

	// ListByStatus 分页查询指定状态的故事
	ListByStatus(ctx context.Context, status entity.StoryStatus, pagination Pagination) (*PagedResult[*entity.Story], error)

	// CountByUser 统计用户的故事数量
	CountByUser(ctx context.Context, userID string) (int64, error)
}
