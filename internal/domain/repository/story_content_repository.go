package repository

import (
	"context"

	"storyweave-api/internal/domain/entity"
)

// StoryContentRepository 故事内容数据访问接口
type StoryContentRepository interface {
	// Create 创建内容节点（含选项）
	Create(ctx context.Context, content *entity.StoryContent) error

	// GetByID 根据 ID 获取内容节点（预加载选项），未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.StoryContent, error)

	// ListByStory 按创建顺序查询故事的全部内容节点
	ListByStory(ctx context.Context, storyID string) ([]*entity.StoryContent, error)

	// GetLatestByStory 获取故事最新的内容节点，未找到时返回 (nil, nil)
	GetLatestByStory(ctx context.Context, storyID string) (*entity.StoryContent, error)

	// Delete 删除内容节点
	Delete(ctx context.Context, id string) error
}

// StoryChoiceRepository 故事选项数据访问接口
type StoryChoiceRepository interface {
	// GetByID 根据 ID 获取选项，未找到时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.StoryChoice, error)

	// ListByContent 查询内容节点下的全部选项
	ListByContent(ctx context.Context, contentID string) ([]*entity.StoryChoice, error)

	// MarkSelected 标记选项已被选择并记录后续内容节点
	MarkSelected(ctx context.Context, choiceID, nextContentID string) error
}
