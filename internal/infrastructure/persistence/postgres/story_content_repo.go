// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storyweave-api/internal/domain/entity"
)

// StoryContentRepository 故事内容仓储实现
type StoryContentRepository struct {
	client *Client
}

// NewStoryContentRepository 创建故事内容仓储
func NewStoryContentRepository(client *Client) *StoryContentRepository {
	return &StoryContentRepository{client: client}
}

// Create 创建内容节点，级联写入选项
func (r *StoryContentRepository) Create(ctx context.Context, content *entity.StoryContent) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryContentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(content).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create story content: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取内容节点（预加载选项）
func (r *StoryContentRepository) GetByID(ctx context.Context, id string) (*entity.StoryContent, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryContentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var content entity.StoryContent
	if err := db.Preload("Choices").First(&content, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story content: %w", err)
	}
	return &content, nil
}

// ListByStory 按创建顺序查询故事的全部内容节点
func (r *StoryContentRepository) ListByStory(ctx context.Context, storyID string) ([]*entity.StoryContent, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryContentRepository.ListByStory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var contents []*entity.StoryContent
	if err := db.Preload("Choices").
		Where("story_id = ?", storyID).
		Order("created_at ASC").
		Find(&contents).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list story contents: %w", err)
	}
	return contents, nil
}

// GetLatestByStory 获取故事最新的内容节点
func (r *StoryContentRepository) GetLatestByStory(ctx context.Context, storyID string) (*entity.StoryContent, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryContentRepository.GetLatestByStory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var content entity.StoryContent
	if err := db.Preload("Choices").
		Where("story_id = ?", storyID).
		Order("created_at DESC").
		First(&content).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get latest story content: %w", err)
	}
	return &content, nil
}

// Delete 删除内容节点
func (r *StoryContentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryContentRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.StoryContent{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete story content: %w", err)
	}
	return nil
}

// StoryChoiceRepository 故事选项仓储实现
type StoryChoiceRepository struct {
	client *Client
}

// NewStoryChoiceRepository 创建故事选项仓储
func NewStoryChoiceRepository(client *Client) *StoryChoiceRepository {
	return &StoryChoiceRepository{client: client}
}

// GetByID 根据 ID 获取选项
func (r *StoryChoiceRepository) GetByID(ctx context.Context, id string) (*entity.StoryChoice, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryChoiceRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var choice entity.StoryChoice
	if err := db.First(&choice, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story choice: %w", err)
	}
	return &choice, nil
}

// ListByContent 查询内容节点下的全部选项
func (r *StoryChoiceRepository) ListByContent(ctx context.Context, contentID string) ([]*entity.StoryChoice, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryChoiceRepository.ListByContent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var choices []*entity.StoryChoice
	if err := db.Where("content_id = ?", contentID).
		Order("created_at ASC").
		Find(&choices).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list story choices: %w", err)
	}
	return choices, nil
}

// MarkSelected 标记选项已被选择并记录后续内容节点
func (r *StoryChoiceRepository) MarkSelected(ctx context.Context, choiceID, nextContentID string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryChoiceRepository.MarkSelected")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.StoryChoice{}).
		Where("id = ?", choiceID).
		Updates(map[string]interface{}{
			"is_selected":     true,
			"next_content_id": nextContentID,
			"updated_at":      time.Now(),
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark choice selected: %w", err)
	}
	return nil
}
