// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
)

// StoryRepository 故事仓储实现
type StoryRepository struct {
	client *Client
}

// NewStoryRepository 创建故事仓储
func NewStoryRepository(client *Client) *StoryRepository {
	return &StoryRepository{client: client}
}

// Create 创建故事
func (r *StoryRepository) Create(ctx context.Context, story *entity.Story) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(story).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取故事
func (r *StoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var story entity.Story
	if err := db.First(&story, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return &story, nil
}

// Update 更新故事
func (r *StoryRepository) Update(ctx context.Context, story *entity.Story) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(story).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

// Delete 软删除故事
func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Story{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

// ListByUser 分页查询用户的故事
func (r *StoryRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Story{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count stories: %w", err)
	}

	var stories []*entity.Story
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	return repository.NewPagedResult(stories, total, pagination), nil
}

// ListByStatus 分页查询指定状态的故事
func (r *StoryRepository) ListByStatus(ctx context.Context, status entity.StoryStatus, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.ListByStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Story{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count stories: %w", err)
	}

	var stories []*entity.Story
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list stories by status: %w", err)
	}

	return repository.NewPagedResult(stories, total, pagination), nil
}

// CountByUser 统计用户的故事数量
func (r *StoryRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.CountByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Story{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return count, nil
}
