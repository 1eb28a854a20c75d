package redis

import (
	"context"
	"encoding/json"
	"time"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/pkg/logger"
)

// CachedStoryRepository 带 Redis 读缓存的故事仓储装饰器。
// 只缓存单条读取；列表查询直接透传。写操作落库后使相关缓存失效。
type CachedStoryRepository struct {
	inner repository.StoryRepository
	cache *Cache
	ttl   time.Duration
}

// NewCachedStoryRepository 创建带缓存的故事仓储
func NewCachedStoryRepository(inner repository.StoryRepository, cache *Cache, ttl time.Duration) *CachedStoryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStoryRepository{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

var _ repository.StoryRepository = (*CachedStoryRepository)(nil)

// Create 创建故事
func (r *CachedStoryRepository) Create(ctx context.Context, story *entity.Story) error {
	return r.inner.Create(ctx, story)
}

// GetByID 根据 ID 获取故事，未找到时返回 (nil, nil)
func (r *CachedStoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	data, err := r.cache.GetOrLoadSafe(ctx, BuildStoryKey(id), r.ttl, func() (interface{}, error) {
		return r.inner.GetByID(ctx, id)
	})
	if err != nil {
		// 缓存层故障时直接回源
		logger.Warn(ctx, "story cache unavailable, falling back to db", "error", err, "story_id", id)
		return r.inner.GetByID(ctx, id)
	}

	var story *entity.Story
	if err := json.Unmarshal(data, &story); err != nil {
		return nil, err
	}
	return story, nil
}

// Update 更新故事并使缓存失效
func (r *CachedStoryRepository) Update(ctx context.Context, story *entity.Story) error {
	if err := r.inner.Update(ctx, story); err != nil {
		return err
	}
	r.invalidate(ctx, story.ID)
	return nil
}

// Delete 软删除故事并使缓存失效
func (r *CachedStoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// ListByUser 分页查询用户的故事
func (r *CachedStoryRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	return r.inner.ListByUser(ctx, userID, pagination)
}

// ListByStatus 分页查询指定状态的故事
func (r *CachedStoryRepository) ListByStatus(ctx context.Context, status entity.StoryStatus, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	return r.inner.ListByStatus(ctx, status, pagination)
}

// CountByUser 统计用户的故事数量
func (r *CachedStoryRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.inner.CountByUser(ctx, userID)
}

func (r *CachedStoryRepository) invalidate(ctx context.Context, storyID string) {
	if err := r.cache.InvalidateStory(ctx, storyID); err != nil {
		logger.Warn(ctx, "failed to invalidate story cache", "error", err, "story_id", storyID)
	}
}
