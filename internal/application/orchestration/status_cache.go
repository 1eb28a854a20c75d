package orchestration

import (
	"sync"
	"time"

	"storyweave-api/internal/domain/entity"
)

// StatusCache 提供商状态缓存。
// 每个提供商的状态作为整体原子更新，并发读写安全，后写覆盖先写。
type StatusCache struct {
	mu       sync.RWMutex
	statuses map[string]*entity.ProviderStatus
}

// NewStatusCache 创建状态缓存
func NewStatusCache() *StatusCache {
	return &StatusCache{
		statuses: make(map[string]*entity.ProviderStatus),
	}
}

// Set 整体更新提供商状态
func (c *StatusCache) Set(status *entity.ProviderStatus) {
	if status == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *status
	c.statuses[status.Provider] = &copied
}

// Get 获取提供商状态快照，未缓存时返回 (nil, false)
func (c *StatusCache) Get(provider string) (*entity.ProviderStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.statuses[provider]
	if !ok {
		return nil, false
	}
	copied := *s
	return &copied, true
}

// All 获取全部提供商状态快照
func (c *StatusCache) All() map[string]*entity.ProviderStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*entity.ProviderStatus, len(c.statuses))
	for name, s := range c.statuses {
		copied := *s
		out[name] = &copied
	}
	return out
}

// MarkUnavailable 将提供商标记为不可用
func (c *StatusCache) MarkUnavailable(provider string) {
	c.Set(&entity.ProviderStatus{
		Provider:    provider,
		IsAvailable: false,
		ErrorRate:   1.0,
		CheckedAt:   time.Now(),
	})
}
