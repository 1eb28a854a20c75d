package orchestration

import (
	"fmt"
	"sort"
	"sync"

	"storyweave-api/internal/config"
)

// Registry 提供商注册表。启动阶段完成注册，此后只读。
type Registry struct {
	mu        sync.RWMutex
	providers map[string]AIProvider
	configs   map[string]config.ProviderConfig
}

// NewRegistry 创建提供商注册表
func NewRegistry(cfg *config.AIConfig) *Registry {
	configs := make(map[string]config.ProviderConfig, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		configs[name] = pc
	}
	return &Registry{
		providers: make(map[string]AIProvider),
		configs:   configs,
	}
}

// Register 注册提供商，重复注册返回错误
func (r *Registry) Register(provider AIProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}
	r.providers[name] = provider
	return nil
}

// Get 获取指定提供商，未注册时返回 (nil, false)
func (r *Registry) Get(name string) (AIProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	return p, ok
}

// Config 获取提供商配置
func (r *Registry) Config(name string) (config.ProviderConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.configs[name]
	return c, ok
}

// IsEnabled 检查提供商是否已注册且启用
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.providers[name]; !ok {
		return false
	}
	c, ok := r.configs[name]
	return ok && c.Enabled
}

// Names 返回全部已注册提供商名称（字典序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnabledNames 返回已注册且启用的提供商名称（字典序）
func (r *Registry) EnabledNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		if c, ok := r.configs[name]; ok && c.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
