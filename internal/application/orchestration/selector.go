package orchestration

import (
	"time"

	"storyweave-api/internal/config"
)

// SelectionCriteria 提供商选择约束，零值表示不限制
type SelectionCriteria struct {
	// MaxResponseTime 响应时间上限
	MaxResponseTime time.Duration `json:"max_response_time,omitempty"`

	// MaxCostPer1K 每 1K token 成本上限（美元），nil 表示不限制
	MaxCostPer1K *float64 `json:"max_cost_per_1k,omitempty"`

	// MinQuality 最低质量分（1 - 错误率）
	MinQuality float64 `json:"min_quality,omitempty"`
}

// Selector 最优提供商选择器。
// 评分为加权和，分值越低越优；不可用、禁用、超出约束的候选先被过滤。
type Selector struct {
	registry *Registry
	statuses *StatusCache
	weights  config.SelectionConfig
}

// NewSelector 创建选择器
func NewSelector(registry *Registry, statuses *StatusCache, weights config.SelectionConfig) *Selector {
	return &Selector{
		registry: registry,
		statuses: statuses,
		weights:  weights,
	}
}

type candidate struct {
	name         string
	responseTime time.Duration
	errorRate    float64
	costPer1K    float64
}

// BestProvider 按评分选出最优提供商，无合格候选时返回空串
func (s *Selector) BestProvider(criteria SelectionCriteria) string {
	candidates := s.eligible(criteria)
	if len(candidates) == 0 {
		return ""
	}

	// 归一化基准：各维度取候选中的最大值
	var maxRT time.Duration
	var maxCost float64
	for _, c := range candidates {
		if c.responseTime > maxRT {
			maxRT = c.responseTime
		}
		if c.costPer1K > maxCost {
			maxCost = c.costPer1K
		}
	}

	best := ""
	bestScore := 0.0
	for i, c := range candidates {
		score := s.weights.ErrorWeight * c.errorRate
		if maxRT > 0 {
			score += s.weights.LatencyWeight * float64(c.responseTime) / float64(maxRT)
		}
		if maxCost > 0 {
			score += s.weights.CostWeight * c.costPer1K / maxCost
		}
		if i == 0 || score < bestScore {
			best = c.name
			bestScore = score
		}
	}
	return best
}

// eligible 过滤出满足约束的候选
func (s *Selector) eligible(criteria SelectionCriteria) []candidate {
	var out []candidate
	for _, name := range s.registry.EnabledNames() {
		status, ok := s.statuses.Get(name)
		if !ok || !status.IsAvailable {
			continue
		}
		cfg, ok := s.registry.Config(name)
		if !ok {
			continue
		}

		costPer1K := cfg.InputCostPer1K + cfg.OutputCostPer1K
		if criteria.MaxResponseTime > 0 && status.ResponseTime > criteria.MaxResponseTime {
			continue
		}
		if criteria.MaxCostPer1K != nil && costPer1K > *criteria.MaxCostPer1K {
			continue
		}
		if criteria.MinQuality > 0 && (1-status.ErrorRate) < criteria.MinQuality {
			continue
		}

		out = append(out, candidate{
			name:         name,
			responseTime: status.ResponseTime,
			errorRate:    status.ErrorRate,
			costPer1K:    costPer1K,
		})
	}
	return out
}
