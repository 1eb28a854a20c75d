// Package entity 定义领域实体
package entity

import (
	"time"
)

// ProviderStatus 提供商运行状态
// 由周期性健康探测写入，由最优提供商选择读取；按提供商整体原子替换
type ProviderStatus struct {
	Provider           string        `json:"provider"`
	IsAvailable        bool          `json:"is_available"`
	ResponseTime       time.Duration `json:"response_time"`
	ErrorRate          float64       `json:"error_rate"` // 滚动错误率 [0,1]
	CurrentLoad        int           `json:"current_load"`
	RateLimitRemaining int           `json:"rate_limit_remaining"`
	CheckedAt          time.Time     `json:"checked_at"`
}

// ModelInfo 提供商发布的模型信息
type ModelInfo struct {
	Name            string  `json:"name"`
	InputCostPer1K  float64 `json:"input_cost_per_1k"`
	OutputCostPer1K float64 `json:"output_cost_per_1k"`
	MaxTokens       int     `json:"max_tokens,omitempty"`
}

// ModerationResult 内容审核结果
type ModerationResult struct {
	Approved   bool     `json:"approved"`
	Categories []string `json:"categories,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}
