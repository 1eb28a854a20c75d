package dto

import (
	"time"

	"storyweave-api/internal/domain/entity"
)

// ProviderSummary 提供商摘要
type ProviderSummary struct {
	Name    string `json:"name"`
	Model   string `json:"model,omitempty"`
	Enabled bool   `json:"enabled"`
}

// ProviderStatusResponse 提供商状态响应
type ProviderStatusResponse struct {
	Provider           string    `json:"provider"`
	IsAvailable        bool      `json:"is_available"`
	ResponseTimeMs     int64     `json:"response_time_ms"`
	ErrorRate          float64   `json:"error_rate"`
	CurrentLoad        int       `json:"current_load"`
	RateLimitRemaining int       `json:"rate_limit_remaining"`
	CheckedAt          time.Time `json:"checked_at"`
}

// ToProviderStatusResponse 转换提供商状态
func ToProviderStatusResponse(s *entity.ProviderStatus) *ProviderStatusResponse {
	return &ProviderStatusResponse{
		Provider:           s.Provider,
		IsAvailable:        s.IsAvailable,
		ResponseTimeMs:     s.ResponseTime.Milliseconds(),
		ErrorRate:          s.ErrorRate,
		CurrentLoad:        s.CurrentLoad,
		RateLimitRemaining: s.RateLimitRemaining,
		CheckedAt:          s.CheckedAt,
	}
}

// ModerationResponse 内容审核响应
type ModerationResponse struct {
	Approved   bool     `json:"approved"`
	Categories []string `json:"categories,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}
