package dto

import (
	"time"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
)

// UsageSummaryResponse 用量汇总响应
type UsageSummaryResponse struct {
	UserID          string    `json:"user_id"`
	Since           time.Time `json:"since"`
	TotalEvents     int64     `json:"total_events"`
	TotalTokens     int64     `json:"total_tokens"`
	TotalCostUSD    float64   `json:"total_cost_usd"`
	SuccessfulCalls int64     `json:"successful_calls"`
	FailedCalls     int64     `json:"failed_calls"`
}

// ToUsageSummaryResponse 转换用量汇总
func ToUsageSummaryResponse(userID string, since time.Time, s *repository.UsageSummary) *UsageSummaryResponse {
	if s == nil {
		return nil
	}
	return &UsageSummaryResponse{
		UserID:          userID,
		Since:           since,
		TotalEvents:     s.TotalEvents,
		TotalTokens:     s.TotalTokens,
		TotalCostUSD:    s.TotalCostUSD,
		SuccessfulCalls: s.SuccessfulCalls,
		FailedCalls:     s.FailedCalls,
	}
}

// UsageEventResponse 用量事件响应
type UsageEventResponse struct {
	ID               string    `json:"id"`
	StoryID          string    `json:"story_id,omitempty"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	Kind             string    `json:"kind"`
	Success          bool      `json:"success"`
	TokensPrompt     int       `json:"tokens_prompt"`
	TokensCompletion int       `json:"tokens_completion"`
	CostUSD          float64   `json:"cost_usd"`
	DurationMs       int       `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToUsageEventResponse 转换用量事件
func ToUsageEventResponse(e *entity.GenerationUsageEvent) *UsageEventResponse {
	if e == nil {
		return nil
	}
	resp := &UsageEventResponse{
		ID:               e.ID,
		Provider:         e.Provider,
		Model:            e.Model,
		Kind:             e.Kind,
		Success:          e.Success,
		TokensPrompt:     e.TokensPrompt,
		TokensCompletion: e.TokensCompletion,
		CostUSD:          e.CostUSD,
		DurationMs:       e.DurationMs,
		CreatedAt:        e.CreatedAt,
	}
	if e.StoryID != nil {
		resp.StoryID = *e.StoryID
	}
	return resp
}
