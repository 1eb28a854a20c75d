package repository

import (
	"context"
	"time"

	"storyweave-api/internal/domain/entity"
)

// UsageSummary 用量汇总
type UsageSummary struct {
	TotalEvents     int64   `json:"total_events"`
	TotalTokens     int64   `json:"total_tokens"`
	TotalCostUSD    float64 `json:"total_cost_usd"`
	SuccessfulCalls int64   `json:"successful_calls"`
	FailedCalls     int64   `json:"failed_calls"`
}

// UsageEventRepository 生成用量事件数据访问接口
type UsageEventRepository interface {
	// Create 记录一次生成用量事件
	Create(ctx context.Context, event *entity.GenerationUsageEvent) error

	// ListByUser 分页查询用户的用量事件
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.GenerationUsageEvent], error)

	// SummarizeByUser 汇总用户在时间窗口内的用量
	SummarizeByUser(ctx context.Context, userID string, since time.Time) (*UsageSummary, error)
}
