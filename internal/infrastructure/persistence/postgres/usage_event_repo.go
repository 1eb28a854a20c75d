// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
)

// UsageEventRepository 生成用量事件仓储实现
type UsageEventRepository struct {
	client *Client
}

// NewUsageEventRepository 创建用量事件仓储
func NewUsageEventRepository(client *Client) *UsageEventRepository {
	return &UsageEventRepository{client: client}
}

// Create 记录一次生成用量事件
func (r *UsageEventRepository) Create(ctx context.Context, event *entity.GenerationUsageEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageEventRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create usage event: %w", err)
	}
	return nil
}

// ListByUser 分页查询用户的用量事件
func (r *UsageEventRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationUsageEvent], error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageEventRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.GenerationUsageEvent{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count usage events: %w", err)
	}

	var events []*entity.GenerationUsageEvent
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&events).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}

	return repository.NewPagedResult(events, total, pagination), nil
}

// SummarizeByUser 汇总用户在时间窗口内的用量
func (r *UsageEventRepository) SummarizeByUser(ctx context.Context, userID string, since time.Time) (*repository.UsageSummary, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageEventRepository.SummarizeByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var summary repository.UsageSummary
	err := db.Model(&entity.GenerationUsageEvent{}).
		Select(`COUNT(*) AS total_events,
			COALESCE(SUM(tokens_prompt + tokens_completion), 0) AS total_tokens,
			COALESCE(SUM(cost_usd), 0) AS total_cost_usd,
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS successful_calls,
			COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) AS failed_calls`).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&summary).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return &summary, nil
}
