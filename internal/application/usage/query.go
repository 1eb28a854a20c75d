package usage

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/pkg/errors"
)

var tracer = otel.Tracer("application.usage")

// Query 生成用量查询服务
type Query struct {
	usageRepo repository.UsageEventRepository
}

// NewQuery 创建用量查询服务
func NewQuery(usageRepo repository.UsageEventRepository) *Query {
	return &Query{usageRepo: usageRepo}
}

// Summary 汇总用户自 since 起的用量
func (q *Query) Summary(ctx context.Context, userID string, since time.Time) (*repository.UsageSummary, error) {
	ctx, span := tracer.Start(ctx, "usage.Summary")
	defer span.End()

	if userID == "" {
		return nil, errors.Validation(errors.CodeInvalidParam, "user_id is required")
	}
	summary, err := q.usageRepo.SummarizeByUser(ctx, userID, since)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to summarize usage")
	}
	return summary, nil
}

// ListEvents 分页查询用户的用量事件
func (q *Query) ListEvents(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationUsageEvent], error) {
	ctx, span := tracer.Start(ctx, "usage.ListEvents")
	defer span.End()

	if userID == "" {
		return nil, errors.Validation(errors.CodeInvalidParam, "user_id is required")
	}
	result, err := q.usageRepo.ListByUser(ctx, userID, pagination)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, errors.CodeDatabaseError, "failed to list usage events")
	}
	return result, nil
}
