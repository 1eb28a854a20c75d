// Package usage 提供生成用量记录能力
package usage

import (
	"context"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/internal/domain/service"
	"storyweave-api/pkg/logger"
)

// Recorder 生成用量记录器，落库失败只记日志不阻断生成流程
type Recorder struct {
	usageRepo repository.UsageEventRepository
}

// NewRecorder 创建用量记录器
func NewRecorder(usageRepo repository.UsageEventRepository) *Recorder {
	return &Recorder{usageRepo: usageRepo}
}

// Record 记录一次生成用量事件
func (r *Recorder) Record(ctx context.Context, in service.GenerationUsageInput) {
	if r == nil || r.usageRepo == nil {
		return
	}
	if in.UserID == "" || in.TokensPrompt < 0 || in.TokensCompletion < 0 {
		return
	}

	evt := &entity.GenerationUsageEvent{
		UserID:           in.UserID,
		Provider:         in.Provider,
		Model:            in.Model,
		Kind:             in.Kind,
		Success:          in.Success,
		TokensPrompt:     in.TokensPrompt,
		TokensCompletion: in.TokensCompletion,
		CostUSD:          in.CostUSD,
		DurationMs:       int(in.Duration.Milliseconds()),
	}
	// story_id 是可空 uuid 列，空串不是合法输入
	if in.StoryID != "" {
		evt.StoryID = &in.StoryID
	}
	if err := r.usageRepo.Create(ctx, evt); err != nil {
		logger.Warn(ctx, "failed to record usage event",
			"provider", in.Provider, "kind", in.Kind)
	}
}
