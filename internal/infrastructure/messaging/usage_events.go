package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storyweave-api/internal/domain/service"
	"storyweave-api/pkg/logger"
)

// MsgTypeGenerationUsage 生成用量事件类型
const MsgTypeGenerationUsage = "generation_usage"

// UsageEventMessage 生成用量事件载荷
type UsageEventMessage struct {
	UserID           string  `json:"user_id,omitempty"`
	StoryID          string  `json:"story_id,omitempty"`
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	Kind             string  `json:"kind"`
	Success          bool    `json:"success"`
	TokensPrompt     int     `json:"tokens_prompt"`
	TokensCompletion int     `json:"tokens_completion"`
	CostUSD          float64 `json:"cost_usd"`
	DurationMs       int64   `json:"duration_ms"`
}

// UsagePublisher 把用量事件发布到 Redis Stream，由后台消费者落库。
// 发布失败只记日志，不影响生成主链路。
type UsagePublisher struct {
	producer *Producer
}

// NewUsagePublisher 创建用量事件发布器
func NewUsagePublisher(producer *Producer) *UsagePublisher {
	return &UsagePublisher{producer: producer}
}

var _ service.UsageRecorder = (*UsagePublisher)(nil)

// Record 发布一条用量事件
func (p *UsagePublisher) Record(ctx context.Context, in service.GenerationUsageInput) {
	payload := UsageEventMessage{
		UserID:           in.UserID,
		StoryID:          in.StoryID,
		Provider:         in.Provider,
		Model:            in.Model,
		Kind:             in.Kind,
		Success:          in.Success,
		TokensPrompt:     in.TokensPrompt,
		TokensCompletion: in.TokensCompletion,
		CostUSD:          in.CostUSD,
		DurationMs:       in.Duration.Milliseconds(),
	}

	msg, err := NewMessage(uuid.New().String(), MsgTypeGenerationUsage, in.UserID, in.StoryID, payload)
	if err != nil {
		logger.Warn(ctx, "failed to build usage event message", "error", err)
		return
	}

	if _, err := p.producer.Publish(ctx, StreamUsageEvents, msg); err != nil {
		logger.Warn(ctx, "failed to publish usage event",
			"error", err, "provider", in.Provider, "kind", in.Kind)
	}
}

// RegisterUsageHandler 注册用量事件处理器：解码事件并交给落库端
func RegisterUsageHandler(consumer *Consumer, sink service.UsageRecorder) {
	consumer.RegisterHandler(MsgTypeGenerationUsage, func(ctx context.Context, msg *Message) error {
		var payload UsageEventMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}

		sink.Record(ctx, service.GenerationUsageInput{
			UserID:           payload.UserID,
			StoryID:          payload.StoryID,
			Provider:         payload.Provider,
			Model:            payload.Model,
			Kind:             payload.Kind,
			Success:          payload.Success,
			TokensPrompt:     payload.TokensPrompt,
			TokensCompletion: payload.TokensCompletion,
			CostUSD:          payload.CostUSD,
			Duration:         time.Duration(payload.DurationMs) * time.Millisecond,
		})
		return nil
	})
}
