// Package provider 提供 AI 提供商适配器实现
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storyweave-api/internal/config"
	"storyweave-api/internal/domain/entity"
)

// Mock 确定性的本地提供商实现。
// 不依赖外部服务，用于本地开发、联调与测试环境。
type Mock struct {
	name    string
	cfg     config.ProviderConfig
	latency time.Duration
	fail    bool
}

// MockOption Mock 提供商选项
type MockOption func(*Mock)

// WithLatency 设置模拟延迟
func WithLatency(d time.Duration) MockOption {
	return func(m *Mock) { m.latency = d }
}

// WithFailure 让所有调用返回失败
func WithFailure() MockOption {
	return func(m *Mock) { m.fail = true }
}

// NewMock 创建 Mock 提供商
func NewMock(name string, cfg config.ProviderConfig, opts ...MockOption) *Mock {
	m := &Mock{name: name, cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name 提供商标识
func (m *Mock) Name() string {
	return m.name
}

// GenerateText 生成确定性的故事文本
func (m *Mock) GenerateText(ctx context.Context, req *entity.TextRequest) (*entity.GenerationResult, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}

	content := m.storyText(req)
	result := &entity.GenerationResult{
		Success: true,
		Model:   m.model(),
		Content: content,
		TokensUsed: entity.TokenUsage{
			Prompt:     estimateTokens(req.Prompt + req.Context),
			Completion: estimateTokens(content),
		},
	}
	if req.ChoiceCount > 0 {
		result.Choices = m.choices(req, req.ChoiceCount)
	}
	return result, nil
}

// GenerateImage 返回确定性的图像地址
func (m *Mock) GenerateImage(ctx context.Context, req *entity.ImageRequest) (*entity.GenerationResult, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}

	size := req.Size
	if size == "" {
		size = entity.ImageSize1024
	}
	return &entity.GenerationResult{
		Success:  true,
		Model:    m.model(),
		MediaURL: fmt.Sprintf("https://images.example.com/%s/%s.png", m.name, string(size)),
		TokensUsed: entity.TokenUsage{
			Prompt: estimateTokens(req.Prompt),
		},
	}, nil
}

// GenerateAudio 返回确定性的音频地址
func (m *Mock) GenerateAudio(ctx context.Context, req *entity.AudioRequest) (*entity.GenerationResult, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = entity.AudioFormatMP3
	}
	return &entity.GenerationResult{
		Success:  true,
		Model:    m.model(),
		MediaURL: fmt.Sprintf("https://audio.example.com/%s/narration.%s", m.name, string(format)),
		TokensUsed: entity.TokenUsage{
			Prompt: estimateTokens(req.Prompt),
		},
	}, nil
}

// GenerateChoices 生成确定性的分支选项
func (m *Mock) GenerateChoices(ctx context.Context, req *entity.TextRequest, count int) ([]entity.Choice, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	return m.choices(req, count), nil
}

// CheckAvailability 探测可用性
func (m *Mock) CheckAvailability(ctx context.Context) (*entity.ProviderStatus, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	return &entity.ProviderStatus{
		Provider:     m.name,
		IsAvailable:  true,
		ResponseTime: m.latency,
		ErrorRate:    0,
	}, nil
}

// ModerateContent 简单关键词审核
func (m *Mock) ModerateContent(ctx context.Context, content string) (*entity.ModerationResult, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}

	lowered := strings.ToLower(content)
	for _, word := range []string{"graphic violence", "explicit"} {
		if strings.Contains(lowered, word) {
			return &entity.ModerationResult{
				Approved:   false,
				Categories: []string{"flagged"},
				Reason:     "content matched blocked phrase",
			}, nil
		}
	}
	return &entity.ModerationResult{Approved: true}, nil
}

// Models 发布的模型与定价
func (m *Mock) Models() []entity.ModelInfo {
	return []entity.ModelInfo{
		{
			Name:            m.model(),
			InputCostPer1K:  m.cfg.InputCostPer1K,
			OutputCostPer1K: m.cfg.OutputCostPer1K,
			MaxTokens:       m.cfg.MaxTokens,
		},
	}
}

// simulate 模拟调用延迟与失败场景
func (m *Mock) simulate(ctx context.Context) error {
	if m.latency > 0 {
		select {
		case <-time.After(m.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.fail {
		return fmt.Errorf("mock provider %s: simulated failure", m.name)
	}
	return nil
}

func (m *Mock) model() string {
	if m.cfg.Model != "" {
		return m.cfg.Model
	}
	return "mock-story-v1"
}

// storyText 由请求字段拼出确定性的叙事段落
func (m *Mock) storyText(req *entity.TextRequest) string {
	var b strings.Builder
	b.WriteString("The story continues: ")
	b.WriteString(strings.TrimSpace(req.Prompt))
	if req.Genre != "" {
		b.WriteString(fmt.Sprintf(" A distinct %s atmosphere settles over the scene.", req.Genre))
	}
	if req.Tone != "" {
		b.WriteString(fmt.Sprintf(" The narration keeps a %s tone.", req.Tone))
	}
	switch req.Length {
	case entity.TextLengthLong:
		b.WriteString(" Every detail of the surroundings unfolds slowly, drawing the reader deeper into the world.")
	case entity.TextLengthMedium:
		b.WriteString(" The scene develops at a steady pace.")
	}
	return b.String()
}

// choices 生成 count 个选项，尽量覆盖请求的类型
func (m *Mock) choices(req *entity.TextRequest, count int) []entity.Choice {
	types := req.ChoiceTypes
	if len(types) == 0 {
		types = entity.ChoiceTypes
	}

	out := make([]entity.Choice, 0, count)
	for i := 0; i < count; i++ {
		t := types[i%len(types)]
		out = append(out, entity.Choice{
			Text:        fmt.Sprintf("Option %d: take the %s path", i+1, string(t)),
			Description: fmt.Sprintf("A %s branch generated for the current scene", string(t)),
			Type:        t,
		})
	}
	return out
}

// estimateTokens 粗略 token 估算
func estimateTokens(s string) int {
	n := len(s) / 4
	if n == 0 && s != "" {
		n = 1
	}
	return n
}
