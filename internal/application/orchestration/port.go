// Package orchestration 提供 AI 生成编排能力：
// 请求校验、提供商选择、调用超时控制与结果归一化。
package orchestration

import (
	"context"

	"storyweave-api/internal/domain/entity"
)

// AIProvider AI 提供商适配器接口，所有实现必须把内部错误
// 归一化为带 Success=false 的 GenerationResult 或普通 error，
// 不得向上层暴露 SDK 专有错误类型。
type AIProvider interface {
	// Name 提供商标识
	Name() string

	// GenerateText 生成故事文本（可携带选项）
	GenerateText(ctx context.Context, req *entity.TextRequest) (*entity.GenerationResult, error)

	// GenerateImage 生成场景插图
	GenerateImage(ctx context.Context, req *entity.ImageRequest) (*entity.GenerationResult, error)

	// GenerateAudio 生成旁白音频
	GenerateAudio(ctx context.Context, req *entity.AudioRequest) (*entity.GenerationResult, error)

	// GenerateChoices 为既有情节生成后续选项
	GenerateChoices(ctx context.Context, req *entity.TextRequest, count int) ([]entity.Choice, error)

	// CheckAvailability 探测提供商可用性
	CheckAvailability(ctx context.Context) (*entity.ProviderStatus, error)

	// ModerateContent 内容审核
	ModerateContent(ctx context.Context, content string) (*entity.ModerationResult, error)

	// Models 提供商支持的模型及定价信息
	Models() []entity.ModelInfo
}
