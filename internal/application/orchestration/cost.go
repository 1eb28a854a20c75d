package orchestration

import (
	"github.com/pkoukk/tiktoken-go"

	"storyweave-api/internal/config"
)

// CostEstimator 基于每 1K token 单价的成本估算器
type CostEstimator struct {
	registry *Registry
}

// NewCostEstimator 创建成本估算器
func NewCostEstimator(registry *Registry) *CostEstimator {
	return &CostEstimator{registry: registry}
}

// Estimate 估算一次调用成本（美元）。
// 对 token 数单调非减；未知提供商按零单价计。
func (e *CostEstimator) Estimate(provider string, inputTokens, outputTokens int) float64 {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}

	cfg, ok := e.registry.Config(provider)
	if !ok {
		return 0
	}
	return costFor(cfg, inputTokens, outputTokens)
}

// TokensForPrompt 统计提示词 token 数。
// 优先使用模型对应的 tiktoken 编码，失败时退化为按 4 字符 1 token 估算。
func (e *CostEstimator) TokensForPrompt(model, prompt string) int {
	if prompt == "" {
		return 0
	}

	if model != "" {
		if tke, err := tiktoken.EncodingForModel(model); err == nil {
			return len(tke.Encode(prompt, nil, nil))
		}
	}
	if tke, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE); err == nil {
		return len(tke.Encode(prompt, nil, nil))
	}

	// 粗略估算
	tokens := len(prompt) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

func costFor(cfg config.ProviderConfig, inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*cfg.InputCostPer1K +
		float64(outputTokens)/1000*cfg.OutputCostPer1K
}
