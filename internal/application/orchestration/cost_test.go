package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweave-api/internal/infrastructure/provider"
)

func newTestEstimator(t *testing.T) *CostEstimator {
	t.Helper()

	cfg := testAIConfig()
	registry := NewRegistry(cfg)
	for name, pc := range cfg.Providers {
		require.NoError(t, registry.Register(provider.NewMock(name, pc)))
	}
	return NewCostEstimator(registry)
}

func TestEstimate(t *testing.T) {
	e := newTestEstimator(t)

	// 1000 输入 + 1000 输出 = 每侧恰好 1K
	cost := e.Estimate("mocked", 1000, 1000)
	assert.InDelta(t, 0.0005+0.0015, cost, 1e-9)

	// 半量按比例
	assert.InDelta(t, (0.0005+0.0015)/2, e.Estimate("mocked", 500, 500), 1e-9)

	assert.Zero(t, e.Estimate("mocked", 0, 0))
}

func TestEstimate_MonotonicInTokens(t *testing.T) {
	e := newTestEstimator(t)

	prev := 0.0
	for _, n := range []int{0, 10, 100, 1000, 100000} {
		cost := e.Estimate("mocked", n, n)
		assert.GreaterOrEqual(t, cost, prev)
		prev = cost
	}
}

func TestEstimate_UnknownProvider(t *testing.T) {
	e := newTestEstimator(t)

	assert.Zero(t, e.Estimate("ghost", 1000, 1000))
}

func TestEstimate_NegativeTokensClamped(t *testing.T) {
	e := newTestEstimator(t)

	assert.Zero(t, e.Estimate("mocked", -100, -100))
	assert.Equal(t, e.Estimate("mocked", 0, 1000), e.Estimate("mocked", -5, 1000))
}

func TestTokensForPrompt(t *testing.T) {
	e := newTestEstimator(t)

	assert.Zero(t, e.TokensForPrompt("gpt-4", ""))

	tokens := e.TokensForPrompt("gpt-4", "The hero enters the ruined tower at dusk.")
	assert.Positive(t, tokens)

	// 未知模型回退到通用编码或粗略估算
	assert.Positive(t, e.TokensForPrompt("some-unknown-model", "short prompt"))
	assert.Positive(t, e.TokensForPrompt("", "short prompt"))
}

func TestTokensForPrompt_GrowsWithLength(t *testing.T) {
	e := newTestEstimator(t)

	short := e.TokensForPrompt("gpt-4", "one line")
	long := e.TokensForPrompt("gpt-4", "a much longer passage of narrative text that keeps going on and on, describing the scene in considerable detail")
	assert.Greater(t, long, short)
}
