package orchestration

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweave-api/internal/config"
	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/service"
	"storyweave-api/internal/infrastructure/provider"
	"storyweave-api/pkg/errors"
)

type fakeLimiter struct {
	allowed bool
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return f.allowed, nil
}

func (f *fakeLimiter) Remaining(_ context.Context, _ string, limit int, _ time.Duration) (int, error) {
	return limit, nil
}

type fakeUsageRecorder struct {
	mu    sync.Mutex
	calls int
	last  service.GenerationUsageInput
}

func (f *fakeUsageRecorder) Record(_ context.Context, input service.GenerationUsageInput) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = input
}

// testAIConfig 两个提供商：mocked 启用、idle 禁用
func testAIConfig() *config.AIConfig {
	return &config.AIConfig{
		Providers: map[string]config.ProviderConfig{
			"mocked": {
				Model:           "mock-story-v1",
				Enabled:         true,
				InputCostPer1K:  0.0005,
				OutputCostPer1K: 0.0015,
			},
			"idle": {
				Model:           "mock-story-pro",
				Enabled:         false,
				InputCostPer1K:  0.003,
				OutputCostPer1K: 0.012,
			},
		},
		CallTimeout: time.Second,
		Selection: config.SelectionConfig{
			LatencyWeight: 0.4,
			ErrorWeight:   0.4,
			CostWeight:    0.2,
		},
	}
}

func newTestOrchestrator(t *testing.T, cfg *config.AIConfig, opts ...provider.MockOption) (*Orchestrator, *Registry, *StatusCache) {
	t.Helper()

	registry := NewRegistry(cfg)
	for name, pc := range cfg.Providers {
		require.NoError(t, registry.Register(provider.NewMock(name, pc, opts...)))
	}
	statuses := NewStatusCache()
	return NewOrchestrator(registry, statuses, cfg, nil, nil), registry, statuses
}

func markAvailable(statuses *StatusCache, name string, rt time.Duration, errorRate float64) {
	statuses.Set(&entity.ProviderStatus{
		Provider:     name,
		IsAvailable:  true,
		ResponseTime: rt,
		ErrorRate:    errorRate,
		CheckedAt:    time.Now(),
	})
}

func TestGenerateText_ExplicitProvider(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{
			Prompt:   "The hero enters the ruined tower",
			Provider: "mocked",
		},
		Genre: "fantasy",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, "mocked", result.Provider)
	assert.Equal(t, "mock-story-v1", result.Model)
	assert.Contains(t, result.Content, "The story continues:")
	assert.Contains(t, result.Content, "fantasy")
	assert.GreaterOrEqual(t, result.GenerationTime, time.Duration(0))
	assert.Positive(t, result.TokensUsed.Total())
	assert.Positive(t, result.Cost)
}

func TestGenerateText_BestProviderResolution(t *testing.T) {
	o, _, statuses := newTestOrchestrator(t, testAIConfig())
	markAvailable(statuses, "mocked", 80*time.Millisecond, 0.01)

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "A door creaks open"},
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "mocked", result.Provider)
}

func TestGenerateText_ValidationFailureSkipsProvider(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "   "},
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
}

func TestGenerateText_DisabledProviderRejected(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on", Provider: "idle"},
	})

	require.Error(t, err)
	assert.Nil(t, result)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindBusinessRule, de.Kind)
	assert.Equal(t, errors.CodeNoProviderAvailable, de.Code)
}

func TestGenerateText_NoProviderAvailable(t *testing.T) {
	// 不预置任何状态：选择器无候选
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on"},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "no provider available", result.Error)
	assert.Empty(t, result.Provider)
}

func TestGenerateText_ProviderFailureNormalized(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig(), provider.WithFailure())

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on", Provider: "mocked"},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "mocked", result.Provider)
	assert.Equal(t, "generation failed", result.Error)
	// 提供商原始错误不越过编排层
	assert.NotContains(t, result.Error, "simulated failure")
}

func TestGenerateText_Timeout(t *testing.T) {
	cfg := testAIConfig()
	cfg.CallTimeout = 20 * time.Millisecond
	o, _, _ := newTestOrchestrator(t, cfg, provider.WithLatency(500*time.Millisecond))

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on", Provider: "mocked"},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "mocked", result.Provider)
	assert.NotEmpty(t, result.Error)
	assert.Less(t, result.GenerationTime, 500*time.Millisecond)
}

func TestGenerateText_RateLimited(t *testing.T) {
	cfg := testAIConfig()
	pc := cfg.Providers["mocked"]
	pc.RateLimit = 10
	cfg.Providers["mocked"] = pc

	registry := NewRegistry(cfg)
	require.NoError(t, registry.Register(provider.NewMock("mocked", pc)))
	o := NewOrchestrator(registry, NewStatusCache(), cfg, &fakeLimiter{allowed: false}, nil)

	result, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on", Provider: "mocked"},
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "provider rate limit exceeded", result.Error)
}

func TestGenerateChoices(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.GenerateChoices(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "at the crossroads", Provider: "mocked"},
	}, 3)

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Choices, 3)
	for _, c := range result.Choices {
		assert.NotEmpty(t, c.Text)
		assert.True(t, c.Type.Valid())
	}
}

func TestGenerateChoices_CountTooLow(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	_, err := o.GenerateChoices(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "at the crossroads", Provider: "mocked"},
	}, 0)

	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
}

func TestGenerateCombined_TextOnly(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.GenerateCombined(context.Background(), &entity.CombinedRequest{
		Text: entity.TextRequest{
			RequestBase: entity.RequestBase{Prompt: "the gates open", Provider: "mocked"},
		},
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Breakdown)
	assert.NotNil(t, result.Breakdown.TextGeneration)
	assert.Nil(t, result.Breakdown.ImageGeneration)
	assert.Nil(t, result.Breakdown.AudioGeneration)
	assert.Empty(t, result.MediaURL)
}

func TestGenerateCombined_WithImageAndAudio(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.GenerateCombined(context.Background(), &entity.CombinedRequest{
		Text: entity.TextRequest{
			RequestBase: entity.RequestBase{Prompt: "the gates open", Provider: "mocked"},
		},
		Image: &entity.ImageRequest{
			RequestBase: entity.RequestBase{Prompt: "a ruined gate at dusk", Provider: "mocked"},
			Size:        entity.ImageSize512,
		},
		Audio: &entity.AudioRequest{
			RequestBase: entity.RequestBase{Prompt: "the gates open", Provider: "mocked"},
			Format:      entity.AudioFormatMP3,
		},
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Breakdown)
	require.NotNil(t, result.Breakdown.ImageGeneration)
	require.NotNil(t, result.Breakdown.AudioGeneration)
	assert.True(t, result.Breakdown.ImageGeneration.Success)
	assert.True(t, result.Breakdown.AudioGeneration.Success)
	assert.Contains(t, result.MediaURL, "512x512")
	// 汇总成本不低于文本子生成
	assert.GreaterOrEqual(t, result.Cost, result.Breakdown.TextGeneration.Cost)
}

func TestGenerateCombined_TextFailureStopsSubGenerations(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig(), provider.WithFailure())

	result, err := o.GenerateCombined(context.Background(), &entity.CombinedRequest{
		Text: entity.TextRequest{
			RequestBase: entity.RequestBase{Prompt: "the gates open", Provider: "mocked"},
		},
		Image: &entity.ImageRequest{
			RequestBase: entity.RequestBase{Prompt: "a ruined gate", Provider: "mocked"},
		},
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Breakdown)
	assert.NotNil(t, result.Breakdown.TextGeneration)
	assert.Nil(t, result.Breakdown.ImageGeneration)
}

func TestCheckProviderStatus(t *testing.T) {
	o, _, statuses := newTestOrchestrator(t, testAIConfig())

	status, err := o.CheckProviderStatus(context.Background(), "mocked")

	require.NoError(t, err)
	assert.Equal(t, "mocked", status.Provider)
	assert.True(t, status.IsAvailable)
	assert.False(t, status.CheckedAt.IsZero())

	cached, ok := statuses.Get("mocked")
	require.True(t, ok)
	assert.True(t, cached.IsAvailable)
}

func TestCheckProviderStatus_Unregistered(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	_, err := o.CheckProviderStatus(context.Background(), "ghost")

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindNotFound, de.Kind)
	assert.Equal(t, "ghost", de.Details["provider"])
}

func TestCheckProviderStatus_ProbeFailureMarksUnavailable(t *testing.T) {
	o, _, statuses := newTestOrchestrator(t, testAIConfig(), provider.WithFailure())

	status, err := o.CheckProviderStatus(context.Background(), "mocked")

	require.NoError(t, err)
	assert.False(t, status.IsAvailable)
	assert.Equal(t, 1.0, status.ErrorRate)

	cached, ok := statuses.Get("mocked")
	require.True(t, ok)
	assert.False(t, cached.IsAvailable)
}

func TestCheckProviderStatus_Concurrent(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := o.CheckProviderStatus(context.Background(), "mocked")
			assert.NoError(t, err)
			assert.True(t, status.IsAvailable)
		}()
	}
	wg.Wait()
}

func TestTestProvider(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.TestProvider(context.Background(), "mocked")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Content, "operational")
}

func TestModerateContent(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	result, err := o.ModerateContent(context.Background(), "mocked", "a calm walk in the forest")
	require.NoError(t, err)
	assert.True(t, result.Approved)

	result, err = o.ModerateContent(context.Background(), "mocked", "an explicit scene")
	require.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Contains(t, result.Categories, "flagged")
}

func TestModerateContent_EmptyContent(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	_, err := o.ModerateContent(context.Background(), "mocked", "")

	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
}

func TestModerateContent_ProviderError(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig(), provider.WithFailure())

	_, err := o.ModerateContent(context.Background(), "mocked", "anything")

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindExternalService, de.Kind)
	assert.Equal(t, errors.CodeProviderError, de.Code)
}

func TestEstimateCost_Passthrough(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	cost := o.EstimateCost("mocked", 1000, 1000)
	assert.InDelta(t, 0.0005+0.0015, cost, 1e-9)
}

func TestRecordUsage_SkipsInvalidUserID(t *testing.T) {
	cfg := testAIConfig()
	registry := NewRegistry(cfg)
	require.NoError(t, registry.Register(provider.NewMock("mocked", cfg.Providers["mocked"])))
	recorder := &fakeUsageRecorder{}
	o := NewOrchestrator(registry, NewStatusCache(), cfg, nil, recorder)

	_, err := o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on", Provider: "mocked", UserID: "not-a-uuid"},
	})
	require.NoError(t, err)
	assert.Zero(t, recorder.calls)

	_, err = o.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{
			Prompt:   "go on",
			Provider: "mocked",
			UserID:   "4f3d1c62-9a8e-4b0f-8a36-2f4f6f1f9d01",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "mocked", recorder.last.Provider)
	assert.True(t, recorder.last.Success)
}

func TestValidateRequest_KindMismatch(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, testAIConfig())

	err := o.ValidateRequest(entity.GenerationKindImage, &entity.TextRequest{})
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)

	err = o.ValidateRequest(entity.GenerationKind("video"), &entity.TextRequest{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown generation kind"))
}
