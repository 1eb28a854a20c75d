package orchestration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweave-api/internal/config"
	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/infrastructure/provider"
)

// newSelectorFixture 三个启用的提供商，定价与状态可按用例覆盖
func newSelectorFixture(t *testing.T, providers map[string]config.ProviderConfig) (*Selector, *StatusCache) {
	t.Helper()

	cfg := &config.AIConfig{
		Providers: providers,
		Selection: config.SelectionConfig{
			LatencyWeight: 0.4,
			ErrorWeight:   0.4,
			CostWeight:    0.2,
		},
	}
	registry := NewRegistry(cfg)
	for name, pc := range providers {
		require.NoError(t, registry.Register(provider.NewMock(name, pc)))
	}
	statuses := NewStatusCache()
	return NewSelector(registry, statuses, cfg.Selection), statuses
}

func enabledProvider(inCost, outCost float64) config.ProviderConfig {
	return config.ProviderConfig{
		Enabled:         true,
		InputCostPer1K:  inCost,
		OutputCostPer1K: outCost,
	}
}

func TestBestProvider_NoStatusNoCandidates(t *testing.T) {
	s, _ := newSelectorFixture(t, map[string]config.ProviderConfig{
		"alpha": enabledProvider(0.001, 0.002),
	})

	assert.Empty(t, s.BestProvider(SelectionCriteria{}))
}

func TestBestProvider_FiltersUnavailable(t *testing.T) {
	s, statuses := newSelectorFixture(t, map[string]config.ProviderConfig{
		"alpha": enabledProvider(0.001, 0.002),
		"beta":  enabledProvider(0.001, 0.002),
	})
	markAvailable(statuses, "alpha", 100*time.Millisecond, 0)
	statuses.Set(&entity.ProviderStatus{
		Provider:    "beta",
		IsAvailable: false,
		ErrorRate:   1.0,
	})

	assert.Equal(t, "alpha", s.BestProvider(SelectionCriteria{}))
}

func TestBestProvider_FiltersDisabled(t *testing.T) {
	s, statuses := newSelectorFixture(t, map[string]config.ProviderConfig{
		"alpha": {Enabled: false, InputCostPer1K: 0.001},
		"beta":  enabledProvider(0.01, 0.02),
	})
	markAvailable(statuses, "alpha", 10*time.Millisecond, 0)
	markAvailable(statuses, "beta", 500*time.Millisecond, 0.2)

	assert.Equal(t, "beta", s.BestProvider(SelectionCriteria{}))
}

func TestBestProvider_PrefersLowerLatencyAndErrorRate(t *testing.T) {
	s, statuses := newSelectorFixture(t, map[string]config.ProviderConfig{
		"fast":  enabledProvider(0.001, 0.002),
		"slow":  enabledProvider(0.001, 0.002),
		"flaky": enabledProvider(0.001, 0.002),
	})
	markAvailable(statuses, "fast", 50*time.Millisecond, 0.01)
	markAvailable(statuses, "slow", 900*time.Millisecond, 0.01)
	markAvailable(statuses, "flaky", 50*time.Millisecond, 0.5)

	assert.Equal(t, "fast", s.BestProvider(SelectionCriteria{}))
}

func TestBestProvider_CostWeightBreaksTies(t *testing.T) {
	s, statuses := newSelectorFixture(t, map[string]config.ProviderConfig{
		"cheap":   enabledProvider(0.0005, 0.0015),
		"premium": enabledProvider(0.003, 0.012),
	})
	markAvailable(statuses, "cheap", 100*time.Millisecond, 0.02)
	markAvailable(statuses, "premium", 100*time.Millisecond, 0.02)

	assert.Equal(t, "cheap", s.BestProvider(SelectionCriteria{}))
}

func TestBestProvider_MaxResponseTimeConstraint(t *testing.T) {
	s, statuses := newSelectorFixture(t, map[string]config.ProviderConfig{
		"fast": enabledProvider(0.01, 0.02),
		"slow": enabledProvider(0.0001, 0.0002),
	})
	markAvailable(statuses, "fast", 50*time.Millisecond, 0)
	markAvailable(statuses, "slow", 2*time.Second, 0)

	got := s.BestProvider(SelectionCriteria{MaxResponseTime: 100 * time.Millisecond})
	assert.Equal(t, "fast", got)
}

func TestBestProvider_MaxCostConstraint(t *testing.T) {
	s, statuses := newSelectorFixture(t, map[string]config.ProviderConfig{
		"cheap":   enabledProvider(0.0005, 0.0015),
		"premium": enabledProvider(0.003, 0.012),
	})
	markAvailable(statuses, "cheap", 100*time.Millisecond, 0)
	markAvailable(statuses, "premium", 100*time.Millisecond, 0)

	maxCost := 0.01
	assert.Equal(t, "cheap", s.BestProvider(SelectionCriteria{MaxCostPer1K: &maxCost}))

	// 上限为 0 时所有付费提供商都被排除
	zero := 0.0
	assert.Empty(t, s.BestProvider(SelectionCriteria{MaxCostPer1K: &zero}))
}

func TestBestProvider_MinQualityConstraint(t *testing.T) {
	s, statuses := newSelectorFixture(t, map[string]config.ProviderConfig{
		"stable": enabledProvider(0.001, 0.002),
		"flaky":  enabledProvider(0.001, 0.002),
	})
	markAvailable(statuses, "stable", 100*time.Millisecond, 0.02)
	markAvailable(statuses, "flaky", 100*time.Millisecond, 0.4)

	got := s.BestProvider(SelectionCriteria{MinQuality: 0.9})
	assert.Equal(t, "stable", got)

	assert.Empty(t, s.BestProvider(SelectionCriteria{MinQuality: 0.999}))
}
