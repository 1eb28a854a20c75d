package orchestration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/infrastructure/provider"
	"storyweave-api/pkg/errors"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()

	cfg := testAIConfig()
	registry := NewRegistry(cfg)
	for name, pc := range cfg.Providers {
		require.NoError(t, registry.Register(provider.NewMock(name, pc)))
	}
	return NewValidator(registry)
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestValidateText_PromptRequired(t *testing.T) {
	v := newTestValidator(t)

	for _, prompt := range []string{"", "   ", "\t\n"} {
		err := v.ValidateText(&entity.TextRequest{
			RequestBase: entity.RequestBase{Prompt: prompt},
		})
		require.Error(t, err)
		assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
	}
}

func TestValidateText_PromptTooLong(t *testing.T) {
	v := newTestValidator(t)

	err := v.ValidateText(&entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: strings.Repeat("a", MaxPromptLength+1)},
	})

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindValidation, de.Kind)
	assert.Equal(t, MaxPromptLength+1, de.Details["prompt_length"])

	// 边界值恰好通过
	assert.NoError(t, v.ValidateText(&entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: strings.Repeat("a", MaxPromptLength)},
	}))
}

func TestValidateText_TemperatureBounds(t *testing.T) {
	v := newTestValidator(t)

	for _, temp := range []float64{-0.1, 1.1, 2.0} {
		err := v.ValidateText(&entity.TextRequest{
			RequestBase: entity.RequestBase{
				Prompt: "go on",
				Params: &entity.GenerationParams{Temperature: floatPtr(temp)},
			},
		})
		require.Error(t, err, "temperature %v", temp)
	}

	for _, temp := range []float64{0, 0.5, 1} {
		assert.NoError(t, v.ValidateText(&entity.TextRequest{
			RequestBase: entity.RequestBase{
				Prompt: "go on",
				Params: &entity.GenerationParams{Temperature: floatPtr(temp)},
			},
		}), "temperature %v", temp)
	}
}

func TestValidateText_MaxTokensPositive(t *testing.T) {
	v := newTestValidator(t)

	for _, n := range []int{0, -10} {
		err := v.ValidateText(&entity.TextRequest{
			RequestBase: entity.RequestBase{
				Prompt: "go on",
				Params: &entity.GenerationParams{MaxTokens: intPtr(n)},
			},
		})
		require.Error(t, err, "max_tokens %d", n)
	}
}

func TestValidateText_UnknownProvider(t *testing.T) {
	v := newTestValidator(t)

	err := v.ValidateText(&entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on", Provider: "ghost"},
	})

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindValidation, de.Kind)
	assert.Equal(t, "ghost", de.Details["provider"])
}

func TestValidateText_DisabledProvider(t *testing.T) {
	v := newTestValidator(t)

	err := v.ValidateText(&entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on", Provider: "idle"},
	})

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindBusinessRule, de.Kind)
	assert.Equal(t, errors.CodeNoProviderAvailable, de.Code)
}

func TestValidateText_InvalidEnums(t *testing.T) {
	v := newTestValidator(t)

	err := v.ValidateText(&entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on"},
		Length:      entity.TextLength("epic"),
	})
	require.Error(t, err)

	err = v.ValidateText(&entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on"},
		ChoiceTypes: []entity.ChoiceType{"betrayal"},
	})
	require.Error(t, err)

	err = v.ValidateText(&entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on"},
		ChoiceCount: -1,
	})
	require.Error(t, err)
}

func TestValidateImage(t *testing.T) {
	v := newTestValidator(t)

	assert.NoError(t, v.ValidateImage(&entity.ImageRequest{
		RequestBase: entity.RequestBase{Prompt: "a tower at dusk"},
		AspectRatio: entity.AspectRatioWide,
		Quality:     entity.ImageQualityHD,
		Size:        entity.ImageSize1024,
	}))

	assert.Error(t, v.ValidateImage(&entity.ImageRequest{
		RequestBase: entity.RequestBase{Prompt: "a tower at dusk"},
		AspectRatio: entity.AspectRatio("21:9"),
	}))
	assert.Error(t, v.ValidateImage(&entity.ImageRequest{
		RequestBase: entity.RequestBase{Prompt: "a tower at dusk"},
		Quality:     entity.ImageQuality("ultra"),
	}))
	assert.Error(t, v.ValidateImage(&entity.ImageRequest{
		RequestBase: entity.RequestBase{Prompt: "a tower at dusk"},
		Size:        entity.ImageSize("2048x2048"),
	}))
}

func TestValidateAudio_SpeedBounds(t *testing.T) {
	v := newTestValidator(t)

	for _, speed := range []float64{0.1, 4.5, -1} {
		err := v.ValidateAudio(&entity.AudioRequest{
			RequestBase: entity.RequestBase{Prompt: "narrate this"},
			Speed:       speed,
		})
		require.Error(t, err, "speed %v", speed)
	}

	// 零值表示未指定
	for _, speed := range []float64{0, 0.25, 1.0, 4.0} {
		assert.NoError(t, v.ValidateAudio(&entity.AudioRequest{
			RequestBase: entity.RequestBase{Prompt: "narrate this"},
			Speed:       speed,
		}), "speed %v", speed)
	}
}

func TestValidateAudio_Format(t *testing.T) {
	v := newTestValidator(t)

	assert.Error(t, v.ValidateAudio(&entity.AudioRequest{
		RequestBase: entity.RequestBase{Prompt: "narrate this"},
		Format:      entity.AudioFormat("aac"),
	}))
	assert.NoError(t, v.ValidateAudio(&entity.AudioRequest{
		RequestBase: entity.RequestBase{Prompt: "narrate this"},
		Format:      entity.AudioFormatOGG,
	}))
}

func TestValidateCombined_TextMandatory(t *testing.T) {
	v := newTestValidator(t)

	err := v.ValidateCombined(&entity.CombinedRequest{})
	require.Error(t, err)

	err = v.ValidateCombined(&entity.CombinedRequest{
		Text: entity.TextRequest{RequestBase: entity.RequestBase{Prompt: "go on"}},
		Image: &entity.ImageRequest{
			RequestBase: entity.RequestBase{Prompt: ""},
		},
	})
	require.Error(t, err)

	assert.NoError(t, v.ValidateCombined(&entity.CombinedRequest{
		Text: entity.TextRequest{RequestBase: entity.RequestBase{Prompt: "go on"}},
	}))
}

func TestValidateChoices_Count(t *testing.T) {
	v := newTestValidator(t)

	req := &entity.TextRequest{RequestBase: entity.RequestBase{Prompt: "go on"}}

	assert.Error(t, v.ValidateChoices(req, 0))
	assert.Error(t, v.ValidateChoices(req, -2))
	assert.NoError(t, v.ValidateChoices(req, 1))
	assert.NoError(t, v.ValidateChoices(req, 4))
}

func TestValidate_NilRequests(t *testing.T) {
	v := newTestValidator(t)

	assert.Error(t, v.ValidateText(nil))
	assert.Error(t, v.ValidateImage(nil))
	assert.Error(t, v.ValidateAudio(nil))
	assert.Error(t, v.ValidateCombined(nil))
}
