package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweave-api/internal/config"
	"storyweave-api/internal/domain/entity"
)

func TestMock_GenerateText(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{Model: "mock-story-v1"})

	result, err := m.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "The hero enters the tower"},
		Genre:       "mystery",
		Tone:        "tense",
		Length:      entity.TextLengthLong,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "mock-story-v1", result.Model)
	assert.Contains(t, result.Content, "The story continues: The hero enters the tower")
	assert.Contains(t, result.Content, "mystery")
	assert.Contains(t, result.Content, "tense")
	assert.Positive(t, result.TokensUsed.Prompt)
	assert.Positive(t, result.TokensUsed.Completion)
}

func TestMock_GenerateText_WithChoices(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{})

	result, err := m.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "a fork in the road"},
		ChoiceCount: 7,
		ChoiceTypes: []entity.ChoiceType{entity.ChoiceTypeAction, entity.ChoiceTypeDialogue},
	})

	require.NoError(t, err)
	require.Len(t, result.Choices, 7)
	// 类型轮转覆盖请求的集合
	assert.Equal(t, entity.ChoiceTypeAction, result.Choices[0].Type)
	assert.Equal(t, entity.ChoiceTypeDialogue, result.Choices[1].Type)
	assert.Equal(t, entity.ChoiceTypeAction, result.Choices[2].Type)
}

func TestMock_GenerateChoices_DefaultTypes(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{})

	choices, err := m.GenerateChoices(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "a fork in the road"},
	}, 5)

	require.NoError(t, err)
	require.Len(t, choices, 5)
	seen := make(map[entity.ChoiceType]bool)
	for _, c := range choices {
		assert.True(t, c.Type.Valid())
		seen[c.Type] = true
	}
	assert.Len(t, seen, 5)
}

func TestMock_GenerateImage(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{})

	result, err := m.GenerateImage(context.Background(), &entity.ImageRequest{
		RequestBase: entity.RequestBase{Prompt: "a tower at dusk"},
		Size:        entity.ImageSize512,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://images.example.com/mocked/512x512.png", result.MediaURL)

	// 未指定尺寸时使用默认值
	result, err = m.GenerateImage(context.Background(), &entity.ImageRequest{
		RequestBase: entity.RequestBase{Prompt: "a tower at dusk"},
	})
	require.NoError(t, err)
	assert.Contains(t, result.MediaURL, "1024x1024")
}

func TestMock_GenerateAudio(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{})

	result, err := m.GenerateAudio(context.Background(), &entity.AudioRequest{
		RequestBase: entity.RequestBase{Prompt: "narrate the scene"},
		Format:      entity.AudioFormatOGG,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://audio.example.com/mocked/narration.ogg", result.MediaURL)
}

func TestMock_CheckAvailability(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{}, WithLatency(5*time.Millisecond))

	status, err := m.CheckAvailability(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "mocked", status.Provider)
	assert.True(t, status.IsAvailable)
	assert.Equal(t, 5*time.Millisecond, status.ResponseTime)
}

func TestMock_ModerateContent(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{})

	result, err := m.ModerateContent(context.Background(), "a calm walk in the forest")
	require.NoError(t, err)
	assert.True(t, result.Approved)

	for _, blocked := range []string{"an EXPLICIT scene", "scenes of graphic violence"} {
		result, err = m.ModerateContent(context.Background(), blocked)
		require.NoError(t, err)
		assert.False(t, result.Approved)
		assert.Contains(t, result.Categories, "flagged")
		assert.NotEmpty(t, result.Reason)
	}
}

func TestMock_WithFailure(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{}, WithFailure())

	_, err := m.GenerateText(context.Background(), &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on"},
	})
	require.Error(t, err)

	_, err = m.CheckAvailability(context.Background())
	require.Error(t, err)
}

func TestMock_ContextCancelledDuringLatency(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{}, WithLatency(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := m.GenerateText(ctx, &entity.TextRequest{
		RequestBase: entity.RequestBase{Prompt: "go on"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestMock_Models(t *testing.T) {
	m := NewMock("mocked", config.ProviderConfig{
		Model:           "mock-story-pro",
		InputCostPer1K:  0.003,
		OutputCostPer1K: 0.012,
		MaxTokens:       4096,
	})

	models := m.Models()
	require.Len(t, models, 1)
	assert.Equal(t, "mock-story-pro", models[0].Name)
	assert.Equal(t, 0.003, models[0].InputCostPer1K)
	assert.Equal(t, 4096, models[0].MaxTokens)
}
