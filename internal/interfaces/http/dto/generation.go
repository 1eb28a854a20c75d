package dto

import (
	"storyweave-api/internal/domain/entity"
)

// GenerationParamsRequest 可选生成参数
type GenerationParamsRequest struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Model       string   `json:"model,omitempty"`
}

func (r *GenerationParamsRequest) toEntity() *entity.GenerationParams {
	if r == nil {
		return nil
	}
	return &entity.GenerationParams{
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Model:       r.Model,
	}
}

// GenerateTextRequest 文本生成请求体
type GenerateTextRequest struct {
	Prompt          string                   `json:"prompt" binding:"required"`
	Context         string                   `json:"context,omitempty"`
	StoryID         string                   `json:"story_id,omitempty"`
	UserID          string                   `json:"user_id,omitempty"`
	ParentContentID *string                  `json:"parent_content_id,omitempty"`
	Provider        string                   `json:"provider,omitempty"`
	Params          *GenerationParamsRequest `json:"params,omitempty"`
	Genre           string                   `json:"genre,omitempty"`
	Tone            string                   `json:"tone,omitempty"`
	Length          string                   `json:"length,omitempty"`
	ChoiceCount     int                      `json:"choice_count,omitempty"`
	ChoiceTypes     []string                 `json:"choice_types,omitempty"`
}

// ToEntity 转换为领域请求
func (r *GenerateTextRequest) ToEntity() *entity.TextRequest {
	req := &entity.TextRequest{
		RequestBase: entity.RequestBase{
			Prompt:          r.Prompt,
			Context:         r.Context,
			StoryID:         r.StoryID,
			UserID:          r.UserID,
			ParentContentID: r.ParentContentID,
			Provider:        r.Provider,
			Params:          r.Params.toEntity(),
		},
		Genre:       r.Genre,
		Tone:        r.Tone,
		Length:      entity.TextLength(r.Length),
		ChoiceCount: r.ChoiceCount,
	}
	for _, t := range r.ChoiceTypes {
		req.ChoiceTypes = append(req.ChoiceTypes, entity.ChoiceType(t))
	}
	return req
}

// GenerateImageRequest 图像生成请求体
type GenerateImageRequest struct {
	Prompt      string                   `json:"prompt" binding:"required"`
	Context     string                   `json:"context,omitempty"`
	StoryID     string                   `json:"story_id,omitempty"`
	UserID      string                   `json:"user_id,omitempty"`
	Provider    string                   `json:"provider,omitempty"`
	Params      *GenerationParamsRequest `json:"params,omitempty"`
	AspectRatio string                   `json:"aspect_ratio,omitempty"`
	Quality     string                   `json:"quality,omitempty"`
	Size        string                   `json:"size,omitempty"`
	Style       string                   `json:"style,omitempty"`
}

// ToEntity 转换为领域请求
func (r *GenerateImageRequest) ToEntity() *entity.ImageRequest {
	return &entity.ImageRequest{
		RequestBase: entity.RequestBase{
			Prompt:   r.Prompt,
			Context:  r.Context,
			StoryID:  r.StoryID,
			UserID:   r.UserID,
			Provider: r.Provider,
			Params:   r.Params.toEntity(),
		},
		AspectRatio: entity.AspectRatio(r.AspectRatio),
		Quality:     entity.ImageQuality(r.Quality),
		Size:        entity.ImageSize(r.Size),
		Style:       r.Style,
	}
}

// GenerateAudioRequest 音频生成请求体
type GenerateAudioRequest struct {
	Prompt   string                   `json:"prompt" binding:"required"`
	Context  string                   `json:"context,omitempty"`
	StoryID  string                   `json:"story_id,omitempty"`
	UserID   string                   `json:"user_id,omitempty"`
	Provider string                   `json:"provider,omitempty"`
	Params   *GenerationParamsRequest `json:"params,omitempty"`
	Voice    string                   `json:"voice,omitempty"`
	Speed    float64                  `json:"speed,omitempty"`
	Format   string                   `json:"format,omitempty"`
}

// ToEntity 转换为领域请求
func (r *GenerateAudioRequest) ToEntity() *entity.AudioRequest {
	return &entity.AudioRequest{
		RequestBase: entity.RequestBase{
			Prompt:   r.Prompt,
			Context:  r.Context,
			StoryID:  r.StoryID,
			UserID:   r.UserID,
			Provider: r.Provider,
			Params:   r.Params.toEntity(),
		},
		Voice:  r.Voice,
		Speed:  r.Speed,
		Format: entity.AudioFormat(r.Format),
	}
}

// GenerateCombinedRequest 组合生成请求体
type GenerateCombinedRequest struct {
	Text  GenerateTextRequest   `json:"text" binding:"required"`
	Image *GenerateImageRequest `json:"image,omitempty"`
	Audio *GenerateAudioRequest `json:"audio,omitempty"`
}

// ToEntity 转换为领域请求
func (r *GenerateCombinedRequest) ToEntity() *entity.CombinedRequest {
	req := &entity.CombinedRequest{Text: *r.Text.ToEntity()}
	if r.Image != nil {
		req.Image = r.Image.ToEntity()
	}
	if r.Audio != nil {
		req.Audio = r.Audio.ToEntity()
	}
	return req
}

// GenerateChoicesRequest 选项生成请求体
type GenerateChoicesRequest struct {
	GenerateTextRequest
	Count int `json:"count"`
}

// ModerateRequest 内容审核请求体
type ModerateRequest struct {
	Content  string `json:"content" binding:"required"`
	Provider string `json:"provider,omitempty"`
}

// EstimateRequest 成本估算请求体
type EstimateRequest struct {
	Provider        string `json:"provider" binding:"required"`
	Prompt          string `json:"prompt,omitempty"`
	InputTokens     int    `json:"input_tokens,omitempty"`
	MaxOutputTokens int    `json:"max_output_tokens,omitempty"`
}

// EstimateResponse 成本估算响应
type EstimateResponse struct {
	Provider     string  `json:"provider"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// GenerationResultResponse 生成结果响应
type GenerationResultResponse struct {
	Success          bool                     `json:"success"`
	Provider         string                   `json:"provider,omitempty"`
	Model            string                   `json:"model,omitempty"`
	Content          string                   `json:"content,omitempty"`
	MediaURL         string                   `json:"media_url,omitempty"`
	Choices          []entity.Choice          `json:"choices,omitempty"`
	GenerationTimeMs int64                    `json:"generation_time_ms"`
	TokensUsed       entity.TokenUsage        `json:"tokens_used"`
	Cost             float64                  `json:"cost"`
	Error            string                   `json:"error,omitempty"`
	Breakdown        *CombinedBreakdownResult `json:"breakdown,omitempty"`
}

// CombinedBreakdownResult 组合生成分项响应
type CombinedBreakdownResult struct {
	TextGeneration  *GenerationResultResponse `json:"text_generation,omitempty"`
	ImageGeneration *GenerationResultResponse `json:"image_generation,omitempty"`
	AudioGeneration *GenerationResultResponse `json:"audio_generation,omitempty"`
}

// ToGenerationResultResponse 转换生成结果
func ToGenerationResultResponse(r *entity.GenerationResult) *GenerationResultResponse {
	if r == nil {
		return nil
	}
	resp := &GenerationResultResponse{
		Success:          r.Success,
		Provider:         r.Provider,
		Model:            r.Model,
		Content:          r.Content,
		MediaURL:         r.MediaURL,
		Choices:          r.Choices,
		GenerationTimeMs: r.GenerationTime.Milliseconds(),
		TokensUsed:       r.TokensUsed,
		Cost:             r.Cost,
		Error:            r.Error,
	}
	if r.Breakdown != nil {
		resp.Breakdown = &CombinedBreakdownResult{
			TextGeneration:  ToGenerationResultResponse(r.Breakdown.TextGeneration),
			ImageGeneration: ToGenerationResultResponse(r.Breakdown.ImageGeneration),
			AudioGeneration: ToGenerationResultResponse(r.Breakdown.AudioGeneration),
		}
	}
	return resp
}
