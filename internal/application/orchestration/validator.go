package orchestration

import (
	"fmt"
	"strings"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/pkg/errors"
)

// MaxPromptLength 提示词最大长度（字符数）
const MaxPromptLength = 8000

// Validator 生成请求校验器
type Validator struct {
	registry *Registry
}

// NewValidator 创建校验器
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// ValidateText 校验文本生成请求
func (v *Validator) ValidateText(req *entity.TextRequest) error {
	if req == nil {
		return errors.Validation(errors.CodeInvalidParam, "request is required")
	}
	if err := v.validateBase(&req.RequestBase); err != nil {
		return err
	}
	if req.Length != "" && !req.Length.Valid() {
		return errors.Validation(errors.CodeInvalidParam, "invalid text length").
			WithDetail("length", string(req.Length))
	}
	if req.ChoiceCount < 0 {
		return errors.Validation(errors.CodeInvalidParam, "choice count must not be negative").
			WithDetail("choice_count", req.ChoiceCount)
	}
	for _, t := range req.ChoiceTypes {
		if !t.Valid() {
			return errors.Validation(errors.CodeInvalidParam, "invalid choice type").
				WithDetail("choice_type", string(t))
		}
	}
	return nil
}

// ValidateImage 校验图像生成请求
func (v *Validator) ValidateImage(req *entity.ImageRequest) error {
	if req == nil {
		return errors.Validation(errors.CodeInvalidParam, "request is required")
	}
	if err := v.validateBase(&req.RequestBase); err != nil {
		return err
	}
	if req.AspectRatio != "" && !req.AspectRatio.Valid() {
		return errors.Validation(errors.CodeInvalidParam, "invalid aspect ratio").
			WithDetail("aspect_ratio", string(req.AspectRatio))
	}
	if req.Quality != "" && !req.Quality.Valid() {
		return errors.Validation(errors.CodeInvalidParam, "invalid image quality").
			WithDetail("quality", string(req.Quality))
	}
	if req.Size != "" && !req.Size.Valid() {
		return errors.Validation(errors.CodeInvalidParam, "invalid image size").
			WithDetail("size", string(req.Size))
	}
	return nil
}

// ValidateAudio 校验音频生成请求
func (v *Validator) ValidateAudio(req *entity.AudioRequest) error {
	if req == nil {
		return errors.Validation(errors.CodeInvalidParam, "request is required")
	}
	if err := v.validateBase(&req.RequestBase); err != nil {
		return err
	}
	if req.Format != "" && !req.Format.Valid() {
		return errors.Validation(errors.CodeInvalidParam, "invalid audio format").
			WithDetail("format", string(req.Format))
	}
	if req.Speed != 0 && (req.Speed < 0.25 || req.Speed > 4.0) {
		return errors.Validation(errors.CodeInvalidParam, "speed must be between 0.25 and 4.0").
			WithDetail("speed", req.Speed)
	}
	return nil
}

// ValidateCombined 校验组合生成请求，文本子请求为必选
func (v *Validator) ValidateCombined(req *entity.CombinedRequest) error {
	if req == nil {
		return errors.Validation(errors.CodeInvalidParam, "request is required")
	}
	if err := v.ValidateText(&req.Text); err != nil {
		return err
	}
	if req.Image != nil {
		if err := v.ValidateImage(req.Image); err != nil {
			return err
		}
	}
	if req.Audio != nil {
		if err := v.ValidateAudio(req.Audio); err != nil {
			return err
		}
	}
	return nil
}

// ValidateChoices 校验选项生成请求
func (v *Validator) ValidateChoices(req *entity.TextRequest, count int) error {
	if count < 1 {
		return errors.Validation(errors.CodeInvalidParam, "choice count must be at least 1").
			WithDetail("choice_count", count)
	}
	return v.ValidateText(req)
}

// validateBase 校验各变体共享的字段
func (v *Validator) validateBase(base *entity.RequestBase) error {
	if strings.TrimSpace(base.Prompt) == "" {
		return errors.Validation(errors.CodeInvalidParam, "prompt is required")
	}
	if len(base.Prompt) > MaxPromptLength {
		return errors.Validation(errors.CodeInvalidParam,
			fmt.Sprintf("prompt exceeds maximum length of %d characters", MaxPromptLength)).
			WithDetail("prompt_length", len(base.Prompt))
	}
	if base.Params != nil {
		if base.Params.Temperature != nil {
			t := *base.Params.Temperature
			if t < 0 || t > 1 {
				return errors.Validation(errors.CodeInvalidParam, "temperature must be between 0 and 1").
					WithDetail("temperature", t)
			}
		}
		if base.Params.MaxTokens != nil && *base.Params.MaxTokens <= 0 {
			return errors.Validation(errors.CodeInvalidParam, "max_tokens must be positive").
				WithDetail("max_tokens", *base.Params.MaxTokens)
		}
	}
	if base.Provider != "" {
		if _, ok := v.registry.Get(base.Provider); !ok {
			return errors.Validation(errors.CodeInvalidParam, "unknown provider").
				WithDetail("provider", base.Provider)
		}
		if !v.registry.IsEnabled(base.Provider) {
			return errors.BusinessRule(errors.CodeNoProviderAvailable, "provider is disabled").
				WithDetail("provider", base.Provider)
		}
	}
	return nil
}
