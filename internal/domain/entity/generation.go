// Package entity 定义领域实体
package entity

import (
	"time"
)

// GenerationKind 生成请求种类
type GenerationKind string

const (
	GenerationKindText     GenerationKind = "text"
	GenerationKindImage    GenerationKind = "image"
	GenerationKindAudio    GenerationKind = "audio"
	GenerationKindCombined GenerationKind = "combined"
	GenerationKindChoices  GenerationKind = "choices"
)

// ChoiceType 选项语义类型，封闭集合
type ChoiceType string

const (
	ChoiceTypeAction      ChoiceType = "action"
	ChoiceTypeDialogue    ChoiceType = "dialogue"
	ChoiceTypeExploration ChoiceType = "exploration"
	ChoiceTypeCombat      ChoiceType = "combat"
	ChoiceTypeSocial      ChoiceType = "social"
)

// ChoiceTypes 全部合法选项类型
var ChoiceTypes = []ChoiceType{
	ChoiceTypeAction,
	ChoiceTypeDialogue,
	ChoiceTypeExploration,
	ChoiceTypeCombat,
	ChoiceTypeSocial,
}

// Valid 检查选项类型是否属于封闭集合
func (t ChoiceType) Valid() bool {
	for _, v := range ChoiceTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Choice 生成的分支选项值对象
type Choice struct {
	Text        string     `json:"text"`
	Description string     `json:"description,omitempty"`
	Type        ChoiceType `json:"type"`
}

// TextLength 文本长度档位
type TextLength string

const (
	TextLengthShort  TextLength = "short"
	TextLengthMedium TextLength = "medium"
	TextLengthLong   TextLength = "long"
)

// Valid 检查长度档位
func (l TextLength) Valid() bool {
	switch l {
	case TextLengthShort, TextLengthMedium, TextLengthLong:
		return true
	}
	return false
}

// AspectRatio 图像宽高比
type AspectRatio string

const (
	AspectRatioSquare   AspectRatio = "1:1"
	AspectRatioWide     AspectRatio = "16:9"
	AspectRatioTall     AspectRatio = "9:16"
	AspectRatioStandard AspectRatio = "4:3"
)

// Valid 检查宽高比
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectRatioSquare, AspectRatioWide, AspectRatioTall, AspectRatioStandard:
		return true
	}
	return false
}

// ImageQuality 图像质量档位
type ImageQuality string

const (
	ImageQualityStandard ImageQuality = "standard"
	ImageQualityHD       ImageQuality = "hd"
)

// Valid 检查质量档位
func (q ImageQuality) Valid() bool {
	return q == ImageQualityStandard || q == ImageQualityHD
}

// ImageSize 图像尺寸
type ImageSize string

const (
	ImageSize256       ImageSize = "256x256"
	ImageSize512       ImageSize = "512x512"
	ImageSize1024      ImageSize = "1024x1024"
	ImageSizeLandscape ImageSize = "1792x1024"
)

// Valid 检查图像尺寸
func (s ImageSize) Valid() bool {
	switch s {
	case ImageSize256, ImageSize512, ImageSize1024, ImageSizeLandscape:
		return true
	}
	return false
}

// AudioFormat 音频输出格式
type AudioFormat string

const (
	AudioFormatMP3  AudioFormat = "mp3"
	AudioFormatWAV  AudioFormat = "wav"
	AudioFormatOGG  AudioFormat = "ogg"
	AudioFormatFLAC AudioFormat = "flac"
)

// Valid 检查音频格式
func (f AudioFormat) Valid() bool {
	switch f {
	case AudioFormatMP3, AudioFormatWAV, AudioFormatOGG, AudioFormatFLAC:
		return true
	}
	return false
}

// GenerationParams 可选生成参数
type GenerationParams struct {
	Temperature *float64 `json:"temperature,omitempty"` // [0,1]
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // > 0
	Model       string   `json:"model,omitempty"`
}

// RequestBase 各变体共享的请求字段
type RequestBase struct {
	Prompt          string            `json:"prompt"`
	Context         string            `json:"context,omitempty"`
	StoryID         string            `json:"story_id,omitempty"`
	UserID          string            `json:"user_id,omitempty"`
	ParentContentID *string           `json:"parent_content_id,omitempty"`
	Provider        string            `json:"provider,omitempty"`
	Params          *GenerationParams `json:"params,omitempty"`
}

// TextRequest 文本生成请求
type TextRequest struct {
	RequestBase
	Genre       string       `json:"genre,omitempty"`
	Tone        string       `json:"tone,omitempty"`
	Length      TextLength   `json:"length,omitempty"`
	ChoiceCount int          `json:"choice_count,omitempty"`
	ChoiceTypes []ChoiceType `json:"choice_types,omitempty"`
}

// ImageRequest 图像生成请求
type ImageRequest struct {
	RequestBase
	AspectRatio AspectRatio  `json:"aspect_ratio,omitempty"`
	Quality     ImageQuality `json:"quality,omitempty"`
	Size        ImageSize    `json:"size,omitempty"`
	Style       string       `json:"style,omitempty"`
}

// AudioRequest 音频生成请求
type AudioRequest struct {
	RequestBase
	Voice  string      `json:"voice,omitempty"`
	Speed  float64     `json:"speed,omitempty"`
	Format AudioFormat `json:"format,omitempty"`
}

// CombinedRequest 组合生成请求
// 文本为必选；图像与音频为可选的子请求
type CombinedRequest struct {
	Text  TextRequest   `json:"text"`
	Image *ImageRequest `json:"image,omitempty"`
	Audio *AudioRequest `json:"audio,omitempty"`
}

// TokenUsage 单次调用的 Token 用量
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

// Total 总 Token 数
func (u TokenUsage) Total() int {
	return u.Prompt + u.Completion
}

// GenerationResult 生成结果
// 不变式：Success 为 true 时 Error 为空，反之亦然；GenerationTime 恒非负
type GenerationResult struct {
	Success        bool               `json:"success"`
	Provider       string             `json:"provider,omitempty"`
	Model          string             `json:"model,omitempty"`
	Content        string             `json:"content,omitempty"`
	MediaURL       string             `json:"media_url,omitempty"`
	Choices        []Choice           `json:"choices,omitempty"`
	GenerationTime time.Duration      `json:"generation_time"`
	TokensUsed     TokenUsage         `json:"tokens_used"`
	Cost           float64            `json:"cost"`
	Error          string             `json:"error,omitempty"`
	Breakdown      *CombinedBreakdown `json:"breakdown,omitempty"`
}

// CombinedBreakdown 组合生成的分项结果
// 未请求的子生成不出现在结构中
type CombinedBreakdown struct {
	TextGeneration  *GenerationResult `json:"text_generation,omitempty"`
	ImageGeneration *GenerationResult `json:"image_generation,omitempty"`
	AudioGeneration *GenerationResult `json:"audio_generation,omitempty"`
}

// FailedResult 构造失败结果
func FailedResult(provider, errMsg string, elapsed time.Duration) *GenerationResult {
	if elapsed < 0 {
		elapsed = 0
	}
	return &GenerationResult{
		Success:        false,
		Provider:       provider,
		Error:          errMsg,
		GenerationTime: elapsed,
	}
}
