package dto

import (
	"time"

	"storyweave-api/internal/domain/entity"
)

// CreateStoryRequest 创建故事请求体
type CreateStoryRequest struct {
	UserID      string                `json:"user_id" binding:"required"`
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description,omitempty"`
	Genre       string                `json:"genre,omitempty"`
	Settings    *entity.StorySettings `json:"settings,omitempty"`
}

// UpdateStoryRequest 更新故事请求体，nil 字段表示不修改
type UpdateStoryRequest struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Genre       *string               `json:"genre,omitempty"`
	Status      *string               `json:"status,omitempty"`
	Settings    *entity.StorySettings `json:"settings,omitempty"`
}

// StoryResponse 故事响应
type StoryResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Genre       string                `json:"genre,omitempty"`
	Status      string                `json:"status"`
	Settings    *entity.StorySettings `json:"settings,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ToStoryResponse 转换故事实体
func ToStoryResponse(s *entity.Story) *StoryResponse {
	return &StoryResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Title:       s.Title,
		Description: s.Description,
		Genre:       s.Genre,
		Status:      string(s.Status),
		Settings:    s.Settings,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// StoryChoiceResponse 故事选项响应
type StoryChoiceResponse struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Description   string  `json:"description,omitempty"`
	ChoiceType    string  `json:"choice_type"`
	IsSelected    bool    `json:"is_selected"`
	NextContentID *string `json:"next_content_id,omitempty"`
}

// StoryContentResponse 故事内容节点响应
type StoryContentResponse struct {
	ID              string                `json:"id"`
	StoryID         string                `json:"story_id"`
	ParentContentID *string               `json:"parent_content_id,omitempty"`
	Content         string                `json:"content"`
	ImageURL        string                `json:"image_url,omitempty"`
	AudioURL        string                `json:"audio_url,omitempty"`
	Provider        string                `json:"provider,omitempty"`
	Model           string                `json:"model,omitempty"`
	Choices         []StoryChoiceResponse `json:"choices,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// ToStoryContentResponse 转换内容节点实体
func ToStoryContentResponse(c *entity.StoryContent) *StoryContentResponse {
	resp := &StoryContentResponse{
		ID:              c.ID,
		StoryID:         c.StoryID,
		ParentContentID: c.ParentContentID,
		Content:         c.Content,
		ImageURL:        c.ImageURL,
		AudioURL:        c.AudioURL,
		Provider:        c.Provider,
		Model:           c.Model,
		CreatedAt:       c.CreatedAt,
	}
	for _, ch := range c.Choices {
		resp.Choices = append(resp.Choices, StoryChoiceResponse{
			ID:            ch.ID,
			Text:          ch.Text,
			Description:   ch.Description,
			ChoiceType:    string(ch.ChoiceType),
			IsSelected:    ch.IsSelected,
			NextContentID: ch.NextContentID,
		})
	}
	return resp
}

// SelectChoiceRequest 选择分支请求体：为所选选项生成并挂接后续内容
type SelectChoiceRequest struct {
	ChoiceID string                   `json:"choice_id" binding:"required"`
	Provider string                   `json:"provider,omitempty"`
	Params   *GenerationParamsRequest `json:"params,omitempty"`
}
