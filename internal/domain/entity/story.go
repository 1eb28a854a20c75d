// Package entity 定义领域实体
package entity

import (
	"time"

	"gorm.io/gorm"
)

// StoryStatus 故事状态
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "draft"
	StoryStatusActive    StoryStatus = "active"
	StoryStatusCompleted StoryStatus = "completed"
	StoryStatusArchived  StoryStatus = "archived"
)

// StorySettings 故事生成设置，持久化为 JSONB
type StorySettings struct {
	AIModel     string  `json:"AIModel"`
	Genre       string  `json:"genre,omitempty"`
	Tone        string  `json:"tone,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	ImageStyle  string  `json:"image_style,omitempty"`
}

// DefaultStorySettings 新建故事的默认设置
func DefaultStorySettings() *StorySettings {
	return &StorySettings{AIModel: "gpt-4"}
}

// Story 分支故事实体
// 软删除约定：deleted_at 为 NULL 表示存活行
type Story struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      string         `json:"user_id" gorm:"type:uuid;index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Genre       string         `json:"genre,omitempty" gorm:"type:varchar(100)"`
	Status      StoryStatus    `json:"status" gorm:"type:varchar(50);default:'draft'"`
	Settings    *StorySettings `json:"settings,omitempty" gorm:"type:jsonb;serializer:json;default:'{\"AIModel\":\"gpt-4\"}'"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Story) TableName() string {
	return "stories"
}

// NewStory 创建新故事
func NewStory(userID, title string) *Story {
	now := time.Now()
	return &Story{
		UserID:    userID,
		Title:     title,
		Status:    StoryStatusDraft,
		Settings:  DefaultStorySettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEditable 检查故事是否可继续生成内容
func (s *Story) IsEditable() bool {
	return s.Status == StoryStatusDraft || s.Status == StoryStatusActive
}

// Model 返回故事配置的生成模型
func (s *Story) Model() string {
	if s.Settings == nil || s.Settings.AIModel == "" {
		return "gpt-4"
	}
	return s.Settings.AIModel
}
