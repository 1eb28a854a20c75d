// Package entity 定义领域实体
package entity

import (
	"time"
)

// StoryContent 故事内容节点
// 每个节点是一段生成的叙事，节点之间通过选项连接成分支树
type StoryContent struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoryID         string    `json:"story_id" gorm:"type:uuid;index;not null"`
	ParentContentID *string   `json:"parent_content_id,omitempty" gorm:"type:uuid;index"`
	Content         string    `json:"content" gorm:"type:text;not null"`
	ImageURL        string    `json:"image_url,omitempty" gorm:"type:text"`
	AudioURL        string    `json:"audio_url,omitempty" gorm:"type:text"`
	Provider        string    `json:"provider,omitempty" gorm:"type:varchar(64)"`
	Model           string    `json:"model,omitempty" gorm:"type:varchar(64)"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Story   *Story        `json:"-" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
	Choices []StoryChoice `json:"choices,omitempty" gorm:"foreignKey:ContentID"`
}

// TableName 指定表名
func (StoryContent) TableName() string {
	return "story_content"
}

// StoryChoice 故事分支选项
// next_content_id 指向选择后的内容节点；内容被删除时置 NULL
type StoryChoice struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContentID     string     `json:"content_id" gorm:"type:uuid;index;not null"`
	Text          string     `json:"text" gorm:"type:text;not null"`
	Description   string     `json:"description" gorm:"type:text;default:''"`
	ChoiceType    ChoiceType `json:"choice_type" gorm:"type:varchar(32);not null"`
	IsSelected    bool       `json:"is_selected" gorm:"default:false"`
	NextContentID *string    `json:"next_content_id,omitempty" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	NextContent *StoryContent `json:"-" gorm:"foreignKey:NextContentID;constraint:OnDelete:SET NULL"`
}

// TableName 指定表名
func (StoryChoice) TableName() string {
	return "story_choices"
}
