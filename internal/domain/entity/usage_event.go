// Package entity 定义领域实体
package entity

import "time"

// GenerationUsageEvent 一次生成调用的计量流水
type GenerationUsageEvent struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           string    `json:"user_id,omitempty" gorm:"type:uuid;index"`
	StoryID          *string   `json:"story_id,omitempty" gorm:"type:uuid;index"`
	Provider         string    `json:"provider" gorm:"type:varchar(64);not null"`
	Model            string    `json:"model" gorm:"type:varchar(64);not null"`
	Kind             string    `json:"kind" gorm:"type:varchar(32);not null"`
	Success          bool      `json:"success" gorm:"not null;default:false"`
	TokensPrompt     int       `json:"tokens_prompt" gorm:"not null;default:0"`
	TokensCompletion int       `json:"tokens_completion" gorm:"not null;default:0"`
	CostUSD          float64   `json:"cost_usd" gorm:"not null;default:0"`
	DurationMs       int       `json:"duration_ms" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (GenerationUsageEvent) TableName() string {
	return "generation_usage_events"
}
