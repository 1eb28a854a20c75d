// Package service 定义领域服务接口
package service

import (
	"context"
	"time"
)

// GenerationUsageInput 一次生成调用的用量记录
type GenerationUsageInput struct {
	UserID           string
	StoryID          string
	Provider         string
	Model            string
	Kind             string
	Success          bool
	TokensPrompt     int
	TokensCompletion int
	CostUSD          float64
	Duration         time.Duration
}

// UsageRecorder 记录生成用量，失败不应阻断生成流程
type UsageRecorder interface {
	// Record 异步安全地记录一次用量事件
	Record(ctx context.Context, input GenerationUsageInput)
}
