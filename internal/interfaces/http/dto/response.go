// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"github.com/gin-gonic/gin"

	"storyweave-api/pkg/errors"
	"storyweave-api/pkg/logger"
)

// Response 统一成功响应结构
type Response[T any] struct {
	Success   bool      `json:"success"`
	Data      T         `json:"data,omitempty"`
	Meta      *PageMeta `json:"meta,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// PageMeta 分页元数据
type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success 返回成功响应
func Success[T any](c *gin.Context, data T) {
	c.JSON(200, Response[T]{
		Success:   true,
		Data:      data,
		RequestID: c.GetString("request_id"),
	})
}

// SuccessWithPage 返回带分页的成功响应
func SuccessWithPage[T any](c *gin.Context, data T, meta *PageMeta) {
	c.JSON(200, Response[T]{
		Success:   true,
		Data:      data,
		Meta:      meta,
		RequestID: c.GetString("request_id"),
	})
}

// Created 返回创建成功响应 (201)
func Created[T any](c *gin.Context, data T) {
	c.JSON(201, Response[T]{
		Success:   true,
		Data:      data,
		RequestID: c.GetString("request_id"),
	})
}

// NoContent 返回无内容响应 (204)
func NoContent(c *gin.Context) {
	c.Status(204)
}

// Error 把错误映射为确定的 HTTP 状态码与错误响应体。
// Validation 与 NotFound 不记日志，其余按领域错误级别记录。
func Error(c *gin.Context, err error) {
	if errors.ShouldLog(err) {
		logger.Error(c.Request.Context(), "request failed", err,
			"path", c.Request.URL.Path, "method", c.Request.Method)
	}
	status, body := errors.ToHTTPBody(err)
	c.JSON(status, body)
}

// BadRequest 返回 400 校验错误
func BadRequest(c *gin.Context, message string) {
	Error(c, errors.Validation(errors.CodeInvalidParam, message))
}

// NewPageMeta 创建分页元数据
func NewPageMeta(page, pageSize int, total int64, totalPages int) *PageMeta {
	return &PageMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
