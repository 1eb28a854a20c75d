// Package errors 提供统一的领域错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind 错误类别，封闭集合
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindConflict        Kind = "conflict"
	KindBusinessRule    Kind = "business_rule"
	KindExternalService Kind = "external_service"
	KindInternal        Kind = "internal"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeUnknown       ErrorCode = "1000"
	CodeInvalidParam  ErrorCode = "1001"
	CodeUnauthorized  ErrorCode = "1002"
	CodeForbidden     ErrorCode = "1003"
	CodeNotFound      ErrorCode = "1004"
	CodeConflict      ErrorCode = "1005"
	CodeBusinessRule  ErrorCode = "1006"
	CodeInternalError ErrorCode = "1007"

	// 资源错误 (3xxx)
	CodeUserNotFound    ErrorCode = "3001"
	CodeStoryNotFound   ErrorCode = "3002"
	CodeContentNotFound ErrorCode = "3003"
	CodeChoiceNotFound  ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeGenerationFailed    ErrorCode = "4001"
	CodeValidationFailed    ErrorCode = "4002"
	CodeEmailAlreadyExists  ErrorCode = "4003"
	CodeChoiceAlreadyChosen ErrorCode = "4004"
	CodeStoryStatusInvalid  ErrorCode = "4005"
	CodeNoProviderAvailable ErrorCode = "4006"
	CodeModerationRejected  ErrorCode = "4007"

	// 外部服务错误 (5xxx)
	CodeDatabaseError ErrorCode = "5001"
	CodeCacheError    ErrorCode = "5002"
	CodeProviderError ErrorCode = "5003"
)

// Context 错误发生时的请求上下文
type Context struct {
	UserID    string    `json:"user_id,omitempty"`
	StoryID   string    `json:"story_id,omitempty"`
	ContentID string    `json:"content_id,omitempty"`
	ChoiceID  string    `json:"choice_id,omitempty"`
	Operation string    `json:"operation,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DomainError 领域错误
// 构造后视为不可变；With* 方法返回携带新字段的副本
type DomainError struct {
	Kind       Kind           `json:"kind"`
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Context    *Context       `json:"context,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

// Error 实现 error 接口
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail 返回附加单个详情字段的副本
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	clone := e.clone()
	if clone.Details == nil {
		clone.Details = make(map[string]any, 1)
	}
	clone.Details[key] = value
	return clone
}

// WithError 返回携带底层错误的副本
func (e *DomainError) WithError(err error) *DomainError {
	clone := e.clone()
	clone.Err = err
	return clone
}

// WithContext 返回携带请求上下文的副本
func (e *DomainError) WithContext(ctx Context) *DomainError {
	clone := e.clone()
	if ctx.Timestamp.IsZero() {
		ctx.Timestamp = time.Now().UTC()
	}
	clone.Context = &ctx
	return clone
}

func (e *DomainError) clone() *DomainError {
	clone := *e
	if e.Details != nil {
		details := make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			details[k] = v
		}
		clone.Details = details
	}
	return &clone
}

// newError 按类别创建领域错误
func newError(kind Kind, code ErrorCode, message string) *DomainError {
	return &DomainError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: kindToHTTPStatus(kind),
	}
}

// Validation 创建校验错误
func Validation(code ErrorCode, message string) *DomainError {
	return newError(KindValidation, code, message)
}

// NotFound 创建资源不存在错误
func NotFound(code ErrorCode, message string) *DomainError {
	return newError(KindNotFound, code, message)
}

// Unauthorized 创建未认证错误
func Unauthorized(message string) *DomainError {
	return newError(KindUnauthorized, CodeUnauthorized, message)
}

// Forbidden 创建无权限错误
func Forbidden(message string) *DomainError {
	return newError(KindForbidden, CodeForbidden, message)
}

// Conflict 创建状态冲突错误
func Conflict(code ErrorCode, message string) *DomainError {
	return newError(KindConflict, code, message)
}

// BusinessRule 创建业务规则错误
func BusinessRule(code ErrorCode, message string) *DomainError {
	return newError(KindBusinessRule, code, message)
}

// ExternalService 创建外部服务错误
func ExternalService(code ErrorCode, message string) *DomainError {
	return newError(KindExternalService, code, message)
}

// Internal 创建内部错误
func Internal(message string) *DomainError {
	return newError(KindInternal, CodeInternalError, message)
}

// Wrap 包装底层错误
func Wrap(err error, kind Kind, code ErrorCode, message string) *DomainError {
	e := newError(kind, code, message)
	e.Err = err
	return e
}

// kindToHTTPStatus 错误类别转 HTTP 状态码
func kindToHTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBusinessRule:
		return http.StatusUnprocessableEntity
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam = Validation(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized = Unauthorized("unauthorized")
	ErrForbidden    = Forbidden("forbidden")
	ErrNotFound     = NotFound(CodeNotFound, "resource not found")
	ErrConflict     = Conflict(CodeConflict, "resource conflict")
	ErrInternal     = Internal("internal server error")

	ErrUserNotFound    = NotFound(CodeUserNotFound, "user not found")
	ErrStoryNotFound   = NotFound(CodeStoryNotFound, "story not found")
	ErrContentNotFound = NotFound(CodeContentNotFound, "story content not found")
	ErrChoiceNotFound  = NotFound(CodeChoiceNotFound, "story choice not found")

	ErrEmailAlreadyExists  = Conflict(CodeEmailAlreadyExists, "user with this email already exists")
	ErrChoiceAlreadyChosen = Conflict(CodeChoiceAlreadyChosen, "choice has already been selected")
	ErrGenerationFailed    = BusinessRule(CodeGenerationFailed, "content generation failed")
	ErrNoProviderAvailable = BusinessRule(CodeNoProviderAvailable, "no provider satisfies the requirements")
)

// IsDomainError 检查是否为 DomainError
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// ToDomainError 将任意错误归一化为 DomainError
// 已是领域错误时原样返回；否则包装为 Internal 并保留原始消息
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return Wrap(err, KindInternal, CodeUnknown, "unexpected error").
		WithDetail("original_error", err.Error())
}

// ShouldLog 判断错误是否需要记录日志
// 校验类与资源不存在类为高频预期错误，不作为事故记录
func ShouldLog(err error) bool {
	de := ToDomainError(err)
	switch de.Kind {
	case KindValidation, KindNotFound:
		return false
	default:
		return true
	}
}

// HTTPStatus 返回错误对应的 HTTP 状态码
func HTTPStatus(err error) int {
	return ToDomainError(err).HTTPStatus
}
