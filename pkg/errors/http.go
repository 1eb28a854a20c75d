package errors

import "time"

// ErrorBody 跨进程边界的错误载荷
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// HTTPResponse 边界层统一错误响应
type HTTPResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ToHTTPBody 将任意错误转换为 (状态码, 响应体) 二元组
// 映射关系确定：400 Validation / 401 Unauthorized / 403 Forbidden /
// 404 NotFound / 409 Conflict / 422 BusinessRule / 502 ExternalService / 500 Internal
func ToHTTPBody(err error) (int, HTTPResponse) {
	de := ToDomainError(err)

	ts := time.Now().UTC()
	if de.Context != nil && !de.Context.Timestamp.IsZero() {
		ts = de.Context.Timestamp
	}

	return de.HTTPStatus, HTTPResponse{
		Success: false,
		Error: ErrorBody{
			Code:      de.Code,
			Message:   de.Message,
			Details:   de.Details,
			Timestamp: ts,
		},
	}
}
