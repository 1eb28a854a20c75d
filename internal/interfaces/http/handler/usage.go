package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"storyweave-api/internal/application/usage"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/internal/interfaces/http/dto"
)

// 汇总窗口默认 30 天，最长一年
const (
	defaultSummaryDays = 30
	maxSummaryDays     = 365
)

// UsageHandler 生成用量处理器
type UsageHandler struct {
	query *usage.Query
}

// NewUsageHandler 创建用量处理器
func NewUsageHandler(query *usage.Query) *UsageHandler {
	return &UsageHandler{query: query}
}

// Summary 用量汇总
// @Summary 汇总用户近期生成用量
// @Tags Usage
// @Produce json
// @Param id path string true "用户 ID"
// @Param days query int false "统计窗口天数，默认 30"
// @Success 200 {object} dto.Response[dto.UsageSummaryResponse]
// @Router /v1/users/{id}/usage/summary [get]
func (h *UsageHandler) Summary(c *gin.Context) {
	days := dto.BindIntQuery(c, "days", defaultSummaryDays)
	if days < 1 || days > maxSummaryDays {
		days = defaultSummaryDays
	}
	since := time.Now().AddDate(0, 0, -days)

	userID := dto.BindID(c)
	summary, err := h.query.Summary(c.Request.Context(), userID, since)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToUsageSummaryResponse(userID, since, summary))
}

// ListEvents 用量事件列表
// @Summary 分页查询用户的生成用量事件
// @Tags Usage
// @Produce json
// @Param id path string true "用户 ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.UsageEventResponse]
// @Router /v1/users/{id}/usage/events [get]
func (h *UsageHandler) ListEvents(c *gin.Context) {
	page := dto.BindPage(c)

	result, err := h.query.ListEvents(c.Request.Context(), dto.BindID(c),
		repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		dto.Error(c, err)
		return
	}

	items := make([]*dto.UsageEventResponse, 0, len(result.Items))
	for _, e := range result.Items {
		items = append(items, dto.ToUsageEventResponse(e))
	}
	dto.SuccessWithPage(c, items,
		dto.NewPageMeta(result.Page, result.PageSize, result.Total, result.TotalPages))
}
