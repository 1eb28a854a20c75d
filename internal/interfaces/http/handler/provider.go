package handler

import (
	"github.com/gin-gonic/gin"

	"storyweave-api/internal/application/orchestration"
	"storyweave-api/internal/interfaces/http/dto"
	"storyweave-api/pkg/errors"
)

// ProviderHandler 提供商管理处理器
type ProviderHandler struct {
	orchestrator *orchestration.Orchestrator
	registry     *orchestration.Registry
}

// NewProviderHandler 创建提供商处理器
func NewProviderHandler(orchestrator *orchestration.Orchestrator, registry *orchestration.Registry) *ProviderHandler {
	return &ProviderHandler{
		orchestrator: orchestrator,
		registry:     registry,
	}
}

// List 列举已注册提供商
// @Summary 列举提供商
// @Tags Providers
// @Produce json
// @Success 200 {object} dto.Response[[]dto.ProviderSummary]
// @Router /v1/providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	var out []dto.ProviderSummary
	for _, name := range h.registry.Names() {
		summary := dto.ProviderSummary{Name: name}
		if cfg, ok := h.registry.Config(name); ok {
			summary.Model = cfg.Model
			summary.Enabled = cfg.Enabled
		}
		out = append(out, summary)
	}
	dto.Success(c, out)
}

// Status 查询提供商状态（实时探测）
// @Summary 查询提供商状态
// @Tags Providers
// @Produce json
// @Param pid path string true "提供商标识"
// @Success 200 {object} dto.Response[dto.ProviderStatusResponse]
// @Router /v1/providers/{pid}/status [get]
func (h *ProviderHandler) Status(c *gin.Context) {
	name := dto.BindProviderID(c)

	status, err := h.orchestrator.CheckProviderStatus(c.Request.Context(), name)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToProviderStatusResponse(status))
}

// Models 查询提供商支持的模型及定价
// @Summary 查询提供商模型
// @Tags Providers
// @Produce json
// @Param pid path string true "提供商标识"
// @Success 200 {object} dto.Response[[]entity.ModelInfo]
// @Router /v1/providers/{pid}/models [get]
func (h *ProviderHandler) Models(c *gin.Context) {
	name := dto.BindProviderID(c)

	p, ok := h.registry.Get(name)
	if !ok {
		dto.Error(c, errors.NotFound(errors.CodeNotFound, "provider not registered").
			WithDetail("provider", name))
		return
	}
	dto.Success(c, p.Models())
}

// Test 试调提供商
// @Summary 用固定提示词试调提供商
// @Tags Providers
// @Produce json
// @Param pid path string true "提供商标识"
// @Success 200 {object} dto.Response[dto.GenerationResultResponse]
// @Router /v1/providers/{pid}/test [post]
func (h *ProviderHandler) Test(c *gin.Context) {
	name := dto.BindProviderID(c)

	result, err := h.orchestrator.TestProvider(c.Request.Context(), name)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToGenerationResultResponse(result))
}

// Best 查询当前最优提供商
// @Summary 按评分查询最优提供商
// @Tags Providers
// @Produce json
// @Success 200 {object} dto.Response[dto.ProviderSummary]
// @Router /v1/providers/best [get]
func (h *ProviderHandler) Best(c *gin.Context) {
	name := h.orchestrator.BestProvider(orchestration.SelectionCriteria{})
	if name == "" {
		dto.Error(c, errors.BusinessRule(errors.CodeNoProviderAvailable, "no provider available"))
		return
	}

	summary := dto.ProviderSummary{Name: name}
	if cfg, ok := h.registry.Config(name); ok {
		summary.Model = cfg.Model
		summary.Enabled = cfg.Enabled
	}
	dto.Success(c, summary)
}
