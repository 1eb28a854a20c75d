// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"storyweave-api/internal/application/orchestration"
	"storyweave-api/internal/interfaces/http/dto"
	"storyweave-api/pkg/errors"
)

// GenerationHandler 内容生成处理器
type GenerationHandler struct {
	orchestrator *orchestration.Orchestrator
}

// NewGenerationHandler 创建内容生成处理器
func NewGenerationHandler(orchestrator *orchestration.Orchestrator) *GenerationHandler {
	return &GenerationHandler{orchestrator: orchestrator}
}

// GenerateText 文本生成
// @Summary 生成故事文本
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateTextRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerationResultResponse]
// @Router /v1/generate/text [post]
func (h *GenerationHandler) GenerateText(c *gin.Context) {
	var req dto.GenerateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.orchestrator.GenerateText(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToGenerationResultResponse(result))
}

// GenerateImage 图像生成
// @Summary 生成场景插图
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerationResultResponse]
// @Router /v1/generate/image [post]
func (h *GenerationHandler) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.orchestrator.GenerateImage(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToGenerationResultResponse(result))
}

// GenerateAudio 音频生成
// @Summary 生成旁白音频
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateAudioRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerationResultResponse]
// @Router /v1/generate/audio [post]
func (h *GenerationHandler) GenerateAudio(c *gin.Context) {
	var req dto.GenerateAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.orchestrator.GenerateAudio(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToGenerationResultResponse(result))
}

// GenerateCombined 组合生成
// @Summary 文本、图像与音频组合生成
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateCombinedRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerationResultResponse]
// @Router /v1/generate/combined [post]
func (h *GenerationHandler) GenerateCombined(c *gin.Context) {
	var req dto.GenerateCombinedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.orchestrator.GenerateCombined(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToGenerationResultResponse(result))
}

// GenerateChoices 选项生成
// @Summary 为既有情节生成后续选项
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateChoicesRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerationResultResponse]
// @Router /v1/generate/choices [post]
func (h *GenerationHandler) GenerateChoices(c *gin.Context) {
	var req dto.GenerateChoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	count := req.Count
	if count == 0 {
		count = req.ChoiceCount
	}

	result, err := h.orchestrator.GenerateChoices(c.Request.Context(), req.GenerateTextRequest.ToEntity(), count)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToGenerationResultResponse(result))
}

// Moderate 内容审核
// @Summary 审核用户输入内容
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.ModerateRequest true "审核内容"
// @Success 200 {object} dto.Response[dto.ModerationResponse]
// @Router /v1/moderate [post]
func (h *GenerationHandler) Moderate(c *gin.Context) {
	var req dto.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.orchestrator.ModerateContent(c.Request.Context(), req.Provider, req.Content)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ModerationResponse{
		Approved:   result.Approved,
		Categories: result.Categories,
		Reason:     result.Reason,
	})
}

// Estimate 成本估算
// @Summary 估算一次生成调用的成本
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.EstimateRequest true "估算参数"
// @Success 200 {object} dto.Response[dto.EstimateResponse]
// @Router /v1/estimate [post]
func (h *GenerationHandler) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.InputTokens < 0 || req.MaxOutputTokens < 0 {
		dto.Error(c, errors.Validation(errors.CodeInvalidParam, "token counts must not be negative"))
		return
	}

	inputTokens := req.InputTokens
	if inputTokens == 0 && req.Prompt != "" {
		inputTokens = h.orchestrator.Estimator().TokensForPrompt("", req.Prompt)
	}
	cost := h.orchestrator.EstimateCost(req.Provider, inputTokens, req.MaxOutputTokens)

	dto.Success(c, dto.EstimateResponse{
		Provider:     req.Provider,
		InputTokens:  inputTokens,
		OutputTokens: req.MaxOutputTokens,
		CostUSD:      cost,
	})
}
