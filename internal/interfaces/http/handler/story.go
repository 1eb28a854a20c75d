package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"storyweave-api/internal/application/orchestration"
	"storyweave-api/internal/application/story"
	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/internal/interfaces/http/dto"
	"storyweave-api/pkg/errors"
)

// StoryHandler 故事处理器
type StoryHandler struct {
	stories      *story.Service
	orchestrator *orchestration.Orchestrator
}

// NewStoryHandler 创建故事处理器
func NewStoryHandler(stories *story.Service, orchestrator *orchestration.Orchestrator) *StoryHandler {
	return &StoryHandler{stories: stories, orchestrator: orchestrator}
}

// Create 创建故事
// @Summary 创建故事
// @Tags Stories
// @Accept json
// @Produce json
// @Param request body dto.CreateStoryRequest true "创建故事请求"
// @Success 201 {object} dto.Response[dto.StoryResponse]
// @Router /v1/stories [post]
func (h *StoryHandler) Create(c *gin.Context) {
	var req dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	s, err := h.stories.Create(c.Request.Context(), story.CreateInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Settings:    req.Settings,
	})
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Created(c, dto.ToStoryResponse(s))
}

// Get 获取故事
// @Summary 获取故事
// @Tags Stories
// @Produce json
// @Param id path string true "故事 ID"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Router /v1/stories/{id} [get]
func (h *StoryHandler) Get(c *gin.Context) {
	s, err := h.stories.Get(c.Request.Context(), dto.BindID(c))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToStoryResponse(s))
}

// List 分页查询用户的故事
// @Summary 分页查询用户的故事
// @Tags Stories
// @Produce json
// @Param user_id query string true "用户 ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.StoryResponse]
// @Router /v1/stories [get]
func (h *StoryHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		dto.BadRequest(c, "user_id is required")
		return
	}
	page := dto.BindPage(c)

	result, err := h.stories.ListByUser(c.Request.Context(), userID,
		repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		dto.Error(c, err)
		return
	}

	items := make([]*dto.StoryResponse, 0, len(result.Items))
	for _, s := range result.Items {
		items = append(items, dto.ToStoryResponse(s))
	}
	dto.SuccessWithPage(c, items,
		dto.NewPageMeta(result.Page, result.PageSize, result.Total, result.TotalPages))
}

// Update 更新故事
// @Summary 更新故事
// @Tags Stories
// @Accept json
// @Produce json
// @Param id path string true "故事 ID"
// @Param request body dto.UpdateStoryRequest true "更新故事请求"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Router /v1/stories/{id} [put]
func (h *StoryHandler) Update(c *gin.Context) {
	var req dto.UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	in := story.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Settings:    req.Settings,
	}
	if req.Status != nil {
		status := entity.StoryStatus(*req.Status)
		in.Status = &status
	}

	s, err := h.stories.Update(c.Request.Context(), dto.BindID(c), in)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToStoryResponse(s))
}

// Delete 软删除故事
// @Summary 删除故事
// @Tags Stories
// @Param id path string true "故事 ID"
// @Success 204
// @Router /v1/stories/{id} [delete]
func (h *StoryHandler) Delete(c *gin.Context) {
	if err := h.stories.Delete(c.Request.Context(), dto.BindID(c)); err != nil {
		dto.Error(c, err)
		return
	}
	dto.NoContent(c)
}

// ListContents 按创建顺序查询故事的全部内容节点
// @Summary 查询故事内容
// @Tags Stories
// @Produce json
// @Param id path string true "故事 ID"
// @Success 200 {object} dto.Response[[]dto.StoryContentResponse]
// @Router /v1/stories/{id}/contents [get]
func (h *StoryHandler) ListContents(c *gin.Context) {
	contents, err := h.stories.ListContents(c.Request.Context(), dto.BindID(c))
	if err != nil {
		dto.Error(c, err)
		return
	}

	items := make([]*dto.StoryContentResponse, 0, len(contents))
	for _, content := range contents {
		items = append(items, dto.ToStoryContentResponse(content))
	}
	dto.Success(c, items)
}

// Continue 生成并追加故事内容
// @Summary 生成并追加故事内容
// @Tags Stories
// @Accept json
// @Produce json
// @Param id path string true "故事 ID"
// @Param request body dto.GenerateTextRequest true "生成请求"
// @Success 201 {object} dto.Response[dto.StoryContentResponse]
// @Router /v1/stories/{id}/continue [post]
func (h *StoryHandler) Continue(c *gin.Context) {
	var req dto.GenerateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	req.StoryID = dto.BindID(c)

	result, err := h.orchestrator.GenerateText(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.Error(c, err)
		return
	}

	content, err := h.stories.AppendContent(c.Request.Context(), story.AppendContentInput{
		StoryID:         req.StoryID,
		ParentContentID: req.ParentContentID,
		Result:          result,
	})
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Created(c, dto.ToStoryContentResponse(content))
}

// SelectChoice 选择分支选项：以选项文本为引导生成后续内容并挂接。
// @Summary 选择分支选项
// @Tags Stories
// @Accept json
// @Produce json
// @Param id path string true "故事 ID"
// @Param request body dto.SelectChoiceRequest true "选择分支请求"
// @Success 200 {object} dto.Response[dto.StoryContentResponse]
// @Router /v1/stories/{id}/choices/select [post]
func (h *StoryHandler) SelectChoice(c *gin.Context) {
	var req dto.SelectChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	storyID := dto.BindID(c)
	ctx := c.Request.Context()

	s, err := h.stories.Get(ctx, storyID)
	if err != nil {
		dto.Error(c, err)
		return
	}

	choice, err := h.stories.GetChoice(ctx, req.ChoiceID)
	if err != nil {
		dto.Error(c, err)
		return
	}
	if choice.IsSelected {
		dto.Error(c, errors.ErrChoiceAlreadyChosen.WithContext(errors.Context{ChoiceID: choice.ID}))
		return
	}

	parent, err := h.stories.GetContent(ctx, choice.ContentID)
	if err != nil {
		dto.Error(c, err)
		return
	}
	if parent.StoryID != storyID {
		dto.Error(c, errors.Validation(errors.CodeInvalidParam, "choice does not belong to this story").
			WithDetail("choice_id", choice.ID))
		return
	}

	genReq := &entity.TextRequest{
		RequestBase: entity.RequestBase{
			Prompt:          fmt.Sprintf("The reader chose: %s. Continue the story.", choice.Text),
			Context:         parent.Content,
			StoryID:         storyID,
			UserID:          s.UserID,
			ParentContentID: &parent.ID,
			Provider:        req.Provider,
		},
		ChoiceCount: len(parent.Choices),
	}
	if req.Params != nil {
		genReq.Params = &entity.GenerationParams{
			Temperature: req.Params.Temperature,
			MaxTokens:   req.Params.MaxTokens,
			Model:       req.Params.Model,
		}
	}

	result, err := h.orchestrator.GenerateText(ctx, genReq)
	if err != nil {
		dto.Error(c, err)
		return
	}

	next := &entity.StoryContent{
		StoryID:         storyID,
		ParentContentID: &parent.ID,
		Content:         result.Content,
		Provider:        result.Provider,
		Model:           result.Model,
	}
	for _, ch := range result.Choices {
		next.Choices = append(next.Choices, entity.StoryChoice{
			Text:        ch.Text,
			Description: ch.Description,
			ChoiceType:  ch.Type,
		})
	}

	if _, err := h.stories.SelectChoice(ctx, choice.ID, next); err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToStoryContentResponse(next))
}
