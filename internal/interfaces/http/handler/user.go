package handler

import (
	"github.com/gin-gonic/gin"

	"storyweave-api/internal/application/user"
	"storyweave-api/internal/interfaces/http/dto"
)

// UserHandler 用户处理器
type UserHandler struct {
	users *user.Service
}

// NewUserHandler 创建用户处理器
func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

// Create 创建用户
// @Summary 创建用户
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "创建用户请求"
// @Success 201 {object} dto.Response[dto.UserResponse]
// @Router /v1/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	u, err := h.users.Create(c.Request.Context(), user.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Created(c, dto.ToUserResponse(u))
}

// Get 获取用户
// @Summary 获取用户
// @Tags Users
// @Produce json
// @Param id path string true "用户 ID"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Router /v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), dto.BindID(c))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToUserResponse(u))
}

// Update 更新用户
// @Summary 更新用户
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "用户 ID"
// @Param request body dto.UpdateUserRequest true "更新用户请求"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Router /v1/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	u, err := h.users.Update(c.Request.Context(), dto.BindID(c), user.UpdateInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.ToUserResponse(u))
}

// Deactivate 停用账号
// @Summary 停用账号
// @Tags Users
// @Param id path string true "用户 ID"
// @Success 204
// @Router /v1/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.users.Deactivate(c.Request.Context(), dto.BindID(c)); err != nil {
		dto.Error(c, err)
		return
	}
	dto.NoContent(c)
}

// Delete 软删除用户
// @Summary 删除用户
// @Tags Users
// @Param id path string true "用户 ID"
// @Success 204
// @Router /v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), dto.BindID(c)); err != nil {
		dto.Error(c, err)
		return
	}
	dto.NoContent(c)
}
