package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc   service.UserService
	maxUpload int64
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, maxUpload int64) *UserHandler {
	return &UserHandler{userSvc: userSvc, maxUpload: maxUpload}
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateProfile 更新个人资料（multipart/form-data，photo 可选）
// PUT /api/v1/users/me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, 12001, err)
		return
	}

	var photo *service.ImageUpload
	if req.Photo != nil {
		upload, err := readUpload(req.Photo, h.maxUpload)
		if err != nil {
			response.BadRequest(c, 12002, "Unable to read the uploaded file.")
			return
		}
		photo = upload
	}

	profile, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, req.PhoneNumber, photo)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, profile)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12101, err.Error())
	default:
		if businessError(c, 12102, err) {
			return
		}
		response.InternalError(c)
	}
}
