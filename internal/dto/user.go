package dto

import "mime/multipart"

// ── 用户模块请求 ──

// UpdateProfileRequest 更新个人资料（multipart/form-data）
type UpdateProfileRequest struct {
	PhoneNumber string                `form:"phone_number" binding:"required,e164"`
	Photo       *multipart.FileHeader `form:"photo"`
}
