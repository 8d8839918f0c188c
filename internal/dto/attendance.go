package dto

import "mime/multipart"

// ── 考勤模块请求 ──

// CheckInRequest 考勤打卡（multipart/form-data）
type CheckInRequest struct {
	RosterUserSchedule string                `form:"roster_user_schedule" binding:"required,uuid"`
	Image              *multipart.FileHeader `form:"image"                binding:"required"`
}
