package model

import "time"

// Attendance 考勤表 — 对应 attendances（只追加，不提供更新与删除）
type Attendance struct {
	ID                   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RosterUserScheduleID string    `gorm:"type:uuid;not null"                             json:"roster_user_schedule_id" validate:"required"`
	Image                *string   `gorm:"type:varchar(512)"                              json:"image"                   validate:"omitempty,max=512,image_ext"`
	AttendanceTime       time.Time `gorm:"not null"                                       json:"attendance_time"`
	LogFields

	// 关联
	RosterUserSchedule *RosterUserSchedule `gorm:"foreignKey:RosterUserScheduleID;references:ID" json:"roster_user_schedule,omitempty" validate:"-"`
}

func (Attendance) TableName() string { return "attendances" }

// BlacklistedToken 已拉黑的 Refresh Token — 对应 blacklisted_tokens
// Redis 不可用时作为黑名单的持久化回退
type BlacklistedToken struct {
	JTI       string    `gorm:"column:jti;type:varchar(64);primaryKey" json:"jti"`
	UserID    *string   `gorm:"type:uuid"                              json:"user_id,omitempty"`
	ExpiresAt time.Time `gorm:"not null"                               json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"                json:"created_at"`
}

func (BlacklistedToken) TableName() string { return "blacklisted_tokens" }
