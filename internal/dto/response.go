package dto

import (
	"time"

	"github.com/keshavmohta09/RosterPulse/internal/model"
)

// ── 认证模块响应 ──

// LoginResult 登录结果；RefreshToken 由 Handler 写入 Cookie，不进入响应体
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// AccessTokenResponse 登录 / 刷新响应
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // Access Token 有效期（秒）
}

// ── 用户模块响应 ──

// UserBrief 用户简要信息
type UserBrief struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// UserDetailResponse 当前用户信息（GET /users/me）
type UserDetailResponse struct {
	ID         string           `json:"id"`
	Email      string           `json:"email"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	FullName   string           `json:"full_name"`
	Roles      []string         `json:"roles"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
	DateJoined time.Time        `json:"date_joined"`
}

// ProfileResponse 个人资料
type ProfileResponse struct {
	PhoneNumber string  `json:"phone_number"`
	Photo       *string `json:"photo"`
}

// ── 排班模块响应 ──

// RosterBrief 排班表简要信息
type RosterBrief struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ScheduleResponse 排班条目；working_day / shift 输出展示名
type ScheduleResponse struct {
	ID         string       `json:"id"`
	Roster     *RosterBrief `json:"roster,omitempty"`
	User       *UserBrief   `json:"user,omitempty"`
	Shift      string       `json:"shift"`
	WorkingDay string       `json:"working_day"`
	StartTime  model.Clock  `json:"start_time"`
	EndTime    model.Clock  `json:"end_time"`
}

// RosterResponse 排班表及其有效排班条目
type RosterResponse struct {
	ID                  string             `json:"id"`
	Title               string             `json:"title"`
	IsActive            bool               `json:"is_active"`
	RosterUserSchedules []ScheduleResponse `json:"roster_user_schedules"`
}

// ── 考勤模块响应 ──

// AttendanceResponse 考勤记录
type AttendanceResponse struct {
	ID                 string            `json:"id"`
	RosterUserSchedule *ScheduleResponse `json:"roster_user_schedule,omitempty"`
	Image              *string           `json:"image"`
	AttendanceTime     time.Time         `json:"attendance_time"`
}

// ── 转换 ──

// NewUserBrief model.User → UserBrief
func NewUserBrief(u *model.User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{ID: u.ID, FullName: u.FullName()}
}

// NewRosterBrief model.Roster → RosterBrief
func NewRosterBrief(r *model.Roster) *RosterBrief {
	if r == nil {
		return nil
	}
	return &RosterBrief{ID: r.ID, Title: r.Title}
}

// NewScheduleResponse model.RosterUserSchedule → ScheduleResponse，附带已加载的关联
func NewScheduleResponse(s *model.RosterUserSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:         s.ID,
		Roster:     NewRosterBrief(s.Roster),
		User:       NewUserBrief(s.User),
		Shift:      s.Shift.String(),
		WorkingDay: s.WorkingDay.String(),
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
	}
}

// NewRosterResponse model.Roster → RosterResponse；条目中不重复输出排班表
func NewRosterResponse(r *model.Roster) RosterResponse {
	resp := RosterResponse{
		ID:                  r.ID,
		Title:               r.Title,
		IsActive:            r.IsActive,
		RosterUserSchedules: make([]ScheduleResponse, 0, len(r.Schedules)),
	}
	for i := range r.Schedules {
		item := NewScheduleResponse(&r.Schedules[i])
		item.Roster = nil
		resp.RosterUserSchedules = append(resp.RosterUserSchedules, item)
	}
	return resp
}

// NewAttendanceResponse model.Attendance → AttendanceResponse
func NewAttendanceResponse(a *model.Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID,
		Image:          a.Image,
		AttendanceTime: a.AttendanceTime,
	}
	if a.RosterUserSchedule != nil {
		s := NewScheduleResponse(a.RosterUserSchedule)
		resp.RosterUserSchedule = &s
	}
	return resp
}
