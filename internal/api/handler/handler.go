package handler

import (
	"github.com/keshavmohta09/RosterPulse/config"
	"github.com/keshavmohta09/RosterPulse/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Roster     *RosterHandler
	Schedule   *ScheduleHandler
	Attendance *AttendanceHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	maxUpload := cfg.Storage.MaxUploadBytes()
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, &cfg.Auth),
		User:       NewUserHandler(svc.User, maxUpload),
		Roster:     NewRosterHandler(svc.Roster, svc.Export),
		Schedule:   NewScheduleHandler(svc.Schedule, svc.Export),
		Attendance: NewAttendanceHandler(svc.Attendance, maxUpload),
	}
}
