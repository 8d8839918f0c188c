package service

import (
	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/config"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	"github.com/keshavmohta09/RosterPulse/pkg/jwt"
	"github.com/keshavmohta09/RosterPulse/pkg/storage"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Access     AccessService
	Scheduling SchedulingService
	Roster     RosterService
	Schedule   ScheduleService
	Attendance AttendanceService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	store storage.Storage,
	logger *zap.Logger,
) *Service {
	maxUpload := cfg.Storage.MaxUploadBytes()
	scheduling := NewSchedulingService(repo, logger)

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, store, maxUpload, logger),
		Access:     NewAccessService(repo, logger),
		Scheduling: scheduling,
		Roster:     NewRosterService(repo, scheduling, logger),
		Schedule:   NewScheduleService(repo, scheduling, logger),
		Attendance: NewAttendanceService(repo, store, maxUpload, logger),
		Export:     NewExportService(repo, logger),
	}
}
