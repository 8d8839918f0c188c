package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
	"github.com/keshavmohta09/RosterPulse/pkg/storage"
)

const msgInvalidSchedule = "Invalid roster_user_schedule"

// ImageUpload 已读入内存的上传图片
type ImageUpload struct {
	Filename string
	Data     []byte
}

// AttendanceService 考勤业务：只追加，不提供更新与删除
type AttendanceService interface {
	// CreateAttendance 校验图片、保存文件、写入考勤记录；业务失败返回 ValidationError
	CreateAttendance(ctx context.Context, scheduleID string, image *ImageUpload, actorID string) (*model.Attendance, error)
	// CheckIn 员工只能对分配给自己的有效排班条目打卡
	CheckIn(ctx context.Context, scheduleID string, image *ImageUpload, userID string) (*dto.AttendanceResponse, error)
	// ListMine 本人考勤记录，最新在前
	ListMine(ctx context.Context, userID string) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo      *repository.Repository
	store     storage.Storage
	maxUpload int64
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, store storage.Storage, maxUpload int64, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		repo:      repo,
		store:     store,
		maxUpload: maxUpload,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── CreateAttendance ──────────────────────

func (s *attendanceService) CreateAttendance(ctx context.Context, scheduleID string, image *ImageUpload, actorID string) (*model.Attendance, error) {
	if image == nil {
		return nil, pkgerrors.NewValidation("No file was submitted.")
	}
	if err := storage.ValidateImage(image.Filename, image.Data, s.maxUpload); err != nil {
		return nil, err
	}

	schedule, err := s.repo.RosterUserSchedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewValidation(msgInvalidSchedule)
		}
		s.logger.Error("查询排班条目失败", zap.String("id", scheduleID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	key := fmt.Sprintf("files/attendance/%s/%d.%s", schedule.UserID, now.UnixNano(), storage.Extension(image.Filename))
	saved, err := s.store.Save(ctx, key, image.Data)
	if err != nil {
		s.logger.Error("保存考勤图片失败", zap.String("key", key), zap.Error(err))
		return nil, pkgerrors.NewValidation("Unable to store the uploaded image.")
	}

	attendance := &model.Attendance{
		RosterUserScheduleID: schedule.ID,
		Image:                &saved,
		AttendanceTime:       now,
	}
	attendance.StampCreate(actorID)

	if err := model.Validate(attendance); err != nil {
		s.discard(ctx, saved)
		return nil, err
	}
	if err := s.repo.Attendance.Create(ctx, attendance); err != nil {
		s.discard(ctx, saved)
		if pkgerrors.IsIntegrity(err) {
			return nil, pkgerrors.NewValidation(pkgerrors.Message(err))
		}
		s.logger.Error("创建考勤记录失败", zap.String("schedule_id", schedule.ID), zap.Error(err))
		return nil, err
	}

	attendance.RosterUserSchedule = schedule
	return attendance, nil
}

// discard 删除未能入库的图片；失败只记录，不影响返回给调用方的错误
func (s *attendanceService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("清理考勤图片失败", zap.String("key", key), zap.Error(err))
	}
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, scheduleID string, image *ImageUpload, userID string) (*dto.AttendanceResponse, error) {
	if _, err := s.repo.RosterUserSchedule.GetOwnedByID(ctx, scheduleID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班条目失败", zap.String("id", scheduleID), zap.Error(err))
		return nil, err
	}

	attendance, err := s.CreateAttendance(ctx, scheduleID, image, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("考勤打卡成功",
		zap.String("user_id", userID),
		zap.String("schedule_id", scheduleID),
		zap.String("attendance_id", attendance.ID),
	)
	resp := dto.NewAttendanceResponse(attendance)
	return &resp, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *attendanceService) ListMine(ctx context.Context, userID string) ([]dto.AttendanceResponse, error) {
	list, err := s.repo.Attendance.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.AttendanceResponse, 0, len(list))
	for i := range list {
		result = append(result, dto.NewAttendanceResponse(&list[i]))
	}
	return result, nil
}
