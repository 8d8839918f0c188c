package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
)

// ScheduleService 排班条目接口层编排
//
// 条目归属判定：条目未删除，且所属排班表存在 requester 的有效 RosterManager 记录。
// “不存在”与“不属于你”统一返回 ErrScheduleNotFound。
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest, managerID string) (*dto.ScheduleResponse, error)
	// Update 部分更新；user 变化时软删除原条目并创建替换条目
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, managerID string) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string, managerID string) (string, error)
	// ListMine 员工本人的有效排班条目
	ListMine(ctx context.Context, userID string) ([]dto.ScheduleResponse, error)
}

type scheduleService struct {
	repo       *repository.Repository
	scheduling SchedulingService
	logger     *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, scheduling SchedulingService, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, scheduling: scheduling, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, managerID string) (*dto.ScheduleResponse, error) {
	// 只要求排班表存在有效管理者，不要求是当前用户
	exists, err := s.repo.RosterManager.ExistsForRoster(ctx, req.Roster)
	if err != nil {
		s.logger.Error("查询排班表管理者失败", zap.String("roster_id", req.Roster), zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, ErrRosterManagerNotFound
	}

	data, err := toScheduleData(&req.ScheduleItemRequest)
	if err != nil {
		return nil, err
	}

	rows, err := s.scheduling.BulkCreateRosterUserSchedules(ctx, req.Roster, []ScheduleData{data}, managerID)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, rows[0].ID)
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, managerID string) (*dto.ScheduleResponse, error) {
	current, err := s.getManaged(ctx, id, managerID)
	if err != nil {
		return nil, err
	}

	upd, err := toScheduleUpdate(req)
	if err != nil {
		return nil, err
	}

	if req.User != nil && *req.User != current.UserID {
		return s.reassign(ctx, current, *req.User, upd, managerID)
	}

	updated, err := s.scheduling.UpdateRosterUserSchedule(ctx, current, upd, managerID)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, updated.ID)
}

// reassign 用户变更：软删除原条目 + 创建新条目（未提供的字段沿用原值），同一事务
func (s *scheduleService) reassign(ctx context.Context, current *model.RosterUserSchedule, userID string, upd ScheduleUpdate, managerID string) (*dto.ScheduleResponse, error) {
	data := ScheduleData{
		UserID:     userID,
		WorkingDay: upd.WorkingDay.OrElse(current.WorkingDay),
		Shift:      upd.Shift.OrElse(current.Shift),
		StartTime:  upd.StartTime.OrElse(current.StartTime),
		EndTime:    upd.EndTime.OrElse(current.EndTime),
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	sched := s.scheduling.WithTx(tx)

	if _, err := sched.DeleteRosterUserSchedule(ctx, current, managerID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	rows, err := sched.BulkCreateRosterUserSchedules(ctx, current.RosterID, []ScheduleData{data}, managerID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("排班条目已重新分配",
		zap.String("old_id", current.ID),
		zap.String("new_id", rows[0].ID),
		zap.String("user_id", userID),
	)
	return s.reload(ctx, rows[0].ID)
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, id string, managerID string) (string, error) {
	current, err := s.getManaged(ctx, id, managerID)
	if err != nil {
		return "", err
	}
	return s.scheduling.DeleteRosterUserSchedule(ctx, current, managerID)
}

// ────────────────────── ListMine ──────────────────────

func (s *scheduleService) ListMine(ctx context.Context, userID string) ([]dto.ScheduleResponse, error) {
	rows, err := s.repo.RosterUserSchedule.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询排班条目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.ScheduleResponse, 0, len(rows))
	for i := range rows {
		item := dto.NewScheduleResponse(&rows[i])
		item.User = nil
		result = append(result, item)
	}
	return result, nil
}

// ── 内部工具 ──

func (s *scheduleService) getManaged(ctx context.Context, id, managerID string) (*model.RosterUserSchedule, error) {
	row, err := s.repo.RosterUserSchedule.GetManagedByID(ctx, id, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return row, nil
}

func (s *scheduleService) reload(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	row, err := s.repo.RosterUserSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := dto.NewScheduleResponse(row)
	return &resp, nil
}
