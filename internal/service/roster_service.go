package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
)

// RosterService 排班表接口层编排
type RosterService interface {
	// Create 创建排班表、创建者为管理者、可选排班条目，三步同一事务
	Create(ctx context.Context, req *dto.CreateRosterRequest, managerID string) (*dto.RosterResponse, error)
	// ListMine 当前管理者负责的排班表（仅含未删除条目）
	ListMine(ctx context.Context, managerID string) ([]dto.RosterResponse, error)
}

type rosterService struct {
	repo       *repository.Repository
	scheduling SchedulingService
	logger     *zap.Logger
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(repo *repository.Repository, scheduling SchedulingService, logger *zap.Logger) RosterService {
	return &rosterService{repo: repo, scheduling: scheduling, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *rosterService) Create(ctx context.Context, req *dto.CreateRosterRequest, managerID string) (*dto.RosterResponse, error) {
	data := make([]ScheduleData, 0, len(req.RosterUserSchedules))
	for i := range req.RosterUserSchedules {
		d, err := toScheduleData(&req.RosterUserSchedules[i])
		if err != nil {
			return nil, err
		}
		data = append(data, d)
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
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	sched := s.scheduling.WithTx(tx)

	// 1. 排班表
	roster, err := sched.CreateRoster(ctx, req.Title, true, managerID)
	if err != nil {
		rollback()
		return nil, err
	}

	// 2. 创建者成为管理者
	if _, err := sched.CreateRosterManager(ctx, roster.ID, managerID, managerID); err != nil {
		rollback()
		return nil, err
	}

	// 3. 排班条目
	rows, err := sched.BulkCreateRosterUserSchedules(ctx, roster.ID, data, managerID)
	if err != nil {
		rollback()
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	if err := s.attachUsers(ctx, rows); err != nil {
		return nil, err
	}
	roster.Schedules = rows

	s.logger.Info("排班表已创建",
		zap.String("roster_id", roster.ID),
		zap.String("manager_id", managerID),
		zap.Int("schedules", len(rows)),
	)
	resp := dto.NewRosterResponse(roster)
	return &resp, nil
}

// attachUsers 为新建条目补充用户信息（全名）
func (s *rosterService) attachUsers(ctx context.Context, rows []model.RosterUserSchedule) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range rows {
		rows[i].User = byID[rows[i].UserID]
	}
	return nil
}

// ────────────────────── ListMine ──────────────────────

func (s *rosterService) ListMine(ctx context.Context, managerID string) ([]dto.RosterResponse, error) {
	rosters, err := s.repo.Roster.ListByManager(ctx, managerID)
	if err != nil {
		s.logger.Error("查询排班表列表失败", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.RosterResponse, 0, len(rosters))
	for i := range rosters {
		result = append(result, dto.NewRosterResponse(&rosters[i]))
	}
	return result, nil
}
