package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
)

// ── 排班模块业务错误 ──

var (
	ErrRosterNotFound        = errors.New("Roster not found")
	ErrRosterManagerNotFound = errors.New("Roster manager not found")
	ErrScheduleNotFound      = errors.New("Roster user schedule not found")
)

const (
	msgAtLeastOneField = "At least one field must be updated"
	msgInvalidRoster   = "Invalid roster"
	msgScheduleDeleted = "Roster user schedule deleted successfully"
)

// ScheduleData 批量创建排班条目的单条输入
type ScheduleData struct {
	UserID     string
	WorkingDay model.WorkingDay
	Shift      model.Shift
	StartTime  model.Clock
	EndTime    model.Clock
}

// ScheduleUpdate 排班条目的部分更新，未 Set 的字段保持不变
type ScheduleUpdate struct {
	RosterID   Optional[string]
	WorkingDay Optional[model.WorkingDay]
	Shift      Optional[model.Shift]
	StartTime  Optional[model.Clock]
	EndTime    Optional[model.Clock]
}

func (u ScheduleUpdate) empty() bool {
	return !u.RosterID.IsSet() && !u.WorkingDay.IsSet() && !u.Shift.IsSet() &&
		!u.StartTime.IsSet() && !u.EndTime.IsSet()
}

// SchedulingService 排班核心业务：排班表、管理者与排班条目的创建、更新、删除
//
// 只接受 ID，不接受完整对象。业务失败只以 *pkgerrors.ValidationError
// 或 *pkgerrors.IntegrityError 返回；组合操作的事务边界由调用方通过 WithTx 提供。
type SchedulingService interface {
	CreateRoster(ctx context.Context, title string, isActive bool, actorID string) (*model.Roster, error)
	CreateRosterManager(ctx context.Context, rosterID, managerID, actorID string) (*model.RosterManager, error)
	BulkCreateRosterUserSchedules(ctx context.Context, rosterID string, data []ScheduleData, actorID string) ([]model.RosterUserSchedule, error)
	UpdateRosterUserSchedule(ctx context.Context, schedule *model.RosterUserSchedule, upd ScheduleUpdate, actorID string) (*model.RosterUserSchedule, error)
	DeleteRosterUserSchedule(ctx context.Context, schedule *model.RosterUserSchedule, actorID string) (string, error)
	// WithTx 返回绑定到事务 tx 的副本；tx 为空时返回自身
	WithTx(tx *gorm.DB) SchedulingService
}

type schedulingService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSchedulingService 创建 SchedulingService 实例
func NewSchedulingService(repo *repository.Repository, logger *zap.Logger) SchedulingService {
	return &schedulingService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *schedulingService) WithTx(tx *gorm.DB) SchedulingService {
	if tx == nil {
		return s
	}
	return &schedulingService{repo: s.repo.WithTx(tx), logger: s.logger, now: s.now}
}

// ────────────────────── CreateRoster ──────────────────────

func (s *schedulingService) CreateRoster(ctx context.Context, title string, isActive bool, actorID string) (*model.Roster, error) {
	roster := &model.Roster{Title: title, IsActive: isActive}
	roster.StampCreate(actorID)

	if err := model.Validate(roster); err != nil {
		return nil, err
	}

	if err := s.repo.Roster.Create(ctx, roster); err != nil {
		if !pkgerrors.IsIntegrity(err) {
			s.logger.Error("创建排班表失败", zap.Error(err))
		}
		return nil, err
	}
	return roster, nil
}

// ────────────────────── CreateRosterManager ──────────────────────

func (s *schedulingService) CreateRosterManager(ctx context.Context, rosterID, managerID, actorID string) (*model.RosterManager, error) {
	isManager, err := s.repo.UserRole.HasRole(ctx, managerID, model.RoleManager)
	if err != nil {
		s.logger.Error("查询管理者角色失败", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}
	if !isManager {
		return nil, pkgerrors.NewValidation(model.MsgManagerRequired)
	}

	if _, err := s.repo.Roster.GetByID(ctx, rosterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewValidation(msgInvalidRoster)
		}
		s.logger.Error("查询排班表失败", zap.String("roster_id", rosterID), zap.Error(err))
		return nil, err
	}

	rm := &model.RosterManager{RosterID: rosterID, ManagerID: managerID}
	rm.StampCreate(actorID)
	if err := model.Validate(rm); err != nil {
		return nil, err
	}

	if err := s.repo.RosterManager.Create(ctx, rm); err != nil {
		if !pkgerrors.IsIntegrity(err) {
			s.logger.Error("创建排班表管理者失败", zap.Error(err))
		}
		return nil, err
	}
	return rm, nil
}

// ────────────────────── BulkCreateRosterUserSchedules ──────────────────────

// BulkCreateRosterUserSchedules 全有或全无：
//  1. 所有用户必须持有 STAFF_MEMBER 角色
//  2. 逐条字段校验 + 跨字段校验
//  3. 单条 INSERT 写入，唯一索引冲突整体失败
//
// 空列表直接返回空结果，不访问存储。
func (s *schedulingService) BulkCreateRosterUserSchedules(ctx context.Context, rosterID string, data []ScheduleData, actorID string) ([]model.RosterUserSchedule, error) {
	if len(data) == 0 {
		return []model.RosterUserSchedule{}, nil
	}

	userIDs := distinctUserIDs(data)
	staffCount, err := s.repo.UserRole.CountUsersWithRole(ctx, userIDs, model.RoleStaffMember)
	if err != nil {
		s.logger.Error("统计员工角色失败", zap.Error(err))
		return nil, err
	}
	if staffCount < int64(len(userIDs)) {
		return nil, pkgerrors.NewValidation(model.MsgAllUsersStaff)
	}

	rows := make([]model.RosterUserSchedule, 0, len(data))
	for _, d := range data {
		row := model.RosterUserSchedule{
			RosterID:   rosterID,
			UserID:     d.UserID,
			WorkingDay: d.WorkingDay,
			Shift:      d.Shift,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
		}
		row.StampCreate(actorID)
		if err := model.Validate(&row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if err := s.repo.RosterUserSchedule.BatchCreate(ctx, rows); err != nil {
		if !pkgerrors.IsIntegrity(err) {
			s.logger.Error("批量创建排班条目失败", zap.String("roster_id", rosterID), zap.Error(err))
		}
		return nil, err
	}
	return rows, nil
}

func distinctUserIDs(data []ScheduleData) []string {
	seen := make(map[string]struct{}, len(data))
	ids := make([]string, 0, len(data))
	for _, d := range data {
		if _, ok := seen[d.UserID]; ok {
			continue
		}
		seen[d.UserID] = struct{}{}
		ids = append(ids, d.UserID)
	}
	return ids
}

// ────────────────────── UpdateRosterUserSchedule ──────────────────────

// UpdateRosterUserSchedule 只写入已提供的列与 date_updated、updated_by_id。
// 合并后的对象先完整校验再提交；失败时 schedule 保持原样。
func (s *schedulingService) UpdateRosterUserSchedule(ctx context.Context, schedule *model.RosterUserSchedule, upd ScheduleUpdate, actorID string) (*model.RosterUserSchedule, error) {
	if upd.empty() {
		return nil, pkgerrors.NewValidation(msgAtLeastOneField)
	}

	merged := *schedule
	fields := make(map[string]interface{}, 7)

	if v, ok := upd.RosterID.Get(); ok {
		merged.RosterID = v
		fields["roster_id"] = v
	}
	if v, ok := upd.WorkingDay.Get(); ok {
		merged.WorkingDay = v
		fields["working_day"] = v
	}
	if v, ok := upd.Shift.Get(); ok {
		merged.Shift = v
		fields["shift"] = v
	}
	if v, ok := upd.StartTime.Get(); ok {
		merged.StartTime = v
		fields["start_time"] = v
	}
	if v, ok := upd.EndTime.Get(); ok {
		merged.EndTime = v
		fields["end_time"] = v
	}

	if err := model.Validate(&merged); err != nil {
		return nil, err
	}

	if upd.RosterID.IsSet() && merged.RosterID != schedule.RosterID {
		roster, err := s.repo.Roster.GetByID(ctx, merged.RosterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.NewValidation(msgInvalidRoster)
			}
			s.logger.Error("查询排班表失败", zap.String("roster_id", merged.RosterID), zap.Error(err))
			return nil, err
		}
		merged.Roster = roster
	}

	now := s.now()
	merged.UpdatedByID = model.Actor(actorID)
	merged.DateUpdated = now
	fields["updated_by_id"] = merged.UpdatedByID
	fields["date_updated"] = now

	if err := s.repo.RosterUserSchedule.UpdateFields(ctx, merged.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		if !pkgerrors.IsIntegrity(err) {
			s.logger.Error("更新排班条目失败", zap.String("id", merged.ID), zap.Error(err))
		}
		return nil, err
	}
	return &merged, nil
}

// ────────────────────── DeleteRosterUserSchedule ──────────────────────

// DeleteRosterUserSchedule 软删除，只写 date_deleted 与 updated_by_id
func (s *schedulingService) DeleteRosterUserSchedule(ctx context.Context, schedule *model.RosterUserSchedule, actorID string) (string, error) {
	now := s.now()
	if err := s.repo.RosterUserSchedule.SoftDelete(ctx, schedule.ID, model.Actor(actorID), now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrScheduleNotFound
		}
		s.logger.Error("删除排班条目失败", zap.String("id", schedule.ID), zap.Error(err))
		return "", err
	}
	return msgScheduleDeleted, nil
}
