package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keshavmohta09/RosterPulse/internal/model"
)

// RosterUserScheduleRepository 排班条目数据访问接口
// 除 Unscoped 前缀的方法外，全部只作用于未软删除的行
type RosterUserScheduleRepository interface {
	// BatchCreate 单条 INSERT 批量写入，任一行违反唯一索引则整体失败
	BatchCreate(ctx context.Context, schedules []model.RosterUserSchedule) error
	GetByID(ctx context.Context, id string) (*model.RosterUserSchedule, error)
	// GetManagedByID 仅当条目所属排班表由 managerID 管理时返回
	GetManagedByID(ctx context.Context, id, managerID string) (*model.RosterUserSchedule, error)
	// GetOwnedByID 仅当条目分配给 userID 时返回
	GetOwnedByID(ctx context.Context, id, userID string) (*model.RosterUserSchedule, error)
	ListByUser(ctx context.Context, userID string) ([]model.RosterUserSchedule, error)
	ListByRoster(ctx context.Context, rosterID string) ([]model.RosterUserSchedule, error)
	// UpdateFields 仅写入给定列，行不存在或已删除返回 gorm.ErrRecordNotFound
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id string, updatedBy *string, at time.Time) error
	// UnscopedGetByID 含已软删除行，供历史/审计读取（如重新分配后查看原条目）
	UnscopedGetByID(ctx context.Context, id string) (*model.RosterUserSchedule, error)
}

type rosterUserScheduleRepo struct {
	db *gorm.DB
}

func NewRosterUserScheduleRepo(db *gorm.DB) RosterUserScheduleRepository {
	return &rosterUserScheduleRepo{db: db}
}

func (r *rosterUserScheduleRepo) BatchCreate(ctx context.Context, schedules []model.RosterUserSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(&schedules).Error
	return translate(err)
}

func (r *rosterUserScheduleRepo) GetByID(ctx context.Context, id string) (*model.RosterUserSchedule, error) {
	var s model.RosterUserSchedule
	err := r.db.WithContext(ctx).
		Preload("Roster").
		Preload("User").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *rosterUserScheduleRepo) GetManagedByID(ctx context.Context, id, managerID string) (*model.RosterUserSchedule, error) {
	managed := r.db.
		Model(&model.RosterManager{}).
		Select("roster_id").
		Where("manager_id = ? AND roster_managers.date_deleted IS NULL", managerID)

	var s model.RosterUserSchedule
	err := r.db.WithContext(ctx).
		Preload("Roster").
		Preload("User").
		Where("id = ? AND roster_id IN (?)", id, managed).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *rosterUserScheduleRepo) GetOwnedByID(ctx context.Context, id, userID string) (*model.RosterUserSchedule, error) {
	var s model.RosterUserSchedule
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *rosterUserScheduleRepo) ListByUser(ctx context.Context, userID string) ([]model.RosterUserSchedule, error) {
	var list []model.RosterUserSchedule
	err := r.db.WithContext(ctx).
		Preload("Roster").
		Where("user_id = ?", userID).
		Order("working_day ASC, shift ASC, start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *rosterUserScheduleRepo) ListByRoster(ctx context.Context, rosterID string) ([]model.RosterUserSchedule, error) {
	var list []model.RosterUserSchedule
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("roster_id = ?", rosterID).
		Order("working_day ASC, shift ASC, start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *rosterUserScheduleRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.RosterUserSchedule{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete 只写 date_deleted 与 updated_by_id
func (r *rosterUserScheduleRepo) SoftDelete(ctx context.Context, id string, updatedBy *string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.RosterUserSchedule{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"date_deleted":  at,
			"updated_by_id": updatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rosterUserScheduleRepo) UnscopedGetByID(ctx context.Context, id string) (*model.RosterUserSchedule, error) {
	var s model.RosterUserSchedule
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
