package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keshavmohta09/RosterPulse/internal/model"
)

// RosterRepository 排班表数据访问接口
type RosterRepository interface {
	Create(ctx context.Context, roster *model.Roster) error
	GetByID(ctx context.Context, id string) (*model.Roster, error)
	// ListByManager 返回 managerID 管理的排班表，附带未删除的排班条目及其用户
	ListByManager(ctx context.Context, managerID string) ([]model.Roster, error)
}

// RosterManagerRepository 排班表管理者数据访问接口
type RosterManagerRepository interface {
	Create(ctx context.Context, rm *model.RosterManager) error
	// ExistsForRoster 排班表是否存在任一有效管理者
	ExistsForRoster(ctx context.Context, rosterID string) (bool, error)
	// IsManagerOf managerID 是否为该排班表的有效管理者（导出等按归属鉴权的读取使用）
	IsManagerOf(ctx context.Context, rosterID, managerID string) (bool, error)
}

// ── Roster Repository 实现 ──

type rosterRepo struct {
	db *gorm.DB
}

func NewRosterRepo(db *gorm.DB) RosterRepository {
	return &rosterRepo{db: db}
}

func (r *rosterRepo) Create(ctx context.Context, roster *model.Roster) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(roster).Error)
}

func (r *rosterRepo) GetByID(ctx context.Context, id string) (*model.Roster, error) {
	var roster model.Roster
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&roster).Error
	if err != nil {
		return nil, err
	}
	return &roster, nil
}

func (r *rosterRepo) ListByManager(ctx context.Context, managerID string) ([]model.Roster, error) {
	managed := r.db.
		Model(&model.RosterManager{}).
		Select("roster_id").
		Where("manager_id = ? AND roster_managers.date_deleted IS NULL", managerID)

	var rosters []model.Roster
	err := r.db.WithContext(ctx).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("working_day ASC, shift ASC, start_time ASC")
		}).
		Preload("Schedules.User").
		Where("id IN (?)", managed).
		Order("date_created DESC").
		Find(&rosters).Error
	return rosters, err
}

// ── RosterManager Repository 实现 ──

type rosterManagerRepo struct {
	db *gorm.DB
}

func NewRosterManagerRepo(db *gorm.DB) RosterManagerRepository {
	return &rosterManagerRepo{db: db}
}

func (r *rosterManagerRepo) Create(ctx context.Context, rm *model.RosterManager) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(rm).Error)
}

func (r *rosterManagerRepo) ExistsForRoster(ctx context.Context, rosterID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RosterManager{}).
		Where("roster_id = ?", rosterID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterManagerRepo) IsManagerOf(ctx context.Context, rosterID, managerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RosterManager{}).
		Where("roster_id = ? AND manager_id = ?", rosterID, managerID).
		Count(&count).Error
	return count > 0, err
}
