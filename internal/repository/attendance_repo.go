package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keshavmohta09/RosterPulse/internal/model"
)

// AttendanceRepository 考勤数据访问接口（只追加）
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	// ListByUser 按考勤时间倒序返回 userID 的全部考勤，附带排班条目与排班表
	ListByUser(ctx context.Context, userID string) ([]model.Attendance, error)
	CountBySchedule(ctx context.Context, scheduleID string) (int64, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, attendance *model.Attendance) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(attendance).Error)
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("RosterUserSchedule", func(db *gorm.DB) *gorm.DB {
			// 历史考勤引用的排班条目可能已被软删除
			return db.Unscoped()
		}).
		Preload("RosterUserSchedule.Roster").
		Joins("JOIN roster_user_schedules rus ON rus.id = attendances.roster_user_schedule_id").
		Where("rus.user_id = ?", userID).
		Order("attendances.attendance_time DESC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) CountBySchedule(ctx context.Context, scheduleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("roster_user_schedule_id = ?", scheduleID).
		Count(&count).Error
	return count, err
}
