package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/model"
)

// UserRoleRepository 用户角色数据访问接口
// 所有查询只统计未软删除的角色行
type UserRoleRepository interface {
	Create(ctx context.Context, role *model.UserRole) error
	HasRole(ctx context.Context, userID string, role model.Role) (bool, error)
	// CountUsersWithRole 统计 userIDs 中持有 role 的不同用户数
	CountUsersWithRole(ctx context.Context, userIDs []string, role model.Role) (int64, error)
	ListRoles(ctx context.Context, userID string) ([]model.Role, error)
}

type userRoleRepo struct {
	db *gorm.DB
}

func NewUserRoleRepo(db *gorm.DB) UserRoleRepository {
	return &userRoleRepo{db: db}
}

func (r *userRoleRepo) Create(ctx context.Context, role *model.UserRole) error {
	return translate(r.db.WithContext(ctx).Create(role).Error)
}

func (r *userRoleRepo) HasRole(ctx context.Context, userID string, role model.Role) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRoleRepo) CountUsersWithRole(ctx context.Context, userIDs []string, role model.Role) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserRole{}).
		Where("user_id IN ? AND role = ?", userIDs, role).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (r *userRoleRepo) ListRoles(ctx context.Context, userID string) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).
		Model(&model.UserRole{}).
		Where("user_id = ?", userID).
		Order("role ASC").
		Pluck("role", &roles).Error
	return roles, err
}
