package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keshavmohta09/RosterPulse/internal/model"
)

// TokenBlacklistRepository Token 黑名单持久化（Redis 不可用时使用）
type TokenBlacklistRepository interface {
	// Add 写入黑名单，JTI 已存在时返回 false
	Add(ctx context.Context, token *model.BlacklistedToken) (bool, error)
	Exists(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type tokenBlacklistRepo struct {
	db *gorm.DB
}

func NewTokenBlacklistRepo(db *gorm.DB) TokenBlacklistRepository {
	return &tokenBlacklistRepo{db: db}
}

func (r *tokenBlacklistRepo) Add(ctx context.Context, token *model.BlacklistedToken) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(token)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *tokenBlacklistRepo) Exists(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BlacklistedToken{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now()).
		Count(&count).Error
	return count > 0, err
}

func (r *tokenBlacklistRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", before).
		Delete(&model.BlacklistedToken{})
	return result.RowsAffected, result.Error
}
