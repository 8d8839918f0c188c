package service

import (
	"context"
	"time"

	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
)

// TokenBlacklist Refresh Token 黑名单
// Redis 客户端（pkg/redis.Client）直接满足该接口；Redis 不可用时使用数据库实现
type TokenBlacklist interface {
	// BlacklistToken 返回 false 表示该 JTI 已在黑名单中
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type dbTokenBlacklist struct {
	repo *repository.Repository
	now  func() time.Time
}

// NewDBTokenBlacklist 基于 blacklisted_tokens 表的黑名单
func NewDBTokenBlacklist(repo *repository.Repository) TokenBlacklist {
	return &dbTokenBlacklist{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (b *dbTokenBlacklist) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	now := b.now()
	// 顺带清理已过期记录，失败不影响本次写入
	_, _ = b.repo.TokenBlacklist.PurgeExpired(ctx, now)

	return b.repo.TokenBlacklist.Add(ctx, &model.BlacklistedToken{
		JTI:       jti,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
}

func (b *dbTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return b.repo.TokenBlacklist.Exists(ctx, jti)
}
