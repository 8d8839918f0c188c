package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
)

// AccessService 角色判定，每次请求实时查询，不做缓存
type AccessService interface {
	IsManager(ctx context.Context, userID string) (bool, error)
	IsStaffMember(ctx context.Context, userID string) (bool, error)
	HasRole(ctx context.Context, userID string, role model.Role) (bool, error)
}

type accessService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAccessService 创建 AccessService 实例
func NewAccessService(repo *repository.Repository, logger *zap.Logger) AccessService {
	return &accessService{repo: repo, logger: logger}
}

func (s *accessService) IsManager(ctx context.Context, userID string) (bool, error) {
	return s.HasRole(ctx, userID, model.RoleManager)
}

func (s *accessService) IsStaffMember(ctx context.Context, userID string) (bool, error) {
	return s.HasRole(ctx, userID, model.RoleStaffMember)
}

// HasRole 未认证（userID 为空）直接返回 false
func (s *accessService) HasRole(ctx context.Context, userID string, role model.Role) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ok, err := s.repo.UserRole.HasRole(ctx, userID, role)
	if err != nil {
		s.logger.Error("查询用户角色失败",
			zap.String("user_id", userID),
			zap.Stringer("role", role),
			zap.Error(err),
		)
		return false, err
	}
	return ok, nil
}
