package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
	"github.com/keshavmohta09/RosterPulse/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("No active account found with the given credentials")
	ErrTokenInvalid       = errors.New("Token is invalid or expired")
	ErrTokenBlacklisted   = errors.New("Token is blacklisted")
	ErrUserNotFound       = errors.New("User not found")
)

const (
	msgInvalidRefreshToken = "Invalid refresh_token"
	msgAlreadyBlacklisted  = "Token is already black listed."
	msgLoggedOut           = "User logged out successfully."
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResult, error)
	// Refresh 用 Refresh Token 换取新的 Access Token
	Refresh(ctx context.Context, refreshToken string) (*dto.AccessTokenResponse, error)
	// Logout 将 Refresh Token 加入黑名单，返回提示消息
	Logout(ctx context.Context, refreshToken string) (string, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResult, error) {
	// 1. 查询用户（邮箱域名部分不区分大小写）
	user, err := s.repo.User.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.User.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("更新最后登录时间失败", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &dto.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AccessTokenResponse, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("查询 Token 黑名单失败", zap.Error(err))
		return nil, err
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(claims.UserID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	return &dto.AccessTokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return "", pkgerrors.NewValidation(msgInvalidRefreshToken)
	}

	added, err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.Remaining())
	if err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return "", err
	}
	if !added {
		return "", pkgerrors.NewValidation(msgAlreadyBlacklisted)
	}

	s.logger.Info("用户已登出", zap.String("user_id", claims.UserID))
	return msgLoggedOut, nil
}

func (s *authService) parseRefresh(token string) (*jwt.Claims, error) {
	if token == "" {
		return nil, jwt.ErrTokenInvalid
	}
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwt.TokenTypeRefresh || claims.ID == "" {
		return nil, jwt.ErrTokenInvalid
	}
	return claims, nil
}
