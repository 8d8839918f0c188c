package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
	"github.com/keshavmohta09/RosterPulse/pkg/storage"
)

const minPasswordLength = 8

// CreateUserInput 创建用户（运维命令使用）
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Roles     []model.Role
}

// UserService 用户业务接口
type UserService interface {
	// Me 当前用户信息（含角色与个人资料）
	Me(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	// UpdateProfile 新建或更新个人资料；photo 为空时保留原头像
	UpdateProfile(ctx context.Context, userID, phoneNumber string, photo *ImageUpload) (*dto.ProfileResponse, error)
	CreateUser(ctx context.Context, in *CreateUserInput) (*model.User, error)
}

type userService struct {
	repo      *repository.Repository
	store     storage.Storage
	maxUpload int64
	logger    *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, store storage.Storage, maxUpload int64, logger *zap.Logger) UserService {
	return &userService{repo: repo, store: store, maxUpload: maxUpload, logger: logger}
}

func (s *userService) Me(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := &dto.UserDetailResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		FullName:   user.FullName(),
		Roles:      make([]string, 0, len(user.Roles)),
		DateJoined: user.DateJoined,
	}
	if user.LastName != nil {
		resp.LastName = *user.LastName
	}
	for _, r := range user.Roles {
		resp.Roles = append(resp.Roles, r.Role.String())
	}
	if user.Profile != nil {
		resp.Profile = &dto.ProfileResponse{PhoneNumber: user.Profile.PhoneNumber, Photo: user.Profile.Photo}
	}
	return resp, nil
}

// ────────────────────── UpdateProfile ──────────────────────

func (s *userService) UpdateProfile(ctx context.Context, userID, phoneNumber string, photo *ImageUpload) (*dto.ProfileResponse, error) {
	profile := &model.Profile{UserID: userID, PhoneNumber: strings.TrimSpace(phoneNumber)}
	profile.StampCreate(userID)

	existing, err := s.repo.Profile.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		profile.Photo = existing.Photo
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Error("查询个人资料失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	var savedKey string
	if photo != nil {
		if err := storage.ValidateImage(photo.Filename, photo.Data, s.maxUpload); err != nil {
			return nil, err
		}
		key := fmt.Sprintf("files/profiles/%s/photo.%s", userID, storage.Extension(photo.Filename))
		savedKey, err = s.store.Save(ctx, key, photo.Data)
		if err != nil {
			s.logger.Error("保存头像失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		profile.Photo = &savedKey
	}

	if err := model.Validate(profile); err != nil {
		return nil, err
	}

	if err := s.repo.Profile.Upsert(ctx, profile); err != nil {
		if !pkgerrors.IsIntegrity(err) {
			s.logger.Error("保存个人资料失败", zap.String("user_id", userID), zap.Error(err))
		}
		// 旧头像与新头像同名时会被覆盖，这里只清理指向新位置的写入
		if savedKey != "" && (existing == nil || existing.Photo == nil || *existing.Photo != savedKey) {
			_ = s.store.Delete(ctx, savedKey)
		}
		return nil, err
	}

	return &dto.ProfileResponse{PhoneNumber: profile.PhoneNumber, Photo: profile.Photo}, nil
}

// ────────────────────── CreateUser ──────────────────────

// CreateUser 用户与角色在同一事务中写入
func (s *userService) CreateUser(ctx context.Context, in *CreateUserInput) (*model.User, error) {
	if len(in.Password) < minPasswordLength {
		return nil, pkgerrors.NewValidationf("Password must be at least %d characters", minPasswordLength)
	}
	for _, r := range in.Roles {
		if !r.Valid() {
			return nil, pkgerrors.NewValidationf("Invalid role %d", r)
		}
	}

	user := &model.User{
		Email:     model.NormalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		IsActive:  true,
	}
	if last := strings.TrimSpace(in.LastName); last != "" {
		user.LastName = &last
	}
	if err := model.Validate(user); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = string(hash)

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.User.Create(ctx, user); err != nil {
			return err
		}
		for _, r := range in.Roles {
			role := &model.UserRole{UserID: user.ID, Role: r}
			if err := txRepo.UserRole.Create(ctx, role); err != nil {
				return err
			}
			user.Roles = append(user.Roles, *role)
		}
		return nil
	})
	if err != nil {
		if !pkgerrors.IsIntegrity(err) {
			s.logger.Error("创建用户失败", zap.String("email", user.Email), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("用户已创建", zap.String("user_id", user.ID), zap.Int("roles", len(user.Roles)))
	return user, nil
}
