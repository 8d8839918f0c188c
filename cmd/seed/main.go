package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/config"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	"github.com/keshavmohta09/RosterPulse/pkg/database"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
	applogger "github.com/keshavmohta09/RosterPulse/pkg/logger"
	"github.com/keshavmohta09/RosterPulse/pkg/storage"
)

// seed 创建账号（系统不开放注册，经理与员工账号均由运维创建）
//
//	go run ./cmd/seed -email maya@example.com -first-name Maya -last-name Singh -password secret123 -roles manager,staff
func main() {
	var (
		configPath string
		email      string
		firstName  string
		lastName   string
		password   string
		roles      string
		migrate    bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("ROSTER_CONFIG"), "配置文件路径")
	flag.StringVar(&email, "email", "", "登录邮箱")
	flag.StringVar(&firstName, "first-name", "", "名")
	flag.StringVar(&lastName, "last-name", "", "姓")
	flag.StringVar(&password, "password", "", "初始密码（至少 8 位）")
	flag.StringVar(&roles, "roles", "staff", "角色，逗号分隔 (manager, staff)")
	flag.BoolVar(&migrate, "migrate", false, "创建前先执行数据库迁移")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	parsed, err := parseRoles(roles)
	if err != nil {
		logger.Fatal("角色参数非法", zap.Error(err))
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if migrate {
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
	}

	repo := repository.NewRepository(db)
	users := service.NewUserService(repo, storage.NewLocalStorage(cfg.Storage.Root), cfg.Storage.MaxUploadBytes(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := users.CreateUser(ctx, &service.CreateUserInput{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
		Roles:     parsed,
	})
	if err != nil {
		if pkgerrors.IsValidation(err) || pkgerrors.IsIntegrity(err) {
			logger.Fatal("创建用户失败", zap.String("reason", pkgerrors.Message(err)))
		}
		logger.Fatal("创建用户失败", zap.Error(err))
	}

	logger.Info("创建用户成功",
		zap.String("id", user.ID),
		zap.String("email", user.Email),
		zap.String("roles", roles),
	)
}

func parseRoles(s string) ([]model.Role, error) {
	var out []model.Role
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, ok := model.ParseRole(part)
		if !ok {
			return nil, fmt.Errorf("未知角色 %q", part)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("至少指定一个角色")
	}
	return out, nil
}
