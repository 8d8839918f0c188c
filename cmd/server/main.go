package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/config"
	"github.com/keshavmohta09/RosterPulse/internal/api/handler"
	"github.com/keshavmohta09/RosterPulse/internal/api/middleware"
	"github.com/keshavmohta09/RosterPulse/internal/api/router"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	"github.com/keshavmohta09/RosterPulse/pkg/database"
	"github.com/keshavmohta09/RosterPulse/pkg/jwt"
	applogger "github.com/keshavmohta09/RosterPulse/pkg/logger"
	"github.com/keshavmohta09/RosterPulse/pkg/redis"
	"github.com/keshavmohta09/RosterPulse/pkg/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("ROSTER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	repo := repository.NewRepository(db)

	// 4. 连接 Redis（可选：失败时黑名单落库，登录不限流）
	var (
		blacklist service.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单改用数据库，登录限流关闭", zap.Error(err))
		blacklist = service.NewDBTokenBlacklist(repo)
	} else {
		blacklist = rdb
		limiter = rdb
	}

	// 5. JWT 与文件存储
	jwtMgr := jwt.NewManager(&cfg.Auth)
	store := storage.NewLocalStorage(cfg.Storage.Root)

	// 6. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, store, logger)
	h := handler.NewHandler(svc, cfg)

	// 7. 初始化路由
	engine, err := router.Setup(cfg, h, router.Deps{
		JWT:     jwtMgr,
		Roles:   svc.Access,
		Limiter: limiter,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("初始化路由失败", zap.Error(err))
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
