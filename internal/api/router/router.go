package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/config"
	"github.com/keshavmohta09/RosterPulse/internal/api/handler"
	"github.com/keshavmohta09/RosterPulse/internal/api/middleware"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/pkg/jwt"
	"github.com/keshavmohta09/RosterPulse/pkg/validate"
)

// Deps 路由所需的外部依赖
type Deps struct {
	JWT     *jwt.Manager
	Roles   middleware.RoleChecker
	Limiter middleware.RateLimiter // 可为 nil，nil 时登录不限流
	Logger  *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := validate.BindGin(); err != nil {
		return nil, err
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB * 1024 * 1024))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuth(deps.JWT)
	manager := middleware.RequireRole(deps.Roles, model.RoleManager, deps.Logger)
	staff := middleware.RequireRole(deps.Roles, model.RoleStaffMember, deps.Logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 用户与认证
		users := v1.Group("/users")
		{
			users.POST("/login",
				middleware.RateLimit(deps.Limiter, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow),
				h.Auth.Login)
			users.GET("/login/refresh", h.Auth.RefreshToken)
			users.POST("/logout", auth, h.Auth.Logout)
			users.GET("/me", auth, h.User.GetCurrentUser)
			users.PUT("/me/profile", auth, h.User.UpdateProfile)
		}

		// 排班表
		rosters := v1.Group("/rosters", auth)
		{
			rosters.POST("", manager, h.Roster.Create)
			rosters.GET("/list", manager, h.Roster.List)
			rosters.GET("/:id/export", manager, h.Roster.Export)

			schedules := rosters.Group("/users/schedules")
			{
				schedules.POST("", manager, h.Schedule.Create)
				schedules.GET("/list", staff, h.Schedule.ListMine)
				schedules.GET("/calendar", staff, h.Schedule.Calendar)
				schedules.PUT("/:id", manager, h.Schedule.Update)
				schedules.DELETE("/:id", manager, h.Schedule.Delete)
			}
		}

		// 考勤打卡
		attendance := v1.Group("/attendance", auth, staff)
		{
			attendance.POST("", h.Attendance.CheckIn)
			attendance.GET("/list", h.Attendance.ListMine)
		}
	}

	return r, nil
}
