package routes

import (
	"log"
	"net/http"

	adminapi "loyalty-wallet/internal/api/admin"
	authapi "loyalty-wallet/internal/api/auth"
	membersapi "loyalty-wallet/internal/api/members"
	walletapi "loyalty-wallet/internal/api/wallet"
	"loyalty-wallet/internal/app"
	"loyalty-wallet/internal/app/http/middleware"
	"loyalty-wallet/internal/domain/staff"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	cfg := a.Config

	wallet := &walletapi.Handler{
		Resolver: a.Dispatcher,
		Lookup:   a.Directory,
		Tokens:   a.PassTokens,
		Passes:   a.Passes,
		Metrics:  a.Metrics,
	}
	auth := &authapi.Handler{
		DB:        a.DB,
		JWTSecret: cfg.JWTSecret,
		Google:    authapi.NewGoogleSignIn(cfg),
	}
	memberH := &membersapi.Handler{
		DB:            a.DB,
		Mailer:        a.Mailer,
		Metrics:       a.Metrics,
		PublicBaseURL: cfg.PublicBaseURL,
		ProgramName:   cfg.WalletProgramName,
	}
	admin := &adminapi.Handler{DB: a.DB}
	if a.ClassRegistry != nil {
		admin.Classes = a.ClassRegistry
	}

	r.GET("/health", health(a.DB))
	r.GET("/metrics", a.Metrics.Handler())

	// ✅ Public pass entry point, opened from emails and QR codes
	public := r.Group("/wallet")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.GET("/resolve", wallet.Resolve)
	public.POST("/resolve", wallet.Resolve)

	api := r.Group("/api")
	api.GET("/wallet/ios/:token", wallet.ApplePass)

	api.POST("/auth/login", auth.Login)
	api.GET("/auth/google", auth.GoogleStart)
	api.GET("/auth/google/callback", auth.GoogleCallback)

	// Authenticated staff
	authed := api.Group("/")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	authed.GET("/me", auth.Me)

	members := authed.Group("/members")
	members.Use(middleware.SanitizeAndCleanInputMiddleware())
	members.GET("", memberH.List)
	members.POST("", memberH.Create)
	members.POST("/import", memberH.Import)
	members.GET("/export", memberH.Export)
	members.GET("/:id", memberH.Get)
	members.PUT("/:id", memberH.Update)
	members.DELETE("/:id", memberH.Delete)
	members.POST("/:id/send-pass", memberH.SendPass)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.RequireRole(staff.RoleAdmin))
	adminGroup.GET("/dashboard", admin.Dashboard)
	adminGroup.POST("/wallet/classes/sync", admin.SyncClasses)
	adminGroup.GET("/staff", admin.ListStaff)
	adminGroup.POST("/staff", admin.CreateStaff)
}

// health answers 503 while the database is unreachable.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Println("❌ health check:", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
