package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/apiserver/handler"
	"github.com/glintlab/aegis/internal/apiserver/middleware"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/auth/entitlement"
	"github.com/glintlab/aegis/internal/auth/gateway"
	"github.com/glintlab/aegis/internal/auth/jwt"
	"github.com/glintlab/aegis/internal/auth/rbac"
	"github.com/glintlab/aegis/internal/auth/token"
	"github.com/glintlab/aegis/internal/common/config"
	"github.com/glintlab/aegis/pkg/logger"
	"github.com/glintlab/aegis/pkg/metrics"
	"github.com/glintlab/aegis/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Aegis identity API server",
		Long:  `Aegis provides authentication, tenancy isolation and access control for multi-tenant applications`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting apiserver", zap.String("version", version.Get()))

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Seed(ctx, db, zapLogger, cfg.SuperAdmin.Email, cfg.SuperAdmin.Password); err != nil {
		zapLogger.Fatal("Failed to seed database", zap.Error(err))
	}

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("Failed to create JWT service", zap.Error(err))
	}

	tokens := token.NewService(db, jwtService, cfg.Token.RefreshDuration, zapLogger)
	gw := gateway.New(db, tokens, zapLogger)
	resolver := rbac.NewResolver(db)
	gate := entitlement.NewGate(db)
	m := metrics.New("aegis")

	authHandler := handler.NewAuth(gw, tokens, m, zapLogger)
	roleHandler := handler.NewRole(db, zapLogger)
	moduleHandler := handler.NewModule(db, gate, zapLogger)
	userHandler := handler.NewUser(db, tokens, zapLogger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), m.Middleware())

	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.RefreshToken)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("", middleware.JWTAuthMiddleware(tokens, db))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/entitlements/:module", moduleHandler.Check)

	roles := protected.Group("/roles", middleware.RequirePermission(resolver, m, auth.PermissionRolesManage))
	roles.GET("", roleHandler.List)
	roles.POST("", roleHandler.Create)
	roles.PUT("/:id", roleHandler.Update)
	roles.DELETE("/:id", roleHandler.Delete)

	modules := protected.Group("/modules")
	modules.GET("", moduleHandler.List)
	modules.PUT("/:name", middleware.RequirePermission(resolver, m, auth.PermissionModulesManage), moduleHandler.Set)

	users := protected.Group("/users", middleware.RequirePermission(resolver, m, auth.PermissionUsersManage))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)

	go sweepExpiredTokens(ctx, tokens, cfg.Token.SweepInterval, zapLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Shutdown error", zap.Error(err))
	}
}

// sweepExpiredTokens periodically deletes expired refresh-token rows.
func sweepExpiredTokens(ctx context.Context, tokens *token.Service, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.Purge(ctx)
			if err != nil {
				logger.Error("Expired token sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Purged expired refresh tokens", zap.Int64("count", n))
			}
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
