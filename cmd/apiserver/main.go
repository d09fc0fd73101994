package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit/dedup"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/handler"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/middleware"
	"github.com/dadosqualitativos/portal-api/internal/auth/jwt"
	"github.com/dadosqualitativos/portal-api/internal/common/config"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
	"github.com/dadosqualitativos/portal-api/internal/mail"
	"github.com/dadosqualitativos/portal-api/pkg/logger"
	"github.com/dadosqualitativos/portal-api/pkg/metrics"
	"github.com/dadosqualitativos/portal-api/pkg/trace"
	"github.com/dadosqualitativos/portal-api/pkg/version"
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
		Short: "Portal API Server",
		Long:  `Portal API Server provides the administration backend for the city portals`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	lg.Info("Starting apiserver",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	if err := i18n.InitTranslator(cfg.I18n.Path); err != nil {
		lg.Warn("Failed to load translations, messages fall back to their IDs", zap.Error(err))
	}

	ctx := context.Background()

	shutdownTracing, err := trace.Init(ctx, &cfg.Trace, lg)
	if err != nil {
		lg.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			lg.Warn("Failed to shutdown tracing", zap.Error(err))
		}
	}()

	db, err := database.New(lg, &cfg.Database)
	if err != nil {
		lg.Fatal("Failed to initialize database",
			zap.String("type", cfg.Database.Type),
			zap.Error(err))
	}
	defer db.Close()

	dedupStore, err := dedup.NewStore(lg, &cfg.Audit.Dedup)
	if err != nil {
		lg.Fatal("Failed to initialize audit dedup store", zap.Error(err))
	}
	defer dedupStore.Close()

	m := metrics.New(cfg.Metrics)
	recorder := audit.NewRecorder(db, dedupStore, m, lg)

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		lg.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	mailSender := mail.NewSender(&cfg.Mail, lg)
	if mailSender == nil {
		lg.Info("Mail disabled, password recovery unavailable")
	}

	h := handler.New(db, jwtService, recorder, mailSender, lg)

	gin.SetMode(cfg.Server.Mode)
	router := newRouter(cfg, h, jwtService, db, recorder, m)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		lg.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Server forced to shutdown", zap.Error(err))
	}
	lg.Info("Server exited")
}

func newRouter(cfg *config.APIServerConfig, h *handler.Handler, jwtService *jwt.Service, db database.Database, recorder *audit.Recorder, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("portal-api"))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.Language())
	router.Use(m.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api")

	// Public endpoints
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/recover-password", h.RecoverPassword)
	api.POST("/auth/reset-password", h.ResetPassword)
	api.POST("/auth/refresh-token", h.RefreshToken)
	api.GET("/cities/public", h.PublicCities)

	// Authenticated endpoints
	authed := api.Group("")
	authed.Use(middleware.Auth(jwtService, db, recorder))
	{
		authed.GET("/auth/profile", h.Profile)
		authed.GET("/auth/me", h.Profile)
		authed.PUT("/auth/me", h.UpdateMe)
		authed.DELETE("/auth/me", h.DeleteMe)
		authed.POST("/auth/change-password", h.ChangePassword)

		authed.GET("/cities", h.ListCities)
		authed.GET("/menus", h.ListMenus)
		authed.GET("/menus/:id", h.GetMenu)
		authed.GET("/menu-types", h.ListMenuTypes)
		authed.GET("/menu-types/:id", h.GetMenuType)

		authed.GET("/announcements", h.ListAnnouncements)
		authed.GET("/announcements/:id", h.GetAnnouncement)
		authed.POST("/announcements", h.CreateAnnouncement)
		authed.PUT("/announcements/:id", h.UpdateAnnouncement)
		authed.DELETE("/announcements/:id", h.DeleteAnnouncement)

		authed.GET("/logs", h.ListLogs)
		authed.POST("/logs", h.CreateLog)
	}

	// Management endpoints for elevated roles
	managers := authed.Group("")
	managers.Use(middleware.RequireRoles(recorder, database.RoleAdministrator, database.RoleGlobalManager))
	{
		managers.GET("/auth/users", h.ListUsers)
		managers.POST("/auth/create-user", h.CreateUser)
		managers.PUT("/auth/users/:id", h.UpdateUser)
		managers.DELETE("/auth/users/:id", h.DeleteUser)
		managers.POST("/auth/users/:id/reset-password", h.ResetUserPassword)
	}

	// Administrator-only endpoints
	admins := authed.Group("")
	admins.Use(middleware.RequireRoles(recorder, database.RoleAdministrator))
	{
		admins.POST("/cities", h.CreateCity)
		admins.PUT("/cities/:id", h.UpdateCity)
		admins.DELETE("/cities/:id", h.DeleteCity)

		admins.POST("/menus", h.CreateMenu)
		admins.PUT("/menus/:id", h.UpdateMenu)
		admins.DELETE("/menus/:id", h.DeleteMenu)

		admins.POST("/menu-types", h.CreateMenuType)
		admins.PUT("/menu-types/:id", h.UpdateMenuType)
		admins.DELETE("/menu-types/:id", h.DeleteMenuType)

		admins.DELETE("/logs/clear-list", h.ClearListLogs)
	}

	return router
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
