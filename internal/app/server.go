// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roadassist_backend/internal/chat"
	"roadassist_backend/internal/common"
	"roadassist_backend/internal/config"
	"roadassist_backend/internal/engine"
	"roadassist_backend/internal/jobs"
	"roadassist_backend/internal/middleware"
	"roadassist_backend/internal/notification"
	"roadassist_backend/internal/push"
	"roadassist_backend/internal/reminder"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	notificationHandler *notification.Handler
	chatHandler         *chat.Handler
	sessionHandler      *engine.Handler

	// Live-state machinery
	manager         *engine.Manager
	reminderService *reminder.Service
	reminderScanJob *jobs.ReminderScanJob
	pushSink        *push.FCMSink

	engineCancel context.CancelFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	notificationHandler *notification.Handler,
	chatHandler *chat.Handler,
	sessionHandler *engine.Handler,
	manager *engine.Manager,
	reminderService *reminder.Service,
	reminderScanJob *jobs.ReminderScanJob,
	pushSink *push.FCMSink,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Accept",
		common.ActorRoleHeader, common.ActorIDHeader, common.ActorNameHeader,
		middleware.RequestIDHeader,
	}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	actorMW := middleware.ActorIdentity(logger.Named("ActorIdentity"))
	requireActor := middleware.RequireActor()

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "RoadAssist API is healthy!"})
	})

	v1 := router.Group("/api/v1", actorMW)

	notificationGroup := v1.Group("/notifications", requireActor)
	notificationHandler.RegisterRoutes(notificationGroup)

	chatGroup := v1.Group("/bookings", requireActor)
	chatHandler.RegisterRoutes(chatGroup)

	sessionGroup := v1.Group("/sessions", requireActor)
	sessionHandler.RegisterRoutes(sessionGroup)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		notificationHandler: notificationHandler,
		chatHandler:         chatHandler,
		sessionHandler:      sessionHandler,
		manager:             manager,
		reminderService:     reminderService,
		reminderScanJob:     reminderScanJob,
		pushSink:            pushSink,
	}, nil
}

func (s *Server) Start() error {
	// Reminders fire once per server session; a restart re-arms them.
	s.reminderService.ResetSession()

	if s.reminderScanJob != nil {
		if err := s.reminderScanJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start reminder scan job", zap.Error(err))
		}
	} else {
		s.logger.Info("Reminder scan job is not configured, skipping start.")
	}

	if s.pushSink != nil {
		s.logger.Info("Push delivery enabled via Firebase Cloud Messaging.")
	}

	engineCtx, cancel := context.WithCancel(context.Background())
	s.engineCancel = cancel
	go s.manager.Run(engineCtx, s.cfg.SnapshotPollInterval)

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
		zap.Duration("snapshot_poll_interval", s.cfg.SnapshotPollInterval),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.reminderScanJob != nil {
		s.reminderScanJob.Stop()
	}
	if s.engineCancel != nil {
		s.engineCancel()
	}
	s.manager.Close()
	return s.httpServer.Shutdown(ctx)
}
