// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"roadassist_backend/internal/app"
	"roadassist_backend/internal/booking"
	"roadassist_backend/internal/chat"
	"roadassist_backend/internal/config"
	"roadassist_backend/internal/engine"
	"roadassist_backend/internal/jobs"
	"roadassist_backend/internal/notification"
	"roadassist_backend/internal/platform/logger"
	"roadassist_backend/internal/reminder"
	"roadassist_backend/internal/transport"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideDatabase,

		// Durable KV + broadcast transport
		transport.NewGORMStore,
		provideTransport,

		// Notification pipeline
		notification.NewGORMRepository,
		provideNotificationBus,
		notification.NewService,
		notification.NewHandler,
		providePushSink,

		// Conversations
		chat.NewService,
		chat.NewHandler,

		// Live-state engine
		booking.NewGORMRepository,
		engine.NewManager,
		engine.NewHandler,

		// Reminders
		reminder.NewService,
		jobs.NewReminderScanJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
