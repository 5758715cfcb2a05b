// File: cmd/server/providers.go
package main

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roadassist_backend/internal/booking"
	"roadassist_backend/internal/config"
	"roadassist_backend/internal/notification"
	"roadassist_backend/internal/platform/database"
	"roadassist_backend/internal/push"
	"roadassist_backend/internal/transport"
)

// provideDatabase opens the GORM connection and migrates the schema. The
// cleanup closes the underlying connection pool.
func provideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(&transport.KVEntry{}, &notification.Event{}, &booking.Booking{}); err != nil {
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db) }, nil
}

// provideTransport selects the broadcast driver. The AMQP variant carries
// a cleanup that tears down the connection.
func provideTransport(cfg *config.Config, store transport.Store, logger *zap.Logger) (transport.Transport, func(), error) {
	if cfg.TransportDriver == "amqp" {
		t, err := transport.NewAMQPTransport(cfg, store, logger)
		if err != nil {
			return nil, nil, err
		}
		return t, func() { t.Close() }, nil
	}
	return transport.NewBus(store, logger), func() {}, nil
}

// provideNotificationBus creates the in-process fan-out with the
// configured retention cap.
func provideNotificationBus(cfg *config.Config) *notification.Bus {
	return notification.NewBus(cfg.NotificationRetain)
}

// providePushSink initializes the optional FCM sink and attaches it to
// the notification bus. A nil sink attaches as a no-op.
func providePushSink(cfg *config.Config, bus *notification.Bus, logger *zap.Logger) (*push.FCMSink, func(), error) {
	sink, err := push.NewFCMSink(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	detach := sink.Attach(bus)
	return sink, detach, nil
}
