// File: internal/push/fcm.go
package push

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"roadassist_backend/internal/config"
	"roadassist_backend/internal/notification"
)

// FCMSink forwards published notification events to Firebase Cloud
// Messaging so devices without an attached session still get them.
// Delivery uses topics named after recipient keys; devices subscribe to
// their own key plus the broadcast topic.
type FCMSink struct {
	client *messaging.Client
	logger *zap.Logger
}

// NewFCMSink initializes the Firebase Admin SDK and returns a sink.
// Returns (nil, nil) when no service account key is configured; push
// delivery is simply disabled then.
func NewFCMSink(cfg *config.Config, logger *zap.Logger) (*FCMSink, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Info("Firebase service account key not configured, push delivery disabled.")
		return nil, nil
	}

	opt := option.WithCredentialsFile(filepath.Clean(cfg.FirebaseServiceAccountKeyPath))

	var app *firebase.App
	var err error
	if cfg.FirebaseProjectID != "" {
		app, err = firebase.NewApp(context.Background(), &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opt)
	} else {
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Messaging client: %w", err)
	}

	logger.Info("Firebase Cloud Messaging initialized.")
	return &FCMSink{client: client, logger: logger.Named("FCMSink")}, nil
}

// Attach subscribes the sink to the notification bus. Safe to call on a
// nil sink; the returned function detaches it.
func (s *FCMSink) Attach(bus *notification.Bus) func() {
	if s == nil {
		return func() {}
	}
	return bus.Subscribe(func(event notification.Event) {
		// ClearAll emits a zero event for badge resets; nothing to push.
		if event.Recipient == "" {
			return
		}
		s.send(event)
	})
}

func (s *FCMSink) send(event notification.Event) {
	msg := &messaging.Message{
		Topic: TopicForRecipient(event.Recipient),
		Notification: &messaging.Notification{
			Title: event.Title,
			Body:  event.Message,
		},
		Data: map[string]string{
			"type": string(event.Type),
			"link": event.Link,
			"id":   event.ID.String(),
		},
	}

	if _, err := s.client.Send(context.Background(), msg); err != nil {
		s.logger.Warn("Failed to send push notification",
			zap.String("recipient", event.Recipient),
			zap.String("eventID", event.ID.String()),
			zap.Error(err),
		)
	}
}

// TopicForRecipient maps a recipient key to a valid FCM topic name.
// Topic names allow [a-zA-Z0-9-_.~%]; recipient keys only ever contain
// letters, digits and dashes, but sanitize anyway.
func TopicForRecipient(recipientKey string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.' || r == '~':
			return r
		default:
			return '_'
		}
	}, recipientKey)
}
