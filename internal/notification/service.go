package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roadassist_backend/internal/common"
)

// Service publishes events to the in-process bus and keeps the persisted
// copy in sync. The bus serves live listeners; the repository serves
// reconnecting contexts that need history.
type Service interface {
	Publish(ctx context.Context, event Event) error
	GetForRecipient(ctx context.Context, recipientKey string, page, pageSize int) ([]Event, *common.Pagination, error)
	MarkRead(ctx context.Context, eventID uuid.UUID, recipientKey string) error
	MarkAllRead(ctx context.Context, recipientKey string) (int64, error)
	Clear(ctx context.Context, recipientKey string) (int64, error)
	UnreadCount(recipientKey string) int
}

type serviceImpl struct {
	repo   Repository
	bus    *Bus
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, bus *Bus, logger *zap.Logger) Service {
	return &serviceImpl{
		repo:   repo,
		bus:    bus,
		logger: logger.Named("NotificationService"),
	}
}

func (s *serviceImpl) Publish(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		// Live delivery still happens; only history is lost.
		s.logger.Error("Failed to persist notification event",
			zap.String("eventID", event.ID.String()),
			zap.String("recipient", event.Recipient),
			zap.Error(err),
		)
	}

	s.bus.Publish(event)
	return nil
}

func (s *serviceImpl) GetForRecipient(ctx context.Context, recipientKey string, page, pageSize int) ([]Event, *common.Pagination, error) {
	events, pagination, err := s.repo.GetByRecipient(ctx, recipientKey, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to retrieve notifications", zap.String("recipient", recipientKey), zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return events, pagination, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, eventID uuid.UUID, recipientKey string) error {
	if err := s.repo.MarkAsRead(ctx, eventID, recipientKey); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.logger.Error("Failed to mark notification as read", zap.String("eventID", eventID.String()), zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
	}
	s.bus.MarkRead(eventID)
	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context, recipientKey string) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, recipientKey)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.String("recipient", recipientKey), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	for _, e := range s.bus.EventsFor(recipientKey) {
		s.bus.MarkRead(e.ID)
	}
	return count, nil
}

func (s *serviceImpl) Clear(ctx context.Context, recipientKey string) (int64, error) {
	count, err := s.repo.ClearForRecipient(ctx, recipientKey)
	if err != nil {
		s.logger.Error("Failed to clear notifications", zap.String("recipient", recipientKey), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not clear notifications.")
	}
	s.bus.ClearFor(recipientKey)
	return count, nil
}

func (s *serviceImpl) UnreadCount(recipientKey string) int {
	return s.bus.UnreadCount(recipientKey)
}
