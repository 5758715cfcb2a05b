package notification

import (
	"context"
	"errors"
	"fmt"
	"roadassist_backend/internal/common" // For Pagination

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByRecipient(ctx context.Context, recipientKey string, page, pageSize int) ([]Event, *common.Pagination, error)
	FindByID(ctx context.Context, eventID uuid.UUID, recipientKey string) (*Event, error) // recipientKey for ownership check
	MarkAsRead(ctx context.Context, eventID uuid.UUID, recipientKey string) error
	MarkAllAsRead(ctx context.Context, recipientKey string) (int64, error) // Return count of marked events
	ClearForRecipient(ctx context.Context, recipientKey string) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new notification event into the database.
func (r *GORMRepository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create notification event: %w", err)
	}
	return nil
}

// recipientScope matches events addressed to the key directly or broadcast to "all".
func recipientScope(recipientKey string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("recipient = ? OR recipient = ?", recipientKey, "all")
	}
}

// GetByRecipient retrieves a paginated list of events for a recipient key,
// ordered by creation date.
func (r *GORMRepository) GetByRecipient(ctx context.Context, recipientKey string, page, pageSize int) ([]Event, *common.Pagination, error) {
	var events []Event
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&Event{}).Scopes(recipientScope(recipientKey))
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting events for recipient %s failed: %w", recipientKey, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := r.db.WithContext(ctx).Scopes(recipientScope(recipientKey)).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching events for recipient %s failed: %w", recipientKey, err)
	}
	return events, pagination, nil
}

// FindByID retrieves a specific event, ensuring it is addressed to the
// provided recipient key.
func (r *GORMRepository) FindByID(ctx context.Context, eventID uuid.UUID, recipientKey string) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", eventID).Scopes(recipientScope(recipientKey)).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found or not addressed to recipient.")
		}
		return nil, fmt.Errorf("failed to find event %s for recipient %s: %w", eventID, recipientKey, err)
	}
	return &event, nil
}

// MarkAsRead marks a specific event as read for a recipient.
// It first verifies addressing using FindByID.
func (r *GORMRepository) MarkAsRead(ctx context.Context, eventID uuid.UUID, recipientKey string) error {
	_, err := r.FindByID(ctx, eventID, recipientKey)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", eventID).
		Update("read", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark event %s as read for recipient %s: %w", eventID, recipientKey, result.Error)
	}
	return nil
}

// MarkAllAsRead marks all unread events for a recipient as read.
// It returns the count of events that were updated.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, recipientKey string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Event{}).
		Scopes(recipientScope(recipientKey)).
		Where("read = ?", false).
		Updates(map[string]interface{}{"read": true})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all events as read for recipient %s: %w", recipientKey, result.Error)
	}
	return result.RowsAffected, nil
}

// ClearForRecipient deletes all events addressed to a recipient and returns
// the count of removed rows.
func (r *GORMRepository) ClearForRecipient(ctx context.Context, recipientKey string) (int64, error) {
	result := r.db.WithContext(ctx).Scopes(recipientScope(recipientKey)).Delete(&Event{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear events for recipient %s: %w", recipientKey, result.Error)
	}
	return result.RowsAffected, nil
}
