package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roadassist_backend/internal/common"
	"roadassist_backend/internal/domain"
)

type Repository interface {
	// Snapshot materializes the full booking collection in a stable order.
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	// UpdateLocation records the mechanic's live position on a booking.
	UpdateLocation(ctx context.Context, bookingID uuid.UUID, coords domain.Coordinates) error
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM booking repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Snapshot reads every booking ordered by creation time, which fixes the
// iteration order consumers diff and emit in.
func (r *GORMRepository) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var rows []Booking
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to materialize booking snapshot: %w", err)
	}

	snapshot := make(domain.Snapshot, 0, len(rows))
	for i := range rows {
		snapshot = append(snapshot, rows[i].ToDomain())
	}
	return snapshot, nil
}

func (r *GORMRepository) UpdateLocation(ctx context.Context, bookingID uuid.UUID, coords domain.Coordinates) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"latitude":  coords.Latitude,
			"longitude": coords.Longitude,
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Booking not found.")
		}
		return fmt.Errorf("failed to update location for booking %s: %w", bookingID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Booking not found.")
	}
	return nil
}
