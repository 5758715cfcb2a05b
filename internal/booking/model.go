package booking

import (
	"time"

	"github.com/google/uuid"

	"roadassist_backend/internal/domain"
)

// Booking is the GORM model for the externally-mutated booking store. The
// notification core only reads snapshots of this table; the single
// mutation it owns is the live-location update.
type Booking struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	CustomerID   string               `gorm:"type:varchar(100);not null;index" json:"customer_id"`
	CustomerName string               `gorm:"type:varchar(255);not null" json:"customer_name"`
	MechanicID   *string              `gorm:"type:varchar(100);index" json:"mechanic_id,omitempty"`
	MechanicName *string              `gorm:"type:varchar(255)" json:"mechanic_name,omitempty"`
	ServiceName  string               `gorm:"type:varchar(255);not null" json:"service_name"`
	ServicePrice float64              `gorm:"not null" json:"service_price"`
	VehicleMake  string               `gorm:"type:varchar(100)" json:"vehicle_make"`
	VehicleModel string               `gorm:"type:varchar(100)" json:"vehicle_model"`
	VehiclePlate string               `gorm:"type:varchar(20)" json:"vehicle_plate"`
	Status       domain.BookingStatus `gorm:"type:varchar(50);not null" json:"status"`
	IsPaid       bool                 `gorm:"not null;default:false" json:"is_paid"`
	Latitude     *float64             `json:"latitude,omitempty"`
	Longitude    *float64             `json:"longitude,omitempty"`
	CreatedAt    time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Booking) TableName() string {
	return "bookings"
}

// ToDomain converts the stored row into the immutable snapshot value.
func (b *Booking) ToDomain() domain.Booking {
	out := domain.Booking{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		Customer:   b.CustomerName,
		Service:    domain.ServiceInfo{Name: b.ServiceName, Price: b.ServicePrice},
		Vehicle:    domain.VehicleInfo{Make: b.VehicleMake, Model: b.VehicleModel, Plate: b.VehiclePlate},
		Status:     b.Status,
		IsPaid:     b.IsPaid,
	}
	if b.MechanicID != nil {
		name := ""
		if b.MechanicName != nil {
			name = *b.MechanicName
		}
		out.Mechanic = &domain.MechanicRef{ID: *b.MechanicID, Name: name}
	}
	return out
}
