package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle status of a booking as reported by the store.
type BookingStatus string

const (
	StatusUpcoming         BookingStatus = "Upcoming"
	StatusMechanicAssigned BookingStatus = "Mechanic Assigned"
	StatusEnRoute          BookingStatus = "En Route"
	StatusInProgress       BookingStatus = "In Progress"
	StatusCompleted        BookingStatus = "Completed"
)

// Role identifies which side of a booking an actor is on.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMechanic Role = "mechanic"
)

// MechanicRef is the mechanic assigned to a booking, if any.
type MechanicRef struct {
	ID   string
	Name string
}

// ServiceInfo describes the service being performed.
type ServiceInfo struct {
	Name  string
	Price float64
}

// VehicleInfo describes the customer's vehicle.
type VehicleInfo struct {
	Make  string
	Model string
	Plate string
}

// Booking is one entry in a snapshot. Bookings are read-only to this core;
// only the store mutates them.
type Booking struct {
	ID         uuid.UUID
	CustomerID string
	Customer   string
	Mechanic   *MechanicRef
	Service    ServiceInfo
	Vehicle    VehicleInfo
	Status     BookingStatus
	IsPaid     bool
}

// Snapshot is a fully-materialized view of all bookings at one point in time.
// Iteration order is the store's order and is preserved by consumers.
type Snapshot []Booking

// Actor is the identity on whose behalf a session observes the store.
type Actor struct {
	Role Role
	ID   string
	Name string
}

// RecipientAll addresses a notification to every actor.
const RecipientAll = "all"

// RecipientKey returns the notification recipient key for this actor,
// e.g. "customer-42" or "mechanic-7".
func (a Actor) RecipientKey() string {
	return fmt.Sprintf("%s-%s", a.Role, a.ID)
}

// Coordinates is a geographic position reported by a location source.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}
