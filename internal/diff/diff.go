// File: internal/diff/diff.go

// Package diff computes notification events from two consecutive booking
// snapshots. ComputeEvents is pure: it never mutates its inputs and holds
// no state, so the caller owns the single previous-snapshot slot.
package diff

import (
	"fmt"

	"github.com/google/uuid"

	"roadassist_backend/internal/domain"
	"roadassist_backend/internal/notification"
)

// Deep-link targets for emitted events.
const (
	LinkBookingHistory    = "/bookings/history"
	LinkMechanicDashboard = "/mechanic/dashboard"
	linkJobFormat         = "/mechanic/jobs/%s"
)

// customerStatusText maps a booking's new status to the notification title
// and message shown to the customer. Statuses missing from the map produce
// no event.
var customerStatusText = map[domain.BookingStatus]struct {
	title   string
	message func(b domain.Booking) string
}{
	domain.StatusMechanicAssigned: {
		title:   "Mechanic Assigned!",
		message: func(b domain.Booking) string { return fmt.Sprintf("%s has been assigned to your job.", mechanicName(b)) },
	},
	domain.StatusEnRoute: {
		title:   "Mechanic En Route!",
		message: func(b domain.Booking) string { return fmt.Sprintf("%s is on the way.", mechanicName(b)) },
	},
	domain.StatusInProgress: {
		title:   "Work has Begun!",
		message: func(b domain.Booking) string { return fmt.Sprintf("%s has started the %s service.", mechanicName(b), b.Service.Name) },
	},
	domain.StatusCompleted: {
		title:   "Service Complete!",
		message: func(b domain.Booking) string { return fmt.Sprintf("Your %s is now complete.", b.Service.Name) },
	},
}

func mechanicName(b domain.Booking) string {
	if b.Mechanic != nil {
		return b.Mechanic.Name
	}
	return "Your mechanic"
}

// ComputeEvents compares a previous and current snapshot on behalf of one
// actor and returns the notification events for this tick, in the current
// snapshot's iteration order.
//
// prevOK is false when there is no baseline yet (first observation after
// attach); nothing is reported in that case, so reconnection never produces
// retroactive notifications. Diffing identical snapshots yields nil.
func ComputeEvents(prev domain.Snapshot, prevOK bool, curr domain.Snapshot, actor domain.Actor) []notification.Event {
	if !prevOK {
		return nil
	}

	prevByID := make(map[uuid.UUID]domain.Booking, len(prev))
	for _, b := range prev {
		prevByID[b.ID] = b
	}

	switch actor.Role {
	case domain.RoleCustomer:
		return customerEvents(prevByID, curr, actor)
	case domain.RoleMechanic:
		return mechanicEvents(prevByID, curr, actor)
	default:
		return nil
	}
}

func customerEvents(prev map[uuid.UUID]domain.Booking, curr domain.Snapshot, actor domain.Actor) []notification.Event {
	var events []notification.Event
	for _, b := range curr {
		if b.CustomerID != actor.ID {
			continue
		}
		before, existed := prev[b.ID]
		// A newly created booking is not a status change.
		if !existed || before.Status == b.Status {
			continue
		}
		text, mapped := customerStatusText[b.Status]
		if !mapped {
			continue
		}
		events = append(events, notification.NewEvent(
			notification.TypeBooking,
			text.title,
			text.message(b),
			LinkBookingHistory,
			actor.RecipientKey(),
		))
	}
	return events
}

func mechanicEvents(prev map[uuid.UUID]domain.Booking, curr domain.Snapshot, actor domain.Actor) []notification.Event {
	var events []notification.Event
	for _, b := range curr {
		before, existed := prev[b.ID]

		// New unassigned job, visible to every mechanic.
		if !existed && b.Status == domain.StatusUpcoming && b.Mechanic == nil {
			events = append(events, notification.NewEvent(
				notification.TypeJob,
				"New Job Available!",
				fmt.Sprintf("A new %s job for a %s %s is waiting for a mechanic.", b.Service.Name, b.Vehicle.Make, b.Vehicle.Model),
				LinkMechanicDashboard,
				domain.RecipientAll,
			))
		}

		if b.Mechanic == nil || b.Mechanic.ID != actor.ID {
			continue
		}

		// Newly assigned to this mechanic.
		if !existed || before.Mechanic == nil || before.Mechanic.ID != actor.ID {
			events = append(events, notification.NewEvent(
				notification.TypeJob,
				"New Job Assigned!",
				fmt.Sprintf("You have been assigned the %s job for %s.", b.Service.Name, b.Customer),
				fmt.Sprintf(linkJobFormat, b.ID),
				actor.RecipientKey(),
			))
		}

		// Payment received. Anything short of an exact true in prev counts
		// as unpaid, including a booking absent from the baseline.
		paidBefore := existed && before.IsPaid
		if !paidBefore && b.IsPaid {
			events = append(events, notification.NewEvent(
				notification.TypeGeneral,
				"Payment Received!",
				fmt.Sprintf("Payment of $%.2f received for the %s job.", b.Service.Price, b.Service.Name),
				fmt.Sprintf(linkJobFormat, b.ID),
				actor.RecipientKey(),
			))
		}
	}
	return events
}
