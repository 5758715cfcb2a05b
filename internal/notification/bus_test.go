package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"roadassist_backend/internal/domain"
)

func TestBus_PublishNotifiesListenersInOrder(t *testing.T) {
	bus := NewBus(0)

	var seen []string
	unsubscribe := bus.Subscribe(func(e Event) { seen = append(seen, e.Title) })
	defer unsubscribe()

	bus.Publish(NewEvent(TypeBooking, "first", "m", "", "customer-c1"))
	bus.Publish(NewEvent(TypeBooking, "second", "m", "", "customer-c1"))

	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestBus_UnsubscribedListenerStopsReceiving(t *testing.T) {
	bus := NewBus(0)

	calls := 0
	unsubscribe := bus.Subscribe(func(Event) { calls++ })

	bus.Publish(NewEvent(TypeGeneral, "a", "m", "", "customer-c1"))
	unsubscribe()
	bus.Publish(NewEvent(TypeGeneral, "b", "m", "", "customer-c1"))

	assert.Equal(t, 1, calls, "a released listener must not keep receiving events")
}

func TestBus_MarkReadFlipsExactlyOne(t *testing.T) {
	bus := NewBus(0)
	e1 := NewEvent(TypeBooking, "a", "m", "", "customer-c1")
	e2 := NewEvent(TypeBooking, "b", "m", "", "customer-c1")
	bus.Publish(e1)
	bus.Publish(e2)

	bus.MarkRead(e1.ID)

	events := bus.EventsFor("customer-c1")
	assert.True(t, events[0].Read)
	assert.False(t, events[1].Read)

	// Absent id is a no-op.
	bus.MarkRead(uuid.New())
	assert.Equal(t, 1, bus.UnreadCount("customer-c1"))
}

func TestBus_UnreadCountMatchesRecipientAndAll(t *testing.T) {
	bus := NewBus(0)
	bus.Publish(NewEvent(TypeBooking, "mine", "m", "", "customer-c1"))
	bus.Publish(NewEvent(TypeJob, "broadcast", "m", "", domain.RecipientAll))
	bus.Publish(NewEvent(TypeBooking, "theirs", "m", "", "customer-c2"))

	assert.Equal(t, 2, bus.UnreadCount("customer-c1"))
	assert.Equal(t, 2, bus.UnreadCount("customer-c2"))
	assert.Len(t, bus.EventsFor("mechanic-m1"), 1)
}

func TestBus_ClearAllEmptiesAndNotifies(t *testing.T) {
	bus := NewBus(0)
	bus.Publish(NewEvent(TypeBooking, "a", "m", "", "customer-c1"))

	notified := false
	unsubscribe := bus.Subscribe(func(Event) { notified = true })
	defer unsubscribe()

	bus.ClearAll()

	assert.True(t, notified)
	assert.Empty(t, bus.EventsFor("customer-c1"))
	assert.Zero(t, bus.UnreadCount("customer-c1"))
}

func TestBus_ClearForLeavesOtherRecipients(t *testing.T) {
	bus := NewBus(0)
	bus.Publish(NewEvent(TypeBooking, "mine", "m", "", "customer-c1"))
	bus.Publish(NewEvent(TypeJob, "theirs", "m", "", "mechanic-m1"))
	bus.Publish(NewEvent(TypeGeneral, "broadcast", "m", "", domain.RecipientAll))

	notified := false
	unsubscribe := bus.Subscribe(func(Event) { notified = true })
	defer unsubscribe()

	bus.ClearFor("customer-c1")

	assert.True(t, notified)
	assert.Empty(t, bus.EventsFor("customer-c1"))
	assert.Zero(t, bus.UnreadCount("customer-c1"))
	// The other recipient keeps its direct event.
	assert.Equal(t, 1, bus.UnreadCount("mechanic-m1"))
	assert.Equal(t, "theirs", bus.EventsFor("mechanic-m1")[0].Title)
}

func TestBus_RetainCapDropsOldest(t *testing.T) {
	bus := NewBus(3)
	for _, title := range []string{"a", "b", "c", "d"} {
		bus.Publish(NewEvent(TypeGeneral, title, "m", "", "customer-c1"))
	}

	events := bus.EventsFor("customer-c1")
	assert.Len(t, events, 3)
	assert.Equal(t, "b", events[0].Title)
	assert.Equal(t, "d", events[2].Title)
}
