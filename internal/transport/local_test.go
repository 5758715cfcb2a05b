package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBus_WriteInvokesLocalSubscriber(t *testing.T) {
	bus := NewBus(NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	var received []Message
	unsubscribe := bus.Subscribe(func(msg Message) {
		received = append(received, msg)
	})
	defer unsubscribe()

	err := bus.Write(ctx, "chat_b1", `[{"sender":"customer","text":"hi"}]`)

	assert.NoError(t, err)
	// Loopback: the writing context's subscriber has fired before Write returned.
	assert.Len(t, received, 1)
	assert.Equal(t, "chat_b1", received[0].Key)
	assert.NotNil(t, received[0].NewValue)
	assert.Equal(t, `[{"sender":"customer","text":"hi"}]`, *received[0].NewValue)
}

func TestBus_ReadAbsentKey(t *testing.T) {
	bus := NewBus(NewMemoryStore(), zap.NewNop())

	value, ok, err := bus.Read(context.Background(), "never_written")

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestBus_DeleteBroadcastsNilValue(t *testing.T) {
	bus := NewBus(NewMemoryStore(), zap.NewNop())
	ctx := context.Background()
	assert.NoError(t, bus.Write(ctx, "serviceReminders", "[]"))

	var last Message
	unsubscribe := bus.Subscribe(func(msg Message) { last = msg })
	defer unsubscribe()

	assert.NoError(t, bus.Delete(ctx, "serviceReminders"))

	assert.Equal(t, "serviceReminders", last.Key)
	assert.Nil(t, last.NewValue)

	_, ok, err := bus.Read(ctx, "serviceReminders")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	calls := 0
	unsubscribe := bus.Subscribe(func(Message) { calls++ })

	assert.NoError(t, bus.Write(ctx, "k", "v1"))
	unsubscribe()
	assert.NoError(t, bus.Write(ctx, "k", "v2"))

	assert.Equal(t, 1, calls)
}

func TestBus_MultipleSubscribersSeeEveryWrite(t *testing.T) {
	bus := NewBus(NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	var a, b []string
	unsubA := bus.Subscribe(func(msg Message) { a = append(a, msg.Key) })
	defer unsubA()
	unsubB := bus.Subscribe(func(msg Message) { b = append(b, msg.Key) })
	defer unsubB()

	assert.NoError(t, bus.Write(ctx, "chat_b1", "[]"))
	assert.NoError(t, bus.Write(ctx, "chat_b2", "[]"))

	assert.Equal(t, []string{"chat_b1", "chat_b2"}, a)
	assert.Equal(t, []string{"chat_b1", "chat_b2"}, b)
}
