package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBus_DeliversPublishedEvent(t *testing.T) {
	bus := NewLocalBus(nil)
	defer bus.Close()

	received := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(Subject(ReminderDue), "test", func(ctx context.Context, e Event) error {
		received <- e
		return nil
	}))

	at := time.Date(2024, 6, 1, 9, 45, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(context.Background(), BaseEvent{
		Type:       ReminderDue,
		Data:       map[string]interface{}{"user_id": "u1", "bucket": "15m"},
		OccurredAt: at,
	}))

	select {
	case e := <-received:
		assert.Equal(t, ReminderDue, e.EventType())
		assert.Equal(t, "u1", e.Payload()["user_id"])
		assert.True(t, at.Equal(e.Timestamp()))
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}
