package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const occurredAtKey = "occurred_at"

// LocalBus is the in-process bus used when no NATS server is configured.
type LocalBus struct {
	pubSub *gochannel.GoChannel
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var (
	_ Publisher  = &LocalBus{}
	_ Subscriber = &LocalBus{}
)

func NewLocalBus(logger watermill.LoggerAdapter) *LocalBus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalBus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *LocalBus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(occurredAtKey, event.Timestamp().Format(time.RFC3339Nano))
	msg.SetContext(ctx)

	return b.pubSub.Publish(Subject(event.EventType()), msg)
}

// Subscribe consumes subject until Close. Wildcards are not supported in process.
func (b *LocalBus) Subscribe(subject string, durableName string, handler Handler) error {
	messages, err := b.pubSub.Subscribe(b.ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to subscribe %s (%s): %w", subject, durableName, err)
	}

	eventType := strings.TrimPrefix(subject, SubjectPrefix)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			var payload map[string]interface{}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				// Poison message, drop it
				msg.Ack()
				continue
			}

			occurredAt, err := time.Parse(time.RFC3339Nano, msg.Metadata.Get(occurredAtKey))
			if err != nil {
				occurredAt = time.Now()
			}

			// No redelivery in process: a failing handler would spin on the same message
			_ = handler(b.ctx, BaseEvent{Type: eventType, Data: payload, OccurredAt: occurredAt})
			msg.Ack()
		}
	}()
	return nil
}

func (b *LocalBus) Close() error {
	b.cancel()
	err := b.pubSub.Close()
	b.wg.Wait()
	return err
}
