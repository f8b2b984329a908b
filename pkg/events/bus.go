package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topic is the single in-process channel all client lifecycle events flow
// through; subscribers filter on the type metadata.
const Topic = "evalyze.events"

// metaType is the message metadata key carrying the event type code.
const metaType = "type"

// Bus is an in-process publish/subscribe hub for client lifecycle events.
// The UI subscribes to react to things it did not itself initiate (a forced
// logout from a failed refresh, a completion noticed by the poll loop).
type Bus struct {
	channel *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		channel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NopLogger{}),
	}
}

// Publish sends an event to every current subscriber.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metaType, event.EventType())
	msg.SetContext(ctx)

	if err := b.channel.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventType(), err)
	}
	return nil
}

// Subscribe returns the raw event stream. Messages must be Ack'd by the
// consumer; use Type to recover the event code.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.channel.Subscribe(ctx, Topic)
}

// Type extracts the event type code from a bus message.
func Type(msg *message.Message) string {
	return msg.Metadata.Get(metaType)
}

// Close shuts the bus down and terminates all subscriptions.
func (b *Bus) Close() error {
	return b.channel.Close()
}
