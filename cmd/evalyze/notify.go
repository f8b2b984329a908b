package main

import (
	"context"
	"fmt"
	"io"

	"evalyze-client/pkg/events"
)

// watchEvents drains the lifecycle bus and prints a notice for the events the
// user did not themselves initiate: a forced logout after a failed token
// refresh, and a completion first noticed by the background poll. The drain
// goroutine exits when the bus closes or ctx is cancelled.
func watchEvents(ctx context.Context, bus *events.Bus, out io.Writer) error {
	messages, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			if notice := eventNotice(events.Type(msg)); notice != "" {
				fmt.Fprintln(out, notice)
			}
			msg.Ack()
		}
	}()
	return nil
}

// eventNotice maps an event type to its user-facing line. Empty means the
// event carries no notice (the triggering flow already told the user).
func eventNotice(eventType string) string {
	switch eventType {
	case events.TypeUserLogout:
		return "(signed out, log in again to continue)"
	case events.TypeSessionCompleted:
		return "(your interview is complete)"
	default:
		return ""
	}
}
