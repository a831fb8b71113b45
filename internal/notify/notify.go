// Package notify sends the per-cycle summary to push channels. Exactly one
// message per cycle goes out, never one per posting; delivery failure is
// logged and forgotten, it never fails ingestion.
package notify

import (
	"context"
	"log"
)

// Notifier is one push channel.
type Notifier interface {
	Send(ctx context.Context, title, message, clickURL string) error
	Name() string
}

// Multi fans a message out to every configured channel. Failures are
// per-channel and swallowed after logging — fire and forget.
type Multi struct {
	channels []Notifier
}

func NewMulti(channels ...Notifier) *Multi {
	return &Multi{channels: channels}
}

func (m *Multi) Send(ctx context.Context, title, message, clickURL string) error {
	for _, ch := range m.channels {
		if err := ch.Send(ctx, title, message, clickURL); err != nil {
			log.Printf("⚠️ %s notification failed: %v", ch.Name(), err)
		}
	}
	return nil
}

func (m *Multi) Name() string { return "multi" }
