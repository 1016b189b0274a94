// Package notify delivers owner notifications about new contact form
// submissions.
package notify

import (
	"context"
	"time"
)

// Contact is the part of a submission that goes into a notification.
type Contact struct {
	Name        string
	Email       string
	Message     string
	SubmittedAt time.Time
}

type Notifier interface {
	NotifyContact(ctx context.Context, c Contact) error
}

// Noop is used when e-mail notifications are disabled.
type Noop struct{}

func (Noop) NotifyContact(context.Context, Contact) error { return nil }
