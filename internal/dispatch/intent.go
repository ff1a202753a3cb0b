// Package dispatch hands notification intents to an outbound channel
// without ever blocking the caller.
package dispatch

import (
	"context"
	"time"
)

type IntentKind string

const (
	KindInvitation        IntentKind = "survey.invitation"
	KindReminder          IntentKind = "survey.reminder"
	KindResponseCompleted IntentKind = "response.completed"
	KindCampaignClosed    IntentKind = "campaign.closed"
)

// Intent asks the notification layer to deliver something. Recipient is an
// opaque participant reference resolved outside this service; it is never
// set on intents raised from the anonymous write path.
type Intent struct {
	Kind       IntentKind        `json:"kind"`
	Recipient  string            `json:"recipient,omitempty"`
	Template   string            `json:"template,omitempty"`
	CampaignID string            `json:"campaignId"`
	Data       map[string]string `json:"data,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type DispatcherInterface interface {
	// Dispatch enqueues intent and reports whether it was accepted. A full
	// queue drops the intent.
	Dispatch(intent Intent) bool
	Pending() int
	Dropped() int64
}

// Sink delivers one intent to the outside world.
type Sink interface {
	Send(ctx context.Context, intent Intent) error
	Close() error
}
