package gateway

import "context"

// Notifier is the subscribe/notify boundary between the core and its
// consumers (email service, realtime dashboards). Notify is fire-and-forget:
// a failed notification never rolls back a financial transition.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any)
}

// NopNotifier drops every event. Used in tests and when no broker is wired.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, event string, payload any) {}
