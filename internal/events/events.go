// Package events carries waitlist activity (signups, referral credits, task
// claims) from the API to cmd/audit-sink over Redis pub/sub. Publishing is
// best effort: the API logs publish failures and never fails a request on them.
package events

import "context"

// Event types
const (
	EventWaitlistSignup   = "waitlist_signup"
	EventReferralCredited = "referral_credited"
	EventTaskClaimed      = "task_claimed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Str returns the payload value under key when it is a non-empty string.
func (e Event) Str(key string) (string, bool) {
	v, ok := e.Payload[key].(string)
	return v, ok && v != ""
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
