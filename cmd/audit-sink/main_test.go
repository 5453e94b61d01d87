package main

import (
	"testing"

	"github.com/fliproyale/waitlist/internal/events"
)

func TestToAuditLog(t *testing.T) {
	tests := []struct {
		name      string
		event     events.Event
		actor     string
		entity    string
		actorType string
	}{
		{
			name:      "signup",
			event:     events.Event{Type: events.EventWaitlistSignup, Payload: map[string]any{"user_id": "u1"}},
			actor:     "u1",
			entity:    "u1",
			actorType: "user",
		},
		{
			name: "referral credited is about the referrer",
			event: events.Event{Type: events.EventReferralCredited, Payload: map[string]any{
				"user_id": "u2", "referrer_id": "u1",
			}},
			actor:     "u2",
			entity:    "u1",
			actorType: "user",
		},
		{
			name:      "no user",
			event:     events.Event{Type: "maintenance", Payload: map[string]any{}},
			actorType: "system",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := toAuditLog(tt.event)
			if entry.Action != tt.event.Type {
				t.Errorf("action = %s, want %s", entry.Action, tt.event.Type)
			}
			if entry.ActorType != tt.actorType {
				t.Errorf("actor type = %s, want %s", entry.ActorType, tt.actorType)
			}
			if got := deref(entry.ActorUserID); got != tt.actor {
				t.Errorf("actor = %q, want %q", got, tt.actor)
			}
			if got := deref(entry.EntityID); got != tt.entity {
				t.Errorf("entity = %q, want %q", got, tt.entity)
			}
		})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
