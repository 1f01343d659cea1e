package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// EventGuard records processed webhook event IDs in Redis so redelivered
// events can be detected. SetNX makes the check-and-mark atomic across
// concurrent deliveries of the same event; the TTL bounds the key set
// since Stripe stops redelivering after a few days.
type EventGuard struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewEventGuard(client *redis.Client, ttl time.Duration) *EventGuard {
	return &EventGuard{Client: client, TTL: ttl}
}

func eventKey(eventID string) string {
	return "webhook_event:" + eventID
}

// MarkProcessed records the event ID and reports whether it was already
// present.
func (g *EventGuard) MarkProcessed(eventID string) (bool, error) {
	ok, err := g.Client.SetNX(context.Background(), eventKey(eventID), 1, g.TTL).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
