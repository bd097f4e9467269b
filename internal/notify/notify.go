// internal/notify/notify.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Event is a short-lived, user-visible notification ("Added X to bag").
type Event struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers events fire-and-forget: no acknowledgement, no error
// surfaced to the caller.
type Notifier interface {
	Notify(ctx context.Context, sessionID, message string)
}

// RedisNotifier publishes events to a per-session Redis channel that the
// frontend consumes for toast display.
type RedisNotifier struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisNotifier creates a notifier publishing through the given client.
func NewRedisNotifier(client *redis.Client, logger *logrus.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Notify publishes the event. Failures are logged and swallowed.
func (n *RedisNotifier) Notify(ctx context.Context, sessionID, message string) {
	payload, err := json.Marshal(Event{Message: message, CreatedAt: time.Now().UTC()})
	if err != nil {
		return
	}

	channel := fmt.Sprintf("notify:%s", sessionID)
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.WithError(err).WithField("channel", channel).Warn("notification publish failed")
	}
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, string, string) {}
