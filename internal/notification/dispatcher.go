// Package notification fans created alerts out to delivery channels and
// renders the email deliveries consumed from the alerts topic.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/observability"
	"github.com/rpenumatsa/airsense-server/internal/protocol"
	"github.com/rpenumatsa/airsense-server/internal/queue"
)

// Channel delivers an alert over one transport (email, push, SMS). Transport
// mechanics live behind this contract; only the trigger matters here.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert *protocol.AlertMessage) error
}

// Dispatcher fans alerts out to every configured channel. Delivery is
// fire-and-forget: failures are logged and counted per channel, never
// retried synchronously, and never block alert persistence.
type Dispatcher struct {
	channels []Channel
	metrics  *observability.Metrics
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher over the given channels
func NewDispatcher(metrics *observability.Metrics, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		metrics:  metrics,
		timeout:  10 * time.Second,
	}
}

// Dispatch sends the alert to every channel in its own goroutine
func (d *Dispatcher) Dispatch(a *database.AlertRecord) {
	msg := &protocol.AlertMessage{
		AlertID:           a.ID,
		Zipcode:           a.Zipcode,
		Severity:          a.Severity,
		IndexValue:        a.IndexValue,
		Category:          aqi.Category(a.IndexValue),
		DominantParameter: a.DominantParameter,
		Message:           a.Message,
		HealthImpact:      a.HealthImpact,
		CreatedAt:         a.CreatedAt,
		ExpiresAt:         a.ExpiresAt,
	}

	for _, ch := range d.channels {
		go func(ch Channel) {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := ch.Send(ctx, msg); err != nil {
				fmt.Printf("Notification via %s failed for alert %s: %v\n", ch.Name(), a.ID, err)
				d.metrics.NotifyFailures.WithLabelValues(ch.Name()).Inc()
			}
		}(ch)
	}
}

// KafkaChannel publishes alerts to the alerts topic, where the notification
// service picks them up for delivery.
type KafkaChannel struct {
	producer *queue.Producer
}

// NewKafkaChannel creates a channel backed by a Kafka producer
func NewKafkaChannel(producer *queue.Producer) *KafkaChannel {
	return &KafkaChannel{producer: producer}
}

// Name implements Channel
func (c *KafkaChannel) Name() string { return "kafka" }

// Send implements Channel
func (c *KafkaChannel) Send(ctx context.Context, alert *protocol.AlertMessage) error {
	data, err := protocol.EncodeAlertMessage(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}
	return c.producer.Publish(ctx, alert.Zipcode, data)
}
