package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectPrefix prefixes every payment event subject.
const SubjectPrefix = "payments"

// EventType names a payment lifecycle event.
type EventType string

const (
	EventPaymentSucceeded EventType = "succeeded"
	EventPaymentFailed    EventType = "failed"
	EventPaymentRefunded  EventType = "refunded"
)

// Subject returns the subject an event of this type is published on.
func (t EventType) Subject() string {
	return SubjectPrefix + "." + string(t)
}

// Event is the message published on every payment status change.
type Event struct {
	Type       EventType `json:"type"`
	PaymentID  string    `json:"payment_id"`
	BookingID  string    `json:"booking_id"`
	Method     string    `json:"method"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers payment events to interested parties.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to the log only.
type LogNotifier struct {
	l *zap.Logger
}

func NewLogNotifier(l *zap.Logger) *LogNotifier {
	return &LogNotifier{l: l.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.l.Info("Payment event.",
		zap.String("subject", event.Type.Subject()),
		zap.String("payment_id", event.PaymentID),
		zap.String("status", event.Status),
		zap.String("amount", event.Amount),
	)
	return nil
}

// publisher is the part of *nats.Conn the notifier uses.
type publisher interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSNotifier publishes events as JSON on payments.<type>.
type NATSNotifier struct {
	nc publisher
	l  *zap.Logger
}

// NewNATSNotifier connects to url and returns a publishing notifier.
func NewNATSNotifier(url string, l *zap.Logger) (*NATSNotifier, error) {
	l = l.Named("notify")
	conn, err := nats.Connect(url,
		nats.Name("stayledger"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("NATS disconnected.", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("NATS reconnected.", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{nc: conn, l: l}, nil
}

func (n *NATSNotifier) Notify(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return n.nc.Publish(event.Type.Subject(), data)
}

// Close flushes pending messages and closes the connection.
func (n *NATSNotifier) Close() {
	if err := n.nc.Drain(); err != nil {
		n.l.Warn("Failed to drain NATS connection.", zap.Error(err))
	}
}

// check interfaces
var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*NATSNotifier)(nil)
)
