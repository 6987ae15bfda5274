// Package relay moves audit traffic across process boundaries over Kafka:
// lifecycle hook events in, high-risk alerts out.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"custodian/internal/audit"
	"custodian/internal/platform/kafka/consumer"
	"custodian/internal/platform/kafka/producer"
)

var (
	hookMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_relay_hook_messages_total",
		Help: "Hook messages read from kafka, by outcome",
	}, []string{"outcome"})
	alertsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_relay_alerts_total",
		Help: "High-risk alerts handed to the producer, by outcome",
	}, []string{"outcome"})
)

// Publisher is the bus side the relay feeds.
type Publisher interface {
	Publish(ctx context.Context, ev audit.HookEvent)
}

// HookRelay is a consumer.Handler that decodes hook events and republishes
// them on a local bus.
type HookRelay struct {
	bus    Publisher
	logger *slog.Logger
}

var _ consumer.Handler = (*HookRelay)(nil)

func NewHookRelay(bus Publisher, logger *slog.Logger) *HookRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &HookRelay{bus: bus, logger: logger}
}

// Handle never returns an error for malformed payloads: redelivering them
// would not make them decodable, so they are logged, counted and committed.
func (r *HookRelay) Handle(ctx context.Context, msg *consumer.Message) error {
	var ev audit.HookEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		hookMessages.WithLabelValues("malformed").Inc()
		r.logger.WarnContext(ctx, "dropping malformed hook message",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	if ev.Name == "" {
		hookMessages.WithLabelValues("malformed").Inc()
		r.logger.WarnContext(ctx, "dropping hook message without name",
			"topic", msg.Topic,
			"offset", msg.Offset,
		)
		return nil
	}
	if ev.Timestamp.IsZero() && !msg.Timestamp.IsZero() {
		ev.Timestamp = msg.Timestamp
	}

	r.bus.Publish(ctx, ev)
	hookMessages.WithLabelValues("published").Inc()
	return nil
}

// Alert is the wire form of a high-risk audit entry.
type Alert struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Category  audit.Category  `json:"category"`
	Operation string          `json:"operation"`
	Actor     string          `json:"actor"`
	Risk      audit.RiskLevel `json:"risk_level"`
	Success   bool            `json:"success"`
	Details   map[string]any  `json:"details,omitempty"`
	Origin    string          `json:"origin,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}

func alertFromEntry(e audit.Entry) Alert {
	return Alert{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Category:  e.Category,
		Operation: e.Operation,
		Actor:     e.Actor,
		Risk:      e.Risk,
		Success:   e.Success,
		Details:   e.Details,
		Origin:    e.Origin,
		SessionID: e.SessionID,
	}
}

// Subscriber is the logger side the forwarder listens on.
type Subscriber interface {
	Subscribe(fn func(audit.Entry)) (unsubscribe func())
}

// AlertForwarder publishes every high-risk entry the logger reports to a
// Kafka topic. Entries are keyed by actor so one actor's alerts stay ordered.
type AlertForwarder struct {
	producer producer.Publisher
	topic    string
	logger   *slog.Logger
	stop     func()
}

func NewAlertForwarder(p producer.Publisher, topic string, logger *slog.Logger) (*AlertForwarder, error) {
	if p == nil {
		return nil, fmt.Errorf("alert producer is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("alert topic is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertForwarder{producer: p, topic: topic, logger: logger}, nil
}

// Attach starts forwarding. Calling it again replaces the previous subscription.
func (f *AlertForwarder) Attach(sub Subscriber) {
	f.Detach()
	f.stop = sub.Subscribe(f.forward)
}

// Detach stops forwarding.
func (f *AlertForwarder) Detach() {
	if f.stop != nil {
		f.stop()
		f.stop = nil
	}
}

func (f *AlertForwarder) forward(e audit.Entry) {
	body, err := json.Marshal(alertFromEntry(e))
	if err != nil {
		alertsPublished.WithLabelValues("encode_failed").Inc()
		f.logger.Error("encode high-risk alert", "id", e.ID, "error", err)
		return
	}

	msg := &producer.Message{
		Topic: f.topic,
		Key:   []byte(e.Actor),
		Value: body,
		Headers: map[string]string{
			"risk_level": string(e.Risk),
			"category":   string(e.Category),
		},
	}
	if err := f.producer.ProduceAsync(msg); err != nil {
		alertsPublished.WithLabelValues("rejected").Inc()
		f.logger.Warn("high-risk alert not queued", "id", e.ID, "error", err)
		return
	}
	alertsPublished.WithLabelValues("queued").Inc()
}
