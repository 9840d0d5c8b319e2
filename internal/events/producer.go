package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	TicketCreated       = "ticket.created"
	TicketStatusChanged = "ticket.status_changed"
	TicketDeleted       = "ticket.deleted"
)

// TicketEvent is the message body written to the tickets topic.
type TicketEvent struct {
	Event      string    `json:"event"`
	TicketID   string    `json:"ticket_id"`
	ProjectID  string    `json:"project_id,omitempty"`
	Category   string    `json:"category,omitempty"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher lets callers swap the Kafka producer for a recorder in tests.
type Publisher interface {
	Publish(ctx context.Context, ev TicketEvent)
}

// Producer writes ticket events to Kafka. Delivery is best-effort: write
// failures are logged and never surface to the caller. Without brokers
// or a topic every method is a no-op.
type Producer struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewProducer(brokers []string, topic string, logger zerolog.Logger) *Producer {
	p := &Producer{logger: logger.With().Str("component", "events").Logger()}
	if len(brokers) == 0 || topic == "" {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return p
}

func (p *Producer) Enabled() bool { return p != nil && p.writer != nil }

func (p *Producer) Publish(ctx context.Context, ev TicketEvent) {
	if !p.Enabled() {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn().Err(err).Str("event", ev.Event).Msg("marshal ticket event")
		return
	}
	msg := kafka.Message{Key: []byte(ev.TicketID), Value: body}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn().Err(err).Str("event", ev.Event).Str("ticket_id", ev.TicketID).Msg("write ticket event")
	}
}

func (p *Producer) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}

// ParseBrokers splits "host1:9092,host2:9092" into addresses.
func ParseBrokers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, TicketEvent) {}
