package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	EventReservationSubmitted = "reservation_submitted"
	EventReservationFailed    = "reservation_failed"
	EventPaymentReturned      = "payment_returned"
)

type ReservationEvent struct {
	Type              string                    `json:"type"`
	SessionID         string                    `json:"session_id,omitempty"`
	SubmissionID      int64                     `json:"submission_id,omitempty"`
	ContactName       string                    `json:"contact_name,omitempty"`
	ContactEmail      string                    `json:"contact_email,omitempty"`
	Total             float64                   `json:"total,omitempty"`
	ProcessURL        string                    `json:"process_url,omitempty"`
	RequestID         string                    `json:"request_id,omitempty"`
	Error             string                    `json:"error,omitempty"`
	InvoiceIDTemp     string                    `json:"invoice_id_temp,omitempty"`
	ReservationIDTemp string                    `json:"reservation_id_temp,omitempty"`
	PaymentStatus     string                    `json:"payment_status,omitempty"`
	Reservation       *domain.OnlineReservation `json:"reservation,omitempty"`
	OccurredAt        time.Time                 `json:"occurred_at"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.DebugContext(ctx, "published to kafka", "topic", topic, "key", key)
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		slog.WarnContext(ctx, "kafka publish attempt failed", "attempt", i+1, "topic", topic, "error", err)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	slog.InfoContext(ctx, "connected to kafka", "partitions", len(partitions))
	return nil
}
