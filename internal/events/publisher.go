// Package events publishes booking lifecycle events to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/model"
	"github.com/tsagbook/booking-platform/pkg/logger"
)

const (
	// StreamName is the name of the booking events stream.
	StreamName = "BOOKINGS"

	// SubjectPrefix is the prefix for all booking event subjects.
	SubjectPrefix = "bookings"
)

// BookingEvent is the wire shape of a lifecycle event.
type BookingEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Booking   *model.Booking `json:"booking"`
	CreatedAt time.Time      `json:"created_at"`
}

// Publisher publishes booking lifecycle events. Publication is best
// effort: failures are logged and never affect the booking outcome.
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect establishes a NATS connection and ensures the stream exists.
func Connect(ctx context.Context, url, token string, log *logger.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{conn: nc, js: js, logger: log}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureStream(ctx context.Context) error {
	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Booking lifecycle events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// BookingCreated publishes a created event.
func (p *Publisher) BookingCreated(ctx context.Context, b *model.Booking) {
	p.publish(ctx, "created", b)
}

// BookingCancelled publishes a cancelled event.
func (p *Publisher) BookingCancelled(ctx context.Context, b *model.Booking) {
	p.publish(ctx, "cancelled", b)
}

func (p *Publisher) publish(ctx context.Context, eventType string, b *model.Booking) {
	event := BookingEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Booking:   b,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal booking event", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		p.logger.Warn("failed to publish booking event",
			zap.String("subject", subject), zap.Error(err))
	}
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
