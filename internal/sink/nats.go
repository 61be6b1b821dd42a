package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/logfields"
)

const natsPublishTimeout = 5 * time.Second

type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSSink publishes records as JSON to a JetStream subject. The subject is
// suffixed with the record code, so consumers can filter with wildcards.
type NATSSink struct {
	conn    *nats.Conn
	js      publisher
	subject string
}

// NewNATSSink connects to url and publishes under subject.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats sink: subject is required")
	}

	conn, err := nats.Connect(url, nats.Name("svcerr"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS sink initialized", "url", url, "subject", subject)
	return &NATSSink{conn: conn, js: js, subject: subject}, nil
}

// Subject returns the subject a record is published on.
func (s *NATSSink) Subject(rec errors.Record) string {
	return s.subject + "." + string(rec.Code)
}

func (s *NATSSink) Emit(ctx context.Context, rec errors.Record) error {
	rec = Stamp(rec)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, natsPublishTimeout)
	defer cancel()

	subject := s.Subject(rec)
	if _, err := s.js.Publish(ctx, subject, data); err != nil {
		return errors.FromTransport(err, "nats.publish")
	}

	slog.Debug("Published error record", logfields.Sink("nats"), logfields.ErrorCode(string(rec.Code)), "subject", subject)
	return nil
}

// Close drains and closes the NATS connection.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}
