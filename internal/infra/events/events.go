package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectSubmissionCreated = "submissions.created"
	SubjectSubmissionUpdated = "submissions.updated"
	SubjectPaymentRecorded   = "payments.recorded"
)

// SubmissionEvent is the payload of every submissions.* message.
type SubmissionEvent struct {
	SubmissionID   string    `json:"submission_id"`
	BusinessName   string    `json:"business_name,omitempty"`
	PackageID      string    `json:"package_id,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Fields         []string  `json:"fields,omitempty"`
	At             time.Time `json:"at"`
}

type PaymentEvent struct {
	SubmissionID string    `json:"submission_id"`
	TxRef        string    `json:"tx_ref"`
	Status       string    `json:"status"`
	AmountETB    int64     `json:"amount_etb"`
	Source       string    `json:"source"` // "verify" or "webhook"
	At           time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Default is used by the handlers. It stays a no-op unless main connects NATS.
var Default Publisher = Noop{}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

type NATS struct {
	nc *nats.Conn
}

func Connect(url string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("auraweb-intake"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATS{nc: nc}, nil
}

func (n *NATS) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	return n.nc.Publish(subject, data)
}

func (n *NATS) Close() error {
	return n.nc.Drain()
}

// Emit publishes on Default and only logs failures; notifications never
// fail the request that caused them.
func Emit(ctx context.Context, subject string, payload any) {
	if err := Default.Publish(ctx, subject, payload); err != nil {
		slog.Warn("Event publish failed", "subject", subject, "error", err)
	}
}
