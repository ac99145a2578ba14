package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/infra/blob"
	"auraweb-intake/internal/infra/events"
	"auraweb-intake/internal/infra/mail"
	"auraweb-intake/internal/infra/stripe"
)

// Gateway is an in-memory payment gateway. Sessions are numbered cs_test_1,
// cs_test_2, ... and start pending.
type Gateway struct {
	mu       sync.Mutex
	seq      int
	Requests []stripe.CheckoutRequest
	Outcomes map[string]stripe.Verification
	Err      error
}

func (g *Gateway) CreateCheckout(_ context.Context, req stripe.CheckoutRequest) (stripe.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return stripe.Checkout{}, g.Err
	}
	g.seq++
	ref := fmt.Sprintf("cs_test_%d", g.seq)
	g.Requests = append(g.Requests, req)
	if g.Outcomes == nil {
		g.Outcomes = map[string]stripe.Verification{}
	}
	g.Outcomes[ref] = stripe.Verification{
		TxRef:        ref,
		SubmissionID: req.SubmissionID,
		Status:       submissions.PaymentPending,
		AmountETB:    req.AmountETB,
	}
	return stripe.Checkout{
		URL:      "https://checkout.test/" + ref,
		TxRef:    ref,
		Amount:   req.AmountETB,
		Currency: submissions.Currency,
	}, nil
}

func (g *Gateway) Verify(_ context.Context, txRef string) (stripe.Verification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return stripe.Verification{}, g.Err
	}
	v, ok := g.Outcomes[txRef]
	if !ok {
		return stripe.Verification{}, fmt.Errorf("no such session %s", txRef)
	}
	return v, nil
}

// Settle sets the outcome Verify will report for txRef.
func (g *Gateway) Settle(txRef string, status submissions.PaymentStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.Outcomes[txRef]
	v.Status = status
	g.Outcomes[txRef] = v
}

// UseGateway installs a fresh fake as stripe.Default.
func UseGateway(t testing.TB) *Gateway {
	t.Helper()
	g := &Gateway{}
	prev := stripe.Default
	stripe.Default = g
	t.Cleanup(func() { stripe.Default = prev })
	return g
}

// Blob keeps uploaded objects in memory.
type Blob struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func (b *Blob) Put(_ context.Context, filename, contentType string, r io.Reader) (blob.Object, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return blob.Object{}, err
	}
	key := blob.ObjectKey(filename)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Objects == nil {
		b.Objects = map[string][]byte{}
	}
	b.Objects[key] = buf.Bytes()
	return blob.Object{Key: key, URL: "https://files.test/" + key, ContentType: contentType, Size: n}, nil
}

func (b *Blob) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Objects, key)
	return nil
}

func UseBlob(t testing.TB) *Blob {
	t.Helper()
	b := &Blob{}
	prev := blob.Default
	blob.Default = b
	t.Cleanup(func() { blob.Default = prev })
	return b
}

// Events records every published message.
type Events struct {
	mu       sync.Mutex
	Subjects []string
	Payloads []any
}

func (e *Events) Publish(_ context.Context, subject string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Subjects = append(e.Subjects, subject)
	e.Payloads = append(e.Payloads, payload)
	return nil
}

func (e *Events) Seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Subjects...)
}

func UseEvents(t testing.TB) *Events {
	t.Helper()
	e := &Events{}
	prev := events.Default
	events.Default = e
	t.Cleanup(func() { events.Default = prev })
	return e
}

// Mailbox records sent mail.
type Mailbox struct {
	mu   sync.Mutex
	Sent []Mail
}

type Mail struct{ To, Subject, Body string }

func (m *Mailbox) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Mail{to, subject, body})
	return nil
}

func (m *Mailbox) Messages() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.Sent...)
}

func UseMailbox(t testing.TB) *Mailbox {
	t.Helper()
	m := &Mailbox{}
	prev := mail.Default
	mail.Default = m
	t.Cleanup(func() { mail.Default = prev })
	return m
}
