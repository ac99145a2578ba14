package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auraweb-intake/internal/domain/submissions"

	stripeapi "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

var ErrNotConfigured = errors.New("payment gateway not configured")

type CheckoutRequest struct {
	SubmissionID  string
	BusinessName  string
	PackageID     string
	CustomerEmail string
	AmountETB     int64
}

type Checkout struct {
	URL      string `json:"checkout_url"`
	TxRef    string `json:"tx_ref"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Verification struct {
	TxRef        string
	SubmissionID string
	Status       submissions.PaymentStatus
	AmountETB    int64
}

// Gateway creates hosted checkout pages and reads back their outcome.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	Verify(ctx context.Context, txRef string) (Verification, error)
}

// Default is set by main; tests swap in a fake.
var Default Gateway

type Stripe struct {
	SecretKey string
	AppURL    string // where the customer lands after paying
}

func New(secretKey, appURL string) *Stripe {
	// the SDK keeps the key globally
	stripeapi.Key = secretKey
	if appURL == "" {
		appURL = "http://localhost:5173"
	}
	return &Stripe{SecretKey: secretKey, AppURL: strings.TrimRight(appURL, "/")}
}

func (s *Stripe) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	if s.SecretKey == "" {
		return Checkout{}, ErrNotConfigured
	}
	if req.AmountETB <= 0 {
		return Checkout{}, fmt.Errorf("invalid amount %d", req.AmountETB)
	}

	name := fmt.Sprintf("Website deposit (%s) - %s", req.PackageID, req.BusinessName)
	params := &stripeapi.CheckoutSessionParams{
		SuccessURL: stripeapi.String(s.AppURL + "/payment/success?tx_ref={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripeapi.String(s.AppURL + "/track?order_id=" + req.SubmissionID),
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(strings.ToLower(submissions.Currency)),
					UnitAmount: stripeapi.Int64(req.AmountETB * 100),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(name),
					},
				},
				Quantity: stripeapi.Int64(1),
			},
		},
		ClientReferenceID: stripeapi.String(req.SubmissionID),
	}
	params.Context = ctx
	params.AddMetadata("submission_id", req.SubmissionID)
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(req.CustomerEmail)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return Checkout{}, fmt.Errorf("create checkout session: %w", err)
	}

	return Checkout{
		URL:      sess.URL,
		TxRef:    sess.ID,
		Amount:   req.AmountETB,
		Currency: submissions.Currency,
	}, nil
}

func (s *Stripe) Verify(ctx context.Context, txRef string) (Verification, error) {
	if s.SecretKey == "" {
		return Verification{}, ErrNotConfigured
	}
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(txRef, params)
	if err != nil {
		return Verification{}, fmt.Errorf("fetch checkout session %s: %w", txRef, err)
	}
	return FromSession(sess), nil
}

// FromSession reads a checkout session, as fetched or as delivered by a webhook.
func FromSession(sess *stripeapi.CheckoutSession) Verification {
	v := Verification{
		TxRef:        sess.ID,
		SubmissionID: sess.ClientReferenceID,
		Status:       NormalizePaymentStatus(string(sess.PaymentStatus), string(sess.Status)),
		AmountETB:    sess.AmountTotal / 100,
	}
	if v.SubmissionID == "" && sess.Metadata != nil {
		v.SubmissionID = sess.Metadata["submission_id"]
	}
	return v
}
