package stripewebhooks

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auraweb-intake/config"
	"auraweb-intake/internal/domain/billing"
	"auraweb-intake/internal/domain/submissions"
	"auraweb-intake/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"
	"gorm.io/gorm"
)

const secret = "whsec_test"

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.UseDB(t)
	prev := config.STRIPE_WEBHOOK_SECRET
	config.STRIPE_WEBHOOK_SECRET = secret
	t.Cleanup(func() { config.STRIPE_WEBHOOK_SECRET = prev })

	r := testutil.NewRouter()
	r.POST("/api/webhook/stripe", StripeWebhook)

	testutil.SeedSubmission(t, db, "s1", func(s *submissions.Submission) {
		s.Email = nil
		s.Status = submissions.StatusPaymentPending
		ref := "cs_test_1"
		amount := int64(5000)
		s.Payment = &submissions.Payment{Status: submissions.PaymentPending, TxRef: &ref, Amount: &amount}
	})
	require.NoError(t, db.Create(&billing.Payment{
		SubmissionID: "s1",
		TxRef:        "cs_test_1",
		AmountETB:    5000,
		Currency:     "ETB",
		Status:       "pending",
	}).Error)
	return db, r
}

func event(t *testing.T, id, typ string, session map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":     id,
		"object": "event",
		"type":   typ,
		"data":   map[string]any{"object": session},
	})
	require.NoError(t, err)
	return raw
}

func post(r http.Handler, payload []byte, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		now := time.Now()
		sig := webhook.ComputeSignature(now, payload, secret)
		req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func paidSession() map[string]any {
	return map[string]any{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"client_reference_id": "s1",
		"payment_status":      "paid",
		"status":              "complete",
		"amount_total":        500000,
		"metadata":            map[string]string{"submission_id": "s1"},
	}
}

func TestStripeWebhook_CompletedMarksPaid(t *testing.T) {
	db, r := setup(t)

	w := post(r, event(t, "evt_1", "checkout.session.completed", paidSession()), true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "received")

	rec, err := submissions.Get(db, "s1")
	require.NoError(t, err)
	assert.Equal(t, "paid", rec.PaymentStatus)
	assert.Equal(t, string(submissions.StatusPaymentReceived), rec.Status)

	var attempt billing.Payment
	require.NoError(t, db.Where("tx_ref = ?", "cs_test_1").First(&attempt).Error)
	assert.Equal(t, "paid", attempt.Status)
	require.NotNil(t, attempt.StripeEventID)
	assert.Equal(t, "evt_1", *attempt.StripeEventID)

	// redelivery
	w = post(r, event(t, "evt_1", "checkout.session.completed", paidSession()), true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeWebhook_ExpiredMarksFailed(t *testing.T) {
	db, r := setup(t)

	session := paidSession()
	session["payment_status"] = "unpaid"
	session["status"] = "expired"
	w := post(r, event(t, "evt_2", "checkout.session.expired", session), true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec, err := submissions.Get(db, "s1")
	require.NoError(t, err)
	assert.Equal(t, "failed", rec.PaymentStatus)
	assert.Equal(t, string(submissions.StatusPaymentPending), rec.Status)
}

func TestStripeWebhook_Ignores(t *testing.T) {
	db, r := setup(t)

	w := post(r, event(t, "evt_3", "customer.created", map[string]any{"id": "cus_1"}), true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")

	foreign := paidSession()
	foreign["id"] = "cs_other"
	foreign["client_reference_id"] = ""
	foreign["metadata"] = map[string]string{}
	w = post(r, event(t, "evt_4", "checkout.session.completed", foreign), true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")

	pending := paidSession()
	pending["payment_status"] = "unpaid"
	w = post(r, event(t, "evt_5", "checkout.session.completed", pending), true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")

	rec, err := submissions.Get(db, "s1")
	require.NoError(t, err)
	assert.Equal(t, "pending", rec.PaymentStatus)
}

func TestStripeWebhook_RejectsBadSignature(t *testing.T) {
	_, r := setup(t)

	w := post(r, event(t, "evt_6", "checkout.session.completed", paidSession()), false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
