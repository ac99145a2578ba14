// Package storeapi is the HTTP client for the Submission Store API.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"auraweb-intake/internal/domain/portfolio"
	"auraweb-intake/internal/domain/submissions"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token; an empty token sends no header.
// *session.Session satisfies it.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the API rooted at baseURL (without the /api suffix).
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attachment is a file sent along with a submission or uploaded alone.
type Attachment struct {
	Filename string
	Content  []byte
}

type LoginResult struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

type PaymentLink struct {
	CheckoutURL string                 `json:"checkout_url"`
	TxRef       string                 `json:"tx_ref"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	Submission  submissions.Submission `json:"submission"`
}

type Verification struct {
	Status       submissions.PaymentStatus `json:"status"`
	TxRef        string                    `json:"tx_ref"`
	Amount       int64                     `json:"amount"`
	SubmissionID string                    `json:"submission_id"`
	OrderStatus  submissions.Status        `json:"order_status"`
	BusinessName string                    `json:"business_name"`
	PackageID    string                    `json:"package"`
}

type Package struct {
	submissions.Package
	DepositETB int64  `json:"deposit_etb"`
	Currency   string `json:"currency"`
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"username": username, "password": password}, &out)
	return out, err
}

// Account is the signed-in admin and the integrations the store has enabled.
type Account struct {
	User struct {
		ID           uint   `json:"id"`
		Username     string `json:"username"`
		AuthProvider string `json:"auth_provider"`
		Role         string `json:"role"`
	} `json:"user"`
	Features struct {
		Payments     bool   `json:"payments"`
		GoogleSignIn bool   `json:"google_sign_in"`
		Mail         bool   `json:"mail"`
		Events       bool   `json:"events"`
		Storage      string `json:"storage"`
	} `json:"features"`
}

func (c *Client) Me(ctx context.Context) (Account, error) {
	var out Account
	err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out)
	return out, err
}

// ListSubmissions returns every submission, newest first.
func (c *Client) ListSubmissions(ctx context.Context) ([]submissions.Submission, error) {
	var out []submissions.Submission
	if err := c.doJSON(ctx, http.MethodGet, "/api/submissions", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []submissions.Submission{}
	}
	return out, nil
}

func (c *Client) GetSubmission(ctx context.Context, id string) (submissions.Submission, error) {
	var out submissions.Submission
	err := c.doJSON(ctx, http.MethodGet, "/api/submissions/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// CreateSubmission sends JSON when there are no attachments and multipart
// ("data" plus one "files" part per attachment) otherwise.
func (c *Client) CreateSubmission(ctx context.Context, s submissions.Submission, files []Attachment) (submissions.Submission, error) {
	var out submissions.Submission
	if len(files) == 0 {
		err := c.doJSON(ctx, http.MethodPost, "/api/submissions", nil, s, &out)
		return out, err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return out, fmt.Errorf("marshal submission: %w", err)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("data", string(data)); err != nil {
		return out, err
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.Filename)
		if err != nil {
			return out, err
		}
		if _, err := fw.Write(f.Content); err != nil {
			return out, err
		}
	}
	if err := mw.Close(); err != nil {
		return out, err
	}

	err = c.do(ctx, http.MethodPost, "/api/submissions", nil, &body, mw.FormDataContentType(), &out)
	return out, err
}

// UpdateSubmission sends only the fields set on p. p.StatusOverride becomes
// ?override=true.
func (c *Client) UpdateSubmission(ctx context.Context, id string, p submissions.Patch) (submissions.Submission, error) {
	var q url.Values
	if p.StatusOverride {
		q = url.Values{"override": {"true"}}
	}
	var out submissions.Submission
	err := c.doJSON(ctx, http.MethodPatch, "/api/submissions/"+url.PathEscape(id), q, p, &out)
	return out, err
}

// Upload stores a single file and returns its public URL.
func (c *Client) Upload(ctx context.Context, f Attachment) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", f.Filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(f.Content); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload", nil, &body, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// CreatePaymentLink asks for a deposit checkout link. notify mails it to the customer.
func (c *Client) CreatePaymentLink(ctx context.Context, id string, notify bool) (PaymentLink, error) {
	var q url.Values
	if notify {
		q = url.Values{"notify": {"true"}}
	}
	var out PaymentLink
	err := c.doJSON(ctx, http.MethodPost, "/api/submissions/"+url.PathEscape(id)+"/create_payment", q, nil, &out)
	return out, err
}

func (c *Client) VerifyPayment(ctx context.Context, txRef string) (Verification, error) {
	var out Verification
	err := c.doJSON(ctx, http.MethodGet, "/api/payments/verify", url.Values{"tx_ref": {txRef}}, nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (submissions.Stats, error) {
	var out submissions.Stats
	err := c.doJSON(ctx, http.MethodGet, "/api/stats", nil, nil, &out)
	return out, err
}

func (c *Client) Track(ctx context.Context, orderID, phone string) (submissions.Tracking, error) {
	var out submissions.Tracking
	err := c.doJSON(ctx, http.MethodGet, "/api/track", url.Values{"order_id": {orderID}, "phone": {phone}}, nil, &out)
	return out, err
}

func (c *Client) Packages(ctx context.Context) ([]Package, error) {
	var out []Package
	err := c.doJSON(ctx, http.MethodGet, "/api/packages", nil, nil, &out)
	return out, err
}

func (c *Client) Portfolio(ctx context.Context) ([]portfolio.Item, error) {
	var out []portfolio.Item
	if err := c.doJSON(ctx, http.MethodGet, "/api/portfolio", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePortfolioItem(ctx context.Context, it portfolio.Item) (portfolio.Item, error) {
	var out portfolio.Item
	err := c.doJSON(ctx, http.MethodPost, "/api/portfolio", nil, it, &out)
	return out, err
}

func (c *Client) DeletePortfolioItem(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/portfolio/"+strconv.FormatUint(uint64(id), 10), nil, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, q, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func errorMessage(code int, raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return http.StatusText(code)
}
