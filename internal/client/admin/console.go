// Package admin is the console controller: login, listing and searching
// submissions, lifecycle changes through the sync engine, payments and the
// portfolio.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"auraweb-intake/internal/client/storeapi"
	"auraweb-intake/internal/client/syncengine"
	"auraweb-intake/internal/domain/portfolio"
	"auraweb-intake/internal/domain/submissions"

	"golang.org/x/text/cases"
)

var ErrNotAuthenticated = errors.New("admin: not authenticated")

// API is the part of the store client the console calls directly.
type API interface {
	Login(ctx context.Context, username, password string) (storeapi.LoginResult, error)
	Me(ctx context.Context) (storeapi.Account, error)
	CreatePaymentLink(ctx context.Context, id string, notify bool) (storeapi.PaymentLink, error)
	VerifyPayment(ctx context.Context, txRef string) (storeapi.Verification, error)
	Stats(ctx context.Context) (submissions.Stats, error)
	Portfolio(ctx context.Context) ([]portfolio.Item, error)
	CreatePortfolioItem(ctx context.Context, it portfolio.Item) (portfolio.Item, error)
	DeletePortfolioItem(ctx context.Context, id uint) error
	Upload(ctx context.Context, f storeapi.Attachment) (string, error)
}

// Engine is the submissions state the console reads and mutates.
type Engine interface {
	Refresh(ctx context.Context) error
	Snapshot() []submissions.Submission
	Get(id string) (submissions.Submission, bool)
	Update(ctx context.Context, id string, p submissions.Patch) (submissions.Submission, error)
}

type Session interface {
	Authenticated() bool
	Set(ctx context.Context, token string) error
	Invalidate(ctx context.Context) error
}

type Console struct {
	api     API
	engine  Engine
	session Session
	log     *slog.Logger
}

func New(api API, engine Engine, session Session, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{api: api, engine: engine, session: session, log: log}
}

func (c *Console) Authenticated() bool { return c.session.Authenticated() }

// Login exchanges credentials for a token and keeps it in the session.
func (c *Console) Login(ctx context.Context, username, password string) error {
	res, err := c.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := c.session.Set(ctx, res.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	c.log.Info("signed in", "username", res.Username)
	return nil
}

// Whoami asks the store who the current token belongs to.
func (c *Console) Whoami(ctx context.Context) (storeapi.Account, error) {
	if err := c.requireAuth(); err != nil {
		return storeapi.Account{}, err
	}
	acct, err := c.api.Me(ctx)
	return acct, c.checkAuth(ctx, err)
}

func (c *Console) Logout(ctx context.Context) error {
	return c.session.Invalidate(ctx)
}

// Refresh reloads the list from the store.
func (c *Console) Refresh(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.checkAuth(ctx, c.engine.Refresh(ctx))
}

// Submissions is the current in-memory list, newest first.
func (c *Console) Submissions() []submissions.Submission {
	return c.engine.Snapshot()
}

// Search keeps submissions whose business name contains query (case
// folded) or whose phone contains it, literally or digits-only.
func (c *Console) Search(query string) []submissions.Submission {
	return Filter(c.engine.Snapshot(), "", query)
}

func (c *Console) FilterByStatus(status submissions.Status) []submissions.Submission {
	return Filter(c.engine.Snapshot(), status, "")
}

// Filter applies an optional status and an optional search query.
func Filter(list []submissions.Submission, status submissions.Status, query string) []submissions.Submission {
	query = strings.TrimSpace(query)
	fold := cases.Fold()
	q := fold.String(query)
	qDigits := digits(query)

	out := make([]submissions.Submission, 0, len(list))
	for _, s := range list {
		if status != "" && s.Status != status {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(s.BusinessName), q) &&
			!strings.Contains(s.Phone, query) &&
			(qDigits == "" || !strings.Contains(digits(s.Phone), qDigits)) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SetStatus checks the move locally, then applies it optimistically.
// override permits a backward move; terminal statuses never move.
func (c *Console) SetStatus(ctx context.Context, id string, to submissions.Status, override bool) (submissions.Submission, error) {
	if err := c.requireAuth(); err != nil {
		return submissions.Submission{}, err
	}
	cur, ok := c.engine.Get(id)
	if !ok {
		return submissions.Submission{}, fmt.Errorf("%w: %s", syncengine.ErrUnknownSubmission, id)
	}
	if err := submissions.CheckTransition(cur.Status, to, override); err != nil {
		return submissions.Submission{}, err
	}
	p := submissions.Patch{Status: &to, StatusOverride: override}
	s, err := c.engine.Update(ctx, id, p)
	return s, c.checkAuth(ctx, err)
}

// QuickActions lists the one-click statuses legal from the current one.
func (c *Console) QuickActions(id string) []submissions.Status {
	cur, ok := c.engine.Get(id)
	if !ok {
		return nil
	}
	var out []submissions.Status
	for _, st := range submissions.QuickActionStatuses() {
		if st != cur.Status && submissions.CanTransition(cur.Status, st) {
			out = append(out, st)
		}
	}
	return out
}

// Edit holds the fields an admin can change besides the status. Nil means
// unchanged; an empty string clears the field.
type Edit struct {
	AdminNotes        *string
	LogoURL           *string
	GoogleMapsLink    *string
	Services          *[]string
	AboutUs           *string
	AssignedTo        *string
	EstimatedDelivery *string
}

func (e Edit) patch() submissions.Patch {
	return submissions.Patch{
		AdminNotes:        e.AdminNotes,
		LogoURL:           e.LogoURL,
		GoogleMapsLink:    e.GoogleMapsLink,
		Services:          e.Services,
		AboutUs:           e.AboutUs,
		AssignedTo:        e.AssignedTo,
		EstimatedDelivery: e.EstimatedDelivery,
	}
}

// Edit validates and applies field changes optimistically.
func (c *Console) Edit(ctx context.Context, id string, e Edit) (submissions.Submission, error) {
	if err := c.requireAuth(); err != nil {
		return submissions.Submission{}, err
	}
	cur, ok := c.engine.Get(id)
	if !ok {
		return submissions.Submission{}, fmt.Errorf("%w: %s", syncengine.ErrUnknownSubmission, id)
	}
	p := e.patch()
	if err := p.Validate(cur.Status); err != nil {
		return submissions.Submission{}, err
	}
	s, err := c.engine.Update(ctx, id, p)
	return s, c.checkAuth(ctx, err)
}

// CreatePaymentLink requests a deposit link and refreshes the list, since
// the store moves the payment and status fields.
func (c *Console) CreatePaymentLink(ctx context.Context, id string, notify bool) (storeapi.PaymentLink, error) {
	if err := c.requireAuth(); err != nil {
		return storeapi.PaymentLink{}, err
	}
	link, err := c.api.CreatePaymentLink(ctx, id, notify)
	if err != nil {
		return storeapi.PaymentLink{}, c.checkAuth(ctx, err)
	}
	c.refreshQuietly(ctx)
	return link, nil
}

// VerifyPayment asks the store to settle txRef with the gateway.
func (c *Console) VerifyPayment(ctx context.Context, txRef string) (storeapi.Verification, error) {
	v, err := c.api.VerifyPayment(ctx, txRef)
	if err != nil {
		return storeapi.Verification{}, err
	}
	if c.session.Authenticated() {
		c.refreshQuietly(ctx)
	}
	return v, nil
}

func (c *Console) Stats(ctx context.Context) (submissions.Stats, error) {
	if err := c.requireAuth(); err != nil {
		return submissions.Stats{}, err
	}
	st, err := c.api.Stats(ctx)
	return st, c.checkAuth(ctx, err)
}

func (c *Console) Portfolio(ctx context.Context) ([]portfolio.Item, error) {
	return c.api.Portfolio(ctx)
}

func (c *Console) AddPortfolioItem(ctx context.Context, it portfolio.Item) (portfolio.Item, error) {
	if err := c.requireAuth(); err != nil {
		return portfolio.Item{}, err
	}
	if err := it.Validate(); err != nil {
		return portfolio.Item{}, err
	}
	created, err := c.api.CreatePortfolioItem(ctx, it)
	return created, c.checkAuth(ctx, err)
}

func (c *Console) DeletePortfolioItem(ctx context.Context, id uint) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.checkAuth(ctx, c.api.DeletePortfolioItem(ctx, id))
}

// Upload stores one file and returns its URL, e.g. for a new logo.
func (c *Console) Upload(ctx context.Context, f storeapi.Attachment) (string, error) {
	if err := c.requireAuth(); err != nil {
		return "", err
	}
	url, err := c.api.Upload(ctx, f)
	return url, c.checkAuth(ctx, err)
}

func (c *Console) requireAuth() error {
	if !c.session.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// checkAuth drops the session when the store rejected the token.
func (c *Console) checkAuth(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, storeapi.ErrUnauthorized) {
		return err
	}
	if c.session.Authenticated() {
		if ierr := c.session.Invalidate(ctx); ierr != nil {
			c.log.Warn("session invalidate failed", "error", ierr)
		}
	}
	return errors.Join(ErrNotAuthenticated, err)
}

func (c *Console) refreshQuietly(ctx context.Context) {
	if err := c.engine.Refresh(ctx); err != nil {
		c.log.Warn("refresh after payment call failed", "error", err)
	}
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
