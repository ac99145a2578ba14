package intake

import (
	"context"
	"log/slog"

	"auraweb-intake/internal/domain/portfolio"
)

// PortfolioSource lists portfolio items. *storeapi.Client satisfies it.
type PortfolioSource interface {
	Portfolio(ctx context.Context) ([]portfolio.Item, error)
}

// Showcase returns the items to show next to the form. An empty or
// unreachable store yields the built-in showcase.
func Showcase(ctx context.Context, src PortfolioSource, log *slog.Logger) []portfolio.Item {
	if log == nil {
		log = slog.Default()
	}
	items, err := src.Portfolio(ctx)
	if err != nil {
		log.Warn("portfolio unavailable, showing built-in showcase", "error", err)
		return portfolio.Showcase()
	}
	return portfolio.OrFallback(items)
}
