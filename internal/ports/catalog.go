package ports

import (
	"context"

	"decksync/internal/domain"
)

// CardResolver resolves bare card names to canonical identity records.
type CardResolver interface {
	// Resolve looks a card up by exact name, falling back to a prefix
	// match. needCatalogID biases the tie-break toward printings that
	// carry a catalog identifier. Returns catalog.ErrNotFound on a miss.
	Resolve(ctx context.Context, name string, needCatalogID bool) (*domain.Card, error)

	// ResolveMany resolves a set of names into a CardMap. Unresolved
	// names map to nil; the whole batch triggers at most the same
	// dataset-refresh throttling as a single lookup.
	ResolveMany(ctx context.Context, names []string, needCatalogID bool) (domain.CardMap, error)
}
