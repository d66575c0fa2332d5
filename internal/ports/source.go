package ports

import (
	"context"

	"decksync/internal/domain"
)

// Source is one remote deck-hosting service. Implementations own all
// site-specific network and parsing details; the sync engine sees only
// the generic Deck shape.
type Source interface {
	// Name is the display name, Short the one-letter registry code.
	Name() string
	Short() string

	// ListDecks returns an update entry for every public deck of user.
	// Implementations must fully paginate before returning.
	ListDecks(ctx context.Context, user string) ([]domain.DeckUpdate, error)

	// FetchDeck downloads the full deck body, mapping site-specific
	// sideboard and category conventions into the four generic zones.
	FetchDeck(ctx context.Context, deckID string) (*domain.Deck, error)

	// VerifyUser reports whether user has any public decks on this site.
	VerifyUser(ctx context.Context, user string) (bool, error)
}
