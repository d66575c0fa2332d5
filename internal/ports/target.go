package ports

import "decksync/internal/domain"

// DeckWrite pairs a deck with the file path it should be serialized to.
type DeckWrite struct {
	Deck *domain.Deck
	Path string
}

// Target is one local MtG client's file format.
type Target interface {
	// Name is the display name, Short the one-letter registry code.
	Name() string
	Short() string

	// FileExtension returns the deck file extension, dot included.
	FileExtension() string

	// SuggestDirectory returns a best-effort default deck directory for
	// this client on the current OS. The path may not exist.
	SuggestDirectory() string

	// CreateFileName derives a filesystem-safe file name (extension
	// included) from a deck name. Uniqueness within a directory is the
	// caller's concern.
	CreateFileName(deckName string) string

	// NeedsCatalogID reports whether this format cannot reference a card
	// without its catalog identifier.
	NeedsCatalogID() bool

	// SaveDeck serializes one deck to path. Unresolved cards (absent from
	// cards) are written as-is or skipped, depending on the format.
	SaveDeck(deck *domain.Deck, path string, includeMaybe bool, cards domain.CardMap) error

	// SaveDecks serializes a batch sharing one resolved card map.
	SaveDecks(writes []DeckWrite, includeMaybe bool, cards domain.CardMap) error
}
