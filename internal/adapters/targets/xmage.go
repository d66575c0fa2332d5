package targets

import (
	"fmt"
	"os"
	"strings"

	"decksync/internal/config"
	"decksync/internal/domain"
	"decksync/internal/ports"
)

// XMage writes .dck deck files for the XMage client. The format is
// line-oriented:
//
//	QTY [SET:COLLECTOR_NUMBER] CARD_NAME
//	SB: QTY [SET:COLLECTOR_NUMBER] CARD_NAME
//
// The optional LAYOUT trailer lines are omitted; the client regenerates
// them on load.
type XMage struct{}

var _ ports.Target = (*XMage)(nil)

// NewXMage returns the XMage target adapter.
func NewXMage() *XMage { return &XMage{} }

func (x *XMage) Name() string          { return "XMage" }
func (x *XMage) Short() string         { return "X" }
func (x *XMage) FileExtension() string { return ".dck" }

// NeedsCatalogID is false: the format references printings by set and
// collector number, which every stored card carries.
func (x *XMage) NeedsCatalogID() bool { return false }

func (x *XMage) CreateFileName(deckName string) string {
	return deckFileName(deckName, x.FileExtension())
}

// SuggestDirectory points into the default client install.
func (x *XMage) SuggestDirectory() string {
	return config.ExpandPath("~/xmage/mage-client/decks")
}

// SaveDeck serializes one deck. Cards without a resolved printing cannot
// be expressed in this format and are skipped with a warning.
func (x *XMage) SaveDeck(deck *domain.Deck, path string, includeMaybe bool, cards domain.CardMap) error {
	var b strings.Builder
	for _, line := range deck.MainDeck(false) {
		writeXMageLine(&b, "", line, cards)
	}
	for _, line := range deck.Sideboard(true, includeMaybe) {
		writeXMageLine(&b, "SB: ", line, cards)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing xmage deck %s: %w", path, err)
	}
	return nil
}

// SaveDecks serializes a batch sharing one resolved card map.
func (x *XMage) SaveDecks(writes []ports.DeckWrite, includeMaybe bool, cards domain.CardMap) error {
	return saveAll(x, writes, includeMaybe, cards)
}

func writeXMageLine(b *strings.Builder, prefix string, line domain.CardLine, cards domain.CardMap) {
	card := cards[line.Name]
	if card == nil {
		log.Warn().Str("card", line.Name).
			Msg("no printing known, leaving card out of deck file")
		return
	}
	fmt.Fprintf(b, "%s%d [%s:%s] %s\n",
		prefix, line.Quantity, card.Edition, card.CollectorNumber,
		domain.FrontFaceName(line.Name))
}
