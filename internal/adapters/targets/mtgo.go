package targets

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/beevik/etree"

	"decksync/internal/config"
	"decksync/internal/domain"
	"decksync/internal/ports"
)

// MTGO writes .dek deck files for Magic Online.
type MTGO struct{}

var _ ports.Target = (*MTGO)(nil)

// NewMTGO returns the MTGO target adapter.
func NewMTGO() *MTGO { return &MTGO{} }

func (m *MTGO) Name() string          { return "MTGO" }
func (m *MTGO) Short() string         { return "O" }
func (m *MTGO) FileExtension() string { return ".dek" }

// NeedsCatalogID is true: the client identifies cards by catalog number,
// names are cosmetic.
func (m *MTGO) NeedsCatalogID() bool { return true }

func (m *MTGO) CreateFileName(deckName string) string {
	return deckFileName(deckName, m.FileExtension())
}

// SuggestDirectory probes the known client install locations and falls
// back to the user's documents deck folder.
func (m *MTGO) SuggestDirectory() string {
	if runtime.GOOS == "windows" {
		return firstExisting([]string{
			filepath.Join(appData(), "Wizards of the Coast", "Magic Online", "3.0", "Decks"),
			filepath.Join("C:", "Program Files", "Wizards of the Coast", "Magic Online", "Decks"),
			config.ExpandPath("~/Documents/Decks"),
		})
	}
	return config.ExpandPath("~/Documents/Decks")
}

// SaveDeck serializes one deck. Cards whose catalog number is unknown
// cannot be referenced at all and are skipped with a warning.
func (m *MTGO) SaveDeck(deck *domain.Deck, path string, includeMaybe bool, cards domain.CardMap) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Deck")
	root.CreateElement("NetDeckID").SetText("0")
	root.CreateElement("PreconstructedDeckID").SetText("0")

	for _, line := range deck.MainDeck(false) {
		addMTGOCard(root, line, cards, false)
	}
	for _, line := range deck.Sideboard(true, includeMaybe) {
		addMTGOCard(root, line, cards, true)
	}

	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("writing mtgo deck %s: %w", path, err)
	}
	return nil
}

// SaveDecks serializes a batch sharing one resolved card map.
func (m *MTGO) SaveDecks(writes []ports.DeckWrite, includeMaybe bool, cards domain.CardMap) error {
	return saveAll(m, writes, includeMaybe, cards)
}

func addMTGOCard(root *etree.Element, line domain.CardLine, cards domain.CardMap, sideboard bool) {
	card := cards[line.Name]
	if card == nil || card.CatalogID == "" {
		log.Warn().Str("card", line.Name).
			Msg("no MTGO catalog number known, leaving card out of deck file")
		return
	}
	el := root.CreateElement("Cards")
	el.CreateAttr("CatID", card.CatalogID)
	el.CreateAttr("Quantity", strconv.Itoa(line.Quantity))
	el.CreateAttr("Sideboard", strconv.FormatBool(sideboard))
	el.CreateAttr("Name", domain.FrontFaceName(line.Name))
	el.CreateAttr("Annotation", "0")
}
