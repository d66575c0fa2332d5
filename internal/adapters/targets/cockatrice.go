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

// Cockatrice writes .cod deck files for the Cockatrice client.
type Cockatrice struct{}

var _ ports.Target = (*Cockatrice)(nil)

// NewCockatrice returns the Cockatrice target adapter.
func NewCockatrice() *Cockatrice { return &Cockatrice{} }

func (c *Cockatrice) Name() string          { return "Cockatrice" }
func (c *Cockatrice) Short() string         { return "C" }
func (c *Cockatrice) FileExtension() string { return ".cod" }
func (c *Cockatrice) NeedsCatalogID() bool  { return false }

func (c *Cockatrice) CreateFileName(deckName string) string {
	return deckFileName(deckName, c.FileExtension())
}

// SuggestDirectory returns the client's default deck directory.
func (c *Cockatrice) SuggestDirectory() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(localAppData(), "Cockatrice", "Cockatrice", "decks")
	}
	return config.ExpandPath("~/.local/share/Cockatrice/Cockatrice/decks")
}

// SaveDeck serializes one deck. Cockatrice registers each face of a
// double-faced card as its own card, so resolved DFCs are written under
// the front face name; unresolved cards are written as-is.
func (c *Cockatrice) SaveDeck(deck *domain.Deck, path string, includeMaybe bool, cards domain.CardMap) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("cockatrice_deck")
	root.CreateAttr("version", "1")
	root.CreateElement("deckname").SetText(deck.Name)
	root.CreateElement("comments").SetText(deck.Description)

	main := root.CreateElement("zone")
	main.CreateAttr("name", "main")
	for _, line := range deck.MainDeck(false) {
		addCockatriceCard(main, line, cards)
	}

	side := root.CreateElement("zone")
	side.CreateAttr("name", "side")
	for _, line := range deck.Sideboard(true, includeMaybe) {
		addCockatriceCard(side, line, cards)
	}

	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("writing cockatrice deck %s: %w", path, err)
	}
	return nil
}

// SaveDecks serializes a batch sharing one resolved card map.
func (c *Cockatrice) SaveDecks(writes []ports.DeckWrite, includeMaybe bool, cards domain.CardMap) error {
	return saveAll(c, writes, includeMaybe, cards)
}

func addCockatriceCard(zone *etree.Element, line domain.CardLine, cards domain.CardMap) {
	name := line.Name
	if card := cards[line.Name]; card != nil && card.DoubleFaced {
		name = card.FrontFace()
	}
	el := zone.CreateElement("card")
	el.CreateAttr("number", strconv.Itoa(line.Quantity))
	el.CreateAttr("name", name)
}
