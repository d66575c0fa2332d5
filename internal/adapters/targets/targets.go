// Package targets implements the deck file formats of local MtG clients.
package targets

import (
	"os"
	"strings"

	"decksync/internal/domain"
	"decksync/internal/logging"
	"decksync/internal/ports"
)

var log = logging.Component("targets")

// All returns every supported target, in registry order.
func All() []ports.Target {
	return []ports.Target{
		NewCockatrice(),
		NewMTGO(),
		NewXMage(),
	}
}

// Get resolves a target by display name or short code, ignoring case.
func Get(name string) (ports.Target, bool) {
	for _, t := range All() {
		if strings.EqualFold(t.Name(), name) || strings.EqualFold(t.Short(), name) {
			return t, true
		}
	}
	return nil, false
}

// saveAll serializes a batch one file at a time, stopping at the first
// failure.
func saveAll(t ports.Target, writes []ports.DeckWrite, includeMaybe bool, cards domain.CardMap) error {
	for _, w := range writes {
		if err := t.SaveDeck(w.Deck, w.Path, includeMaybe, cards); err != nil {
			return err
		}
	}
	return nil
}

// deckFileName sanitizes a deck name and appends the extension.
func deckFileName(deckName, extension string) string {
	return domain.SanitizeFileName(deckName) + extension
}

// firstExisting returns the first path that exists on disk, or the last
// candidate when none do.
func firstExisting(paths []string) string {
	for _, p := range paths {
		if pathExists(p) {
			return p
		}
	}
	return paths[len(paths)-1]
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func localAppData() string { return os.Getenv("LOCALAPPDATA") }

func appData() string { return os.Getenv("APPDATA") }
