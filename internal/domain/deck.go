package domain

import (
	"strings"
	"time"
)

// CardLine is one entry of a deck zone: a quantity and a bare card name.
type CardLine struct {
	Quantity int
	Name     string
}

// Board identifies one of the four generic deck zones.
type Board int

const (
	BoardMain Board = iota
	BoardSide
	BoardMaybe
	BoardCommanders
)

// ParseBoard maps a source-defined zone label onto a generic Board.
// Unknown labels fall back to the main deck.
func ParseBoard(label string) Board {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "commanders", "commander":
		return BoardCommanders
	case "maybe", "maybeboard":
		return BoardMaybe
	case "side", "sideboard":
		return BoardSide
	default:
		return BoardMain
	}
}

// Deck is a decklist downloaded from a source, normalized to four zones.
// A card name appears in at most one zone; zone assignment is decided by
// the source adapter.
type Deck struct {
	Source      string // source short code
	ID          string
	Name        string
	Description string

	Main       []CardLine
	Side       []CardLine
	Maybe      []CardLine
	Commanders []CardLine
}

// AddCard appends a line to the given zone.
func (d *Deck) AddCard(board Board, line CardLine) {
	switch board {
	case BoardCommanders:
		d.Commanders = append(d.Commanders, line)
	case BoardMaybe:
		d.Maybe = append(d.Maybe, line)
	case BoardSide:
		d.Side = append(d.Side, line)
	default:
		d.Main = append(d.Main, line)
	}
}

// MainDeck returns the main zone, optionally with commanders appended.
func (d *Deck) MainDeck(includeCommanders bool) []CardLine {
	if !includeCommanders {
		return d.Main
	}
	out := make([]CardLine, 0, len(d.Main)+len(d.Commanders))
	out = append(out, d.Main...)
	out = append(out, d.Commanders...)
	return out
}

// Sideboard returns the side zone with commanders and, when requested,
// the maybeboard appended. Zones are concatenated, never deduplicated.
func (d *Deck) Sideboard(includeCommanders, includeMaybe bool) []CardLine {
	out := make([]CardLine, 0, len(d.Side)+len(d.Commanders)+len(d.Maybe))
	out = append(out, d.Side...)
	if includeCommanders {
		out = append(out, d.Commanders...)
	}
	if includeMaybe {
		out = append(out, d.Maybe...)
	}
	return out
}

// AllCardNames returns the set of distinct card names across all zones.
func (d *Deck) AllCardNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, zone := range [][]CardLine{d.Main, d.Side, d.Maybe, d.Commanders} {
		for _, line := range zone {
			if _, ok := seen[line.Name]; ok {
				continue
			}
			seen[line.Name] = struct{}{}
			names = append(names, line.Name)
		}
	}
	return names
}

// DeckUpdate is a lightweight listing entry: the last time a deck changed
// at its source. Updates are never persisted standalone; they exist only
// to be compared against tracked files.
type DeckUpdate struct {
	Source    string
	DeckID    string
	UpdatedAt time.Time
}

// Latest returns the most recently updated entry, or false for an empty
// listing. Among equal timestamps the first wins.
func Latest(updates []DeckUpdate) (DeckUpdate, bool) {
	if len(updates) == 0 {
		return DeckUpdate{}, false
	}
	latest := updates[0]
	for _, u := range updates[1:] {
		if u.UpdatedAt.After(latest.UpdatedAt) {
			latest = u
		}
	}
	return latest, true
}

// FrontFaceName strips the back-face part of a "Front // Back" card name.
func FrontFaceName(name string) string {
	front, _, found := strings.Cut(name, "//")
	if !found {
		return name
	}
	return strings.TrimSpace(front)
}
