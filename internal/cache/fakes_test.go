package cache

import (
	"context"
	"os"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

type fakeSource struct {
	name  string
	short string
}

func (f *fakeSource) Name() string  { return f.name }
func (f *fakeSource) Short() string { return f.short }

func (f *fakeSource) ListDecks(context.Context, string) ([]domain.DeckUpdate, error) {
	return nil, nil
}

func (f *fakeSource) FetchDeck(context.Context, string) (*domain.Deck, error) {
	return nil, nil
}

func (f *fakeSource) VerifyUser(context.Context, string) (bool, error) {
	return true, nil
}

var _ ports.Source = (*fakeSource)(nil)

type fakeTarget struct {
	name  string
	short string
}

func (f *fakeTarget) Name() string             { return f.name }
func (f *fakeTarget) Short() string            { return f.short }
func (f *fakeTarget) FileExtension() string    { return ".txt" }
func (f *fakeTarget) SuggestDirectory() string { return "" }
func (f *fakeTarget) NeedsCatalogID() bool     { return false }

func (f *fakeTarget) CreateFileName(deckName string) string {
	return domain.SanitizeFileName(deckName) + f.FileExtension()
}

func (f *fakeTarget) SaveDeck(deck *domain.Deck, path string, includeMaybe bool, cards domain.CardMap) error {
	return os.WriteFile(path, []byte(deck.Name), 0o644)
}

func (f *fakeTarget) SaveDecks(writes []ports.DeckWrite, includeMaybe bool, cards domain.CardMap) error {
	for _, w := range writes {
		if err := f.SaveDeck(w.Deck, w.Path, includeMaybe, cards); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.Target = (*fakeTarget)(nil)
