package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"decksync/internal/cache"
	"decksync/internal/domain"
	"decksync/internal/ports"
)

type fakeSource struct{ short string }

func (f *fakeSource) Name() string  { return "Fake Source" }
func (f *fakeSource) Short() string { return f.short }

func (f *fakeSource) ListDecks(context.Context, string) ([]domain.DeckUpdate, error) {
	return nil, nil
}
func (f *fakeSource) FetchDeck(context.Context, string) (*domain.Deck, error) { return nil, nil }
func (f *fakeSource) VerifyUser(context.Context, string) (bool, error)        { return true, nil }

type fakeTarget struct{ short string }

func (f *fakeTarget) Name() string             { return "Fake Target" }
func (f *fakeTarget) Short() string            { return f.short }
func (f *fakeTarget) FileExtension() string    { return ".txt" }
func (f *fakeTarget) SuggestDirectory() string { return "" }
func (f *fakeTarget) NeedsCatalogID() bool     { return false }

func (f *fakeTarget) CreateFileName(deckName string) string {
	return domain.SanitizeFileName(deckName) + f.FileExtension()
}

func (f *fakeTarget) SaveDeck(*domain.Deck, string, bool, domain.CardMap) error { return nil }
func (f *fakeTarget) SaveDecks([]ports.DeckWrite, bool, domain.CardMap) error   { return nil }

func lookups() (func(string) (ports.Source, bool), func(string) (ports.Target, bool)) {
	source := func(short string) (ports.Source, bool) {
		if short == "F" {
			return &fakeSource{short: "F"}, true
		}
		return nil, false
	}
	target := func(short string) (ports.Target, bool) {
		if short == "T" {
			return &fakeTarget{short: "T"}, true
		}
		return nil, false
	}
	return source, target
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decksync.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	store, _ := openTestStore(t)
	source := &fakeSource{short: "F"}
	target := &fakeTarget{short: "T"}
	dirPath := filepath.Join(t.TempDir(), "decks")

	c := cache.New()
	profile := c.BuildProfile(source, "alice", "burn decks")
	out := c.AddOutput(profile, target, dirPath, true)

	tf := out.Dir.TrackedFile(target, &domain.Deck{Source: "F", ID: "42", Name: "Burn"})
	out.Dir.RecordWrite(tf, time.Unix(5000, 0))

	if err := store.Save(c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if profile.ID == 0 || out.ID == 0 || out.Dir.ID == 0 || tf.ID == 0 {
		t.Fatal("expected row ids assigned on save")
	}

	sourceLookup, targetLookup := lookups()
	loaded, err := store.Load(sourceLookup, targetLookup)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(loaded.Profiles))
	}
	p := loaded.Profiles[0]
	if p.User != "alice" || p.Name != "burn decks" || p.Source.Short() != "F" {
		t.Errorf("profile did not survive the roundtrip: %+v", p)
	}
	if len(p.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(p.Outputs))
	}
	o := p.Outputs[0]
	if o.Target.Short() != "T" || !o.IncludeMaybe || o.Dir.Path != dirPath {
		t.Errorf("output did not survive the roundtrip: %+v", o)
	}

	files := o.Dir.Files()
	if len(files) != 1 {
		t.Fatalf("expected 1 tracked file, got %d", len(files))
	}
	for key, loadedTF := range files {
		if key.Target != "T" || key.Source != "F" || key.DeckID != "42" {
			t.Errorf("unexpected file key %+v", key)
		}
		if loadedTF.FileName != "burn.txt" {
			t.Errorf("expected burn.txt, got %s", loadedTF.FileName)
		}
		if !loadedTF.WrittenAt.Equal(time.Unix(5000, 0)) {
			t.Errorf("expected written_at 5000, got %v", loadedTF.WrittenAt)
		}
	}
}

func TestSave_Twice(t *testing.T) {
	store, _ := openTestStore(t)
	source := &fakeSource{short: "F"}
	target := &fakeTarget{short: "T"}

	c := cache.New()
	profile := c.BuildProfile(source, "alice", "")
	c.AddOutput(profile, target, filepath.Join(t.TempDir(), "decks"), false)

	if err := store.Save(c); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	firstID := profile.ID
	if err := store.Save(c); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if profile.ID != firstID {
		t.Error("expected a stable row id across saves")
	}

	sourceLookup, targetLookup := lookups()
	loaded, err := store.Load(sourceLookup, targetLookup)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Profiles) != 1 || len(loaded.Profiles[0].Outputs) != 1 {
		t.Error("expected no duplicate rows from repeated saves")
	}
}

func TestSave_RemovedProfileDeleted(t *testing.T) {
	store, _ := openTestStore(t)
	source := &fakeSource{short: "F"}
	target := &fakeTarget{short: "T"}

	c := cache.New()
	profile := c.BuildProfile(source, "alice", "")
	c.AddOutput(profile, target, filepath.Join(t.TempDir(), "decks"), false)
	if err := store.Save(c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	c.RemoveProfile(profile)
	if err := store.Save(c); err != nil {
		t.Fatalf("Save after removal failed: %v", err)
	}

	sourceLookup, targetLookup := lookups()
	loaded, err := store.Load(sourceLookup, targetLookup)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Profiles) != 0 {
		t.Errorf("expected no profiles after removal, got %d", len(loaded.Profiles))
	}
}

func TestLoad_UnknownSourceSkipped(t *testing.T) {
	store, _ := openTestStore(t)

	c := cache.New()
	profile := c.BuildProfile(&fakeSource{short: "Z"}, "alice", "")
	c.AddOutput(profile, &fakeTarget{short: "T"}, filepath.Join(t.TempDir(), "decks"), false)
	if err := store.Save(c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sourceLookup, targetLookup := lookups()
	loaded, err := store.Load(sourceLookup, targetLookup)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Profiles) != 0 {
		t.Error("expected a profile on an unregistered source to be skipped")
	}
}

func TestOpen_CorruptFileRecreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decksync.db")
	if err := os.WriteFile(path, []byte("this is not a database"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed on corrupt file: %v", err)
	}
	defer store.Close()

	sourceLookup, targetLookup := lookups()
	loaded, err := store.Load(sourceLookup, targetLookup)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Profiles) != 0 || len(loaded.Dirs) != 0 {
		t.Error("expected an empty cache from a recreated database")
	}
}

func TestCards_ReplaceAndQuery(t *testing.T) {
	store, _ := openTestStore(t)

	cards := []domain.Card{
		{Name: "Lightning Bolt", Edition: "lea", CollectorNumber: "161"},
		{Name: "Lightning Bolt", Edition: "m11", CollectorNumber: "146", Reprint: true},
		{Name: "Lightning Helix", Edition: "rav", CollectorNumber: "213"},
	}
	if err := store.ReplaceCards(cards); err != nil {
		t.Fatalf("ReplaceCards failed: %v", err)
	}

	byName, err := store.CardsByName("lightning bolt")
	if err != nil {
		t.Fatalf("CardsByName failed: %v", err)
	}
	if len(byName) != 2 {
		t.Errorf("expected 2 printings ignoring case, got %d", len(byName))
	}

	byPrefix, err := store.CardsByPrefix("Lightning")
	if err != nil {
		t.Fatalf("CardsByPrefix failed: %v", err)
	}
	if len(byPrefix) != 3 {
		t.Errorf("expected 3 prefix matches, got %d", len(byPrefix))
	}

	// Re-merging must update in place, not duplicate.
	if err := store.ReplaceCards(cards); err != nil {
		t.Fatalf("second ReplaceCards failed: %v", err)
	}
	byName, err = store.CardsByName("Lightning Bolt")
	if err != nil {
		t.Fatalf("CardsByName failed: %v", err)
	}
	if len(byName) != 2 {
		t.Errorf("expected no duplicates after re-merge, got %d", len(byName))
	}
}

func TestRefreshMark_Roundtrip(t *testing.T) {
	store, _ := openTestStore(t)

	at, version, err := store.RefreshMark()
	if err != nil {
		t.Fatalf("RefreshMark failed: %v", err)
	}
	if !at.IsZero() || version != "" {
		t.Errorf("expected an empty mark initially, got %v %q", at, version)
	}

	want := time.Unix(7000, 0)
	if err := store.SetRefreshMark(want, "https://bulk/v3"); err != nil {
		t.Fatalf("SetRefreshMark failed: %v", err)
	}
	at, version, err = store.RefreshMark()
	if err != nil {
		t.Fatalf("RefreshMark failed: %v", err)
	}
	if !at.Equal(want) || version != "https://bulk/v3" {
		t.Errorf("expected mark 7000/https://bulk/v3, got %v %q", at, version)
	}
}
