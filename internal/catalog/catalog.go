// Package catalog resolves card names to canonical identity records
// backed by a periodically refreshed external bulk dataset.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"decksync/internal/domain"
	"decksync/internal/logging"
	"decksync/internal/ports"
)

// ErrNotFound reports a card name that could not be resolved even after
// an eligible dataset refresh.
var ErrNotFound = errors.New("card not found")

// RefreshInterval bounds how often the bulk dataset may be re-downloaded.
// The upstream dataset is regenerated daily, so refreshing more often
// only costs bandwidth.
const RefreshInterval = 24 * time.Hour

// Store is the persistent card table the catalog reads and refreshes.
type Store interface {
	// CardsByName returns all printings matching name exactly.
	CardsByName(name string) ([]domain.Card, error)
	// CardsByPrefix returns printings whose name starts with prefix.
	CardsByPrefix(prefix string) ([]domain.Card, error)
	// ReplaceCards bulk-merges a freshly downloaded dataset.
	ReplaceCards(cards []domain.Card) error
	// RefreshMark returns the time and dataset version of the last
	// refresh; the zero time when none has happened.
	RefreshMark() (time.Time, string, error)
	// SetRefreshMark records a refresh attempt.
	SetRefreshMark(at time.Time, version string) error
}

// BulkClient downloads the external card dataset.
type BulkClient interface {
	// Manifest returns the current dataset version marker (download URI)
	// and its compressed size in bytes.
	Manifest(ctx context.Context) (version string, size int64, err error)
	// Download fetches and decodes the dataset, already filtered to
	// playable layouts.
	Download(ctx context.Context, version string) ([]domain.Card, error)
}

// Catalog implements ports.CardResolver on top of a Store and a
// BulkClient. The refresh is a mutex-guarded single flight: the first
// caller to miss within the interval performs it, concurrent callers
// wait for completion instead of triggering duplicate downloads.
type Catalog struct {
	store Store
	bulk  BulkClient
	now   func() time.Time

	refreshMu sync.Mutex

	memoMu sync.Mutex
	memo   map[string]*domain.Card // nil value records a known miss
}

var _ ports.CardResolver = (*Catalog)(nil)

var log = logging.Component("catalog")

// New creates a catalog over the given store and bulk dataset client.
func New(store Store, bulk BulkClient) *Catalog {
	return &Catalog{
		store: store,
		bulk:  bulk,
		now:   time.Now,
		memo:  make(map[string]*domain.Card),
	}
}

// Resolve looks name up by exact match, then by prefix; on a total miss
// it refreshes the dataset at most once per RefreshInterval and retries
// exactly once.
func (c *Catalog) Resolve(ctx context.Context, name string, needCatalogID bool) (*domain.Card, error) {
	return c.resolve(ctx, name, needCatalogID, true)
}

// ResolveMany resolves a set of names into a CardMap. Unresolved names
// map to nil rather than failing the batch.
func (c *Catalog) ResolveMany(ctx context.Context, names []string, needCatalogID bool) (domain.CardMap, error) {
	cards := make(domain.CardMap, len(names))
	for _, name := range names {
		card, err := c.resolve(ctx, name, needCatalogID, true)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				cards[name] = nil
				continue
			}
			return nil, err
		}
		cards[name] = card
	}
	return cards, nil
}

func (c *Catalog) resolve(ctx context.Context, name string, needCatalogID bool, mayRefresh bool) (*domain.Card, error) {
	memoKey := fmt.Sprintf("%s\x00%t", name, needCatalogID)
	if card, ok := c.memoLoad(memoKey); ok {
		if card == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return card, nil
	}

	card, err := c.lookup(name, needCatalogID)
	if err != nil {
		return nil, err
	}
	if card != nil {
		c.memoStore(memoKey, card)
		return card, nil
	}

	if mayRefresh {
		refreshed, err := c.maybeRefresh(ctx)
		if err != nil {
			return nil, err
		}
		if refreshed {
			return c.resolve(ctx, name, needCatalogID, false)
		}
	}

	log.Debug().Str("card", name).Msg("no suitable card record found")
	c.memoStore(memoKey, nil)
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// lookup queries the store and applies the tie-break: prefer an original
// printing, and when a catalog id is required prefer printings that
// carry one. Returns nil without error on a miss.
func (c *Catalog) lookup(name string, needCatalogID bool) (*domain.Card, error) {
	matches, err := c.store.CardsByName(name)
	if err != nil {
		return nil, fmt.Errorf("card lookup: %w", err)
	}
	if len(matches) == 0 {
		// Sources and targets disagree on naming details such as split
		// card separators; a prefix match bridges the drift.
		matches, err = c.store.CardsByPrefix(name)
		if err != nil {
			return nil, fmt.Errorf("card prefix lookup: %w", err)
		}
	}

	for i := range matches {
		m := &matches[i]
		if !m.Reprint && (m.CatalogID != "" || !needCatalogID) {
			return m, nil
		}
	}
	for i := range matches {
		m := &matches[i]
		if m.CatalogID != "" || !needCatalogID {
			return m, nil
		}
	}
	return nil, nil
}

// maybeRefresh performs the throttled bulk refresh. Reports whether a
// refresh ran, so callers know a retry is worthwhile.
func (c *Catalog) maybeRefresh(ctx context.Context) (bool, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	last, lastVersion, err := c.store.RefreshMark()
	if err != nil {
		return false, fmt.Errorf("reading refresh mark: %w", err)
	}
	if c.now().Sub(last) < RefreshInterval {
		return false, nil
	}

	version, size, err := c.bulk.Manifest(ctx)
	if err != nil {
		return false, fmt.Errorf("fetching dataset manifest: %w", err)
	}
	if err := c.store.SetRefreshMark(c.now(), version); err != nil {
		return false, fmt.Errorf("recording refresh mark: %w", err)
	}
	if version == lastVersion {
		log.Info().Msg("latest card dataset already downloaded")
		// The lookup tables are already current; a retry would find
		// nothing new.
		return false, nil
	}

	log.Info().Int64("bytes", size).
		Msg("downloading card dataset, this may take a couple of minutes")
	cards, err := c.bulk.Download(ctx, version)
	if err != nil {
		return false, fmt.Errorf("downloading card dataset: %w", err)
	}
	if err := c.store.ReplaceCards(cards); err != nil {
		return false, fmt.Errorf("storing card dataset: %w", err)
	}

	c.clearMisses()

	log.Info().Int("cards", len(cards)).Msg("card dataset update complete")
	return true, nil
}

func (c *Catalog) memoLoad(key string) (*domain.Card, bool) {
	c.memoMu.Lock()
	defer c.memoMu.Unlock()
	card, ok := c.memo[key]
	return card, ok
}

func (c *Catalog) memoStore(key string, card *domain.Card) {
	c.memoMu.Lock()
	defer c.memoMu.Unlock()
	c.memo[key] = card
}

// clearMisses drops memoized misses after a refresh; hits stay valid.
func (c *Catalog) clearMisses() {
	c.memoMu.Lock()
	defer c.memoMu.Unlock()
	for key, card := range c.memo {
		if card == nil {
			delete(c.memo, key)
		}
	}
}
