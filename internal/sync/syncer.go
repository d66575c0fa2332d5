// Package sync orchestrates one run of the incremental synchronization:
// list remote deck updates, filter to the stale subset per output, fetch
// the union with bounded concurrency, then write serially.
package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"decksync/internal/cache"
	"decksync/internal/config"
	"decksync/internal/domain"
	"decksync/internal/logging"
	"decksync/internal/ports"
)

// Syncer executes profile synchronization against a card catalog.
type Syncer struct {
	catalog ports.CardResolver
	workers int
	now     func() time.Time
}

var log = logging.Component("sync")

// New creates a Syncer with the default fetch concurrency.
func New(catalog ports.CardResolver) *Syncer {
	return &Syncer{
		catalog: catalog,
		workers: config.FetchWorkers,
		now:     time.Now,
	}
}

// SyncAll synchronizes every profile in the cache. Per-profile failures
// are logged and contained; the run completes its loop regardless.
func (s *Syncer) SyncAll(ctx context.Context, c *cache.Cache, latestOnly bool) {
	for _, profile := range c.Profiles {
		if err := s.SyncProfile(ctx, profile, latestOnly); err != nil {
			log.Error().Err(err).Str("user", profile.UserString()).
				Msg("profile sync failed")
		}
	}
}

// SyncProfile synchronizes one profile. In full mode every stale deck is
// re-downloaded; in latest-only mode just the most recently updated one.
func (s *Syncer) SyncProfile(ctx context.Context, profile *cache.Profile, latestOnly bool) error {
	outputs := s.usableOutputs(profile)
	if len(outputs) == 0 {
		log.Info().Str("user", profile.UserString()).
			Msg("no usable outputs, skipping profile")
		return nil
	}

	updates, err := profile.Source.ListDecks(ctx, profile.User)
	if err != nil {
		return fmt.Errorf("listing decks for %s: %w", profile.UserString(), err)
	}
	log.Info().Int("decks", len(updates)).Str("user", profile.UserString()).
		Msg("fetched deck listing")

	if latestOnly {
		return s.syncLatest(ctx, profile, outputs, updates)
	}
	return s.syncAllDecks(ctx, profile, outputs, updates)
}

// syncAllDecks is the full-sync path: fetch the union of stale deck IDs
// exactly once, then write each deck to every output that judged it
// stale.
func (s *Syncer) syncAllDecks(ctx context.Context, profile *cache.Profile, outputs []*cache.Output, updates []domain.DeckUpdate) error {
	staleByOutput := make(map[*cache.Output]map[string]bool, len(outputs))
	var union []string
	inUnion := make(map[string]bool)

	for _, out := range outputs {
		stale := make(map[string]bool)
		for _, id := range out.DecksToUpdate(updates) {
			stale[id] = true
			if !inUnion[id] {
				inUnion[id] = true
				union = append(union, id)
			}
		}
		staleByOutput[out] = stale
	}

	if len(union) == 0 {
		log.Info().Str("user", profile.UserString()).Msg("all decks up to date")
		return nil
	}

	log.Info().Int("decks", len(union)).Str("user", profile.UserString()).
		Msg("downloading stale decks")

	var decks []*domain.Deck
	for _, res := range fetchDecks(ctx, profile.Source, union, s.workers) {
		if res.Err != nil {
			// One failed download must not sink its siblings; the deck
			// simply stays stale until the next run.
			log.Error().Err(res.Err).Str("deck", res.DeckID).
				Msg("deck download failed")
			continue
		}
		log.Debug().Str("deck", res.DeckID).Str("name", res.Deck.Name).
			Msg("downloaded deck")
		decks = append(decks, res.Deck)
	}

	s.writeDecks(ctx, decks, outputs, staleByOutput)

	log.Info().Str("user", profile.UserString()).Msg("profile sync complete")
	return nil
}

// syncLatest fetches only the single most recently updated deck, and
// only when some output considers it stale.
func (s *Syncer) syncLatest(ctx context.Context, profile *cache.Profile, outputs []*cache.Output, updates []domain.DeckUpdate) error {
	latest, ok := domain.Latest(updates)
	if !ok {
		log.Info().Str("user", profile.UserString()).Msg("no decks found")
		return nil
	}

	stale := make(map[string]bool, 1)
	for _, out := range outputs {
		if out.NeedsUpdate(latest) {
			stale[latest.DeckID] = true
			break
		}
	}
	if len(stale) == 0 {
		log.Info().Str("user", profile.UserString()).
			Msg("latest deck is up to date")
		return nil
	}

	deck, err := profile.Source.FetchDeck(ctx, latest.DeckID)
	if err != nil {
		return fmt.Errorf("downloading deck %s: %w", latest.DeckID, err)
	}

	staleByOutput := make(map[*cache.Output]map[string]bool, len(outputs))
	for _, out := range outputs {
		if out.NeedsUpdate(latest) {
			staleByOutput[out] = stale
		} else {
			staleByOutput[out] = nil
		}
	}
	s.writeDecks(ctx, []*domain.Deck{deck}, outputs, staleByOutput)
	return nil
}

// writeDecks is the serial write phase, entered only after the whole
// fetch batch has completed. Card maps are resolved once per target per
// batch so a catalog refresh is observed by every write in the batch,
// and file-name disambiguation cannot race.
func (s *Syncer) writeDecks(ctx context.Context, decks []*domain.Deck, outputs []*cache.Output, staleByOutput map[*cache.Output]map[string]bool) {
	if len(decks) == 0 {
		return
	}

	cardsByTarget := make(map[string]domain.CardMap)

	for _, out := range outputs {
		stale := staleByOutput[out]
		if len(stale) == 0 {
			continue
		}

		cards, err := s.cardsFor(ctx, out.Target, decks, cardsByTarget)
		if err != nil {
			log.Error().Err(err).Str("target", out.Target.Name()).
				Msg("card resolution failed, skipping output")
			continue
		}

		for _, deck := range decks {
			if !stale[deck.ID] {
				continue
			}
			tf := out.Dir.TrackedFile(out.Target, deck)
			path := filepath.Join(out.Dir.Path, tf.FileName)
			if err := out.Target.SaveDeck(deck, path, out.IncludeMaybe, cards); err != nil {
				log.Error().Err(err).Str("deck", deck.Name).Str("path", path).
					Msg("deck write failed")
				continue
			}
			out.Dir.RecordWrite(tf, s.now())
			log.Debug().Str("deck", deck.Name).Str("path", path).Msg("wrote deck")
		}
	}
}

// cardsFor resolves the card map for a target, memoized per target short
// code for the duration of the batch.
func (s *Syncer) cardsFor(ctx context.Context, target ports.Target, decks []*domain.Deck, memo map[string]domain.CardMap) (domain.CardMap, error) {
	if cards, ok := memo[target.Short()]; ok {
		return cards, nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, deck := range decks {
		for _, name := range deck.AllCardNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	cards, err := s.catalog.ResolveMany(ctx, names, target.NeedsCatalogID())
	if err != nil {
		return nil, err
	}
	memo[target.Short()] = cards
	return cards, nil
}

// usableOutputs filters outputs whose directory can be written to. A
// path occupied by a regular file excludes that output for this run
// only; other outputs proceed.
func (s *Syncer) usableOutputs(profile *cache.Profile) []*cache.Output {
	var usable []*cache.Output
	for _, out := range profile.Outputs {
		if err := out.Dir.Ensure(); err != nil {
			if errors.Is(err, cache.ErrNotDirectory) {
				log.Error().Str("path", out.Dir.Path).
					Msg("output path exists but is a file, skipping output")
			} else {
				log.Error().Err(err).Str("path", out.Dir.Path).
					Msg("cannot prepare output directory, skipping output")
			}
			continue
		}
		usable = append(usable, out)
	}
	return usable
}
