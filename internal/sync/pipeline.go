package sync

import (
	"context"
	gosync "sync"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

// FetchResult is the per-deck outcome of a batch fetch. A failed fetch
// carries its error here instead of aborting the batch.
type FetchResult struct {
	DeckID string
	Deck   *domain.Deck
	Err    error
}

// fetchDecks downloads a batch of decks with a bounded worker pool and
// blocks until every fetch has produced a result or failed. Result order
// is unspecified.
func fetchDecks(ctx context.Context, source ports.Source, deckIDs []string, workers int) []FetchResult {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan FetchResult, len(deckIDs))

	var wg gosync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				deck, err := source.FetchDeck(ctx, id)
				results <- FetchResult{DeckID: id, Deck: deck, Err: err}
			}
		}()
	}

	go func() {
		for _, id := range deckIDs {
			jobs <- id
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	out := make([]FetchResult, 0, len(deckIDs))
	for r := range results {
		out = append(out, r)
	}
	return out
}
