// Package sources implements the deck-hosting site adapters.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"decksync/internal/logging"
	"decksync/internal/ports"
)

// Every site request shares one client. A hung site should fail the
// affected decks, not stall the whole run.
var httpClient = &http.Client{Timeout: 30 * time.Second}

var log = logging.Component("sources")

// All returns every supported source, in registry order.
func All() []ports.Source {
	return []ports.Source{
		NewArchidekt(),
		NewMoxfield(),
		NewTappedOut(),
		NewDeckstats(),
	}
}

// Get resolves a source by display name or short code, ignoring case.
func Get(name string) (ports.Source, bool) {
	for _, s := range All() {
		if strings.EqualFold(s.Name(), name) || strings.EqualFold(s.Short(), name) {
			return s, true
		}
	}
	return nil, false
}

// getJSON fetches url and decodes the response body into v.
func getJSON(ctx context.Context, url string, v any) error {
	resp, err := get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", url, err)
	}
	return nil
}

func get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "decksync/1.0")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return resp, nil
}
