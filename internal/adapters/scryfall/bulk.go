// Package scryfall downloads the Scryfall bulk card dataset that backs
// the card catalog.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"decksync/internal/domain"
	"decksync/internal/logging"
)

const bulkDataURL = "https://api.scryfall.com/bulk-data/default-cards"

const userAgent = "decksync/1.0"

// Layouts with no place in a decklist. Tokens, emblems and the like
// share names with real cards and would poison exact-name lookup.
var excludedLayouts = map[string]bool{
	"art_series":         true,
	"double_faced_token": true,
	"emblem":             true,
	"planar":             true,
	"scheme":             true,
	"token":              true,
	"vanguard":           true,
}

// Client fetches the default-cards bulk dataset. The manifest version is
// the dataset's download URI, which Scryfall changes on every daily
// regeneration.
type Client struct {
	httpClient  *http.Client
	manifestURL string
}

var log = logging.Component("scryfall")

// NewClient returns a bulk dataset client. No overall request timeout is
// set: the dataset runs to hundreds of megabytes, so cancellation is the
// caller's context's job.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{}, manifestURL: bulkDataURL}
}

// Manifest returns the current dataset version marker and its compressed
// size in bytes.
func (c *Client) Manifest(ctx context.Context) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetching bulk data manifest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("fetching bulk data manifest: status %s", resp.Status)
	}

	var manifest struct {
		DownloadURI    string `json:"download_uri"`
		CompressedSize int64  `json:"compressed_size"`
		UpdatedAt      string `json:"updated_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return "", 0, fmt.Errorf("decoding bulk data manifest: %w", err)
	}
	if manifest.DownloadURI == "" {
		return "", 0, fmt.Errorf("bulk data manifest carries no download uri")
	}
	return manifest.DownloadURI, manifest.CompressedSize, nil
}

// Download streams and decodes the dataset at version (a download URI),
// filtered to layouts that can appear in a decklist.
func (c *Client) Download(ctx context.Context, version string) ([]domain.Card, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, version, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading card dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading card dataset: status %s", resp.Status)
	}

	// The dataset is one large JSON array; decode it element by element
	// instead of holding the raw document in memory.
	dec := json.NewDecoder(resp.Body)
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding card dataset: %w", err)
	}

	var cards []domain.Card
	for dec.More() {
		var raw bulkCard
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding card dataset: %w", err)
		}
		if excludedLayouts[raw.Layout] {
			continue
		}
		cards = append(cards, raw.toCard())
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding card dataset: %w", err)
	}

	log.Debug().Int("cards", len(cards)).Dur("elapsed", time.Since(started)).
		Msg("card dataset downloaded")
	return cards, nil
}

type bulkCard struct {
	Name            string            `json:"name"`
	Layout          string            `json:"layout"`
	MtgoID          int64             `json:"mtgo_id"`
	CollectorNumber string            `json:"collector_number"`
	Set             string            `json:"set"`
	Reprint         bool              `json:"reprint"`
	CardFaces       []json.RawMessage `json:"card_faces"`
}

func (b bulkCard) toCard() domain.Card {
	catalogID := ""
	if b.MtgoID != 0 {
		catalogID = strconv.FormatInt(b.MtgoID, 10)
	}
	// Split and adventure cards carry faces too, but clients treat them
	// as a single card under the combined name.
	doubleFaced := len(b.CardFaces) > 0 &&
		(b.Layout == "transform" || b.Layout == "modal_dfc")
	return domain.Card{
		Name:            b.Name,
		CatalogID:       catalogID,
		DoubleFaced:     doubleFaced,
		CollectorNumber: b.CollectorNumber,
		Edition:         b.Set,
		Reprint:         b.Reprint,
	}
}
