package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"decksync/internal/domain"
)

const (
	metaCardRefreshAt      = "card_refresh_at"
	metaCardRefreshVersion = "card_refresh_version"
)

// CardsByName returns every stored printing matching name, ignoring case.
func (s *Store) CardsByName(name string) ([]domain.Card, error) {
	return s.queryCards(`
		SELECT name, catalog_id, is_dfc, collector_number, edition, reprint
		FROM cards WHERE name = ?
	`, name)
}

// CardsByPrefix returns every stored printing whose name starts with
// prefix, ignoring case.
func (s *Store) CardsByPrefix(prefix string) ([]domain.Card, error) {
	return s.queryCards(`
		SELECT name, catalog_id, is_dfc, collector_number, edition, reprint
		FROM cards WHERE name LIKE ? || '%' ESCAPE '\'
	`, escapeLike(prefix))
}

func (s *Store) queryCards(query string, args ...any) ([]domain.Card, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.Name, &c.CatalogID, &c.DoubleFaced, &c.CollectorNumber, &c.Edition, &c.Reprint); err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ReplaceCards bulk-merges a freshly downloaded dataset into the card
// table. Existing printings are updated in place so a mid-transaction
// failure never leaves the table empty.
func (s *Store) ReplaceCards(cards []domain.Card) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storing cards: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cards (name, catalog_id, is_dfc, collector_number, edition, reprint)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, edition, collector_number) DO UPDATE SET
			catalog_id = excluded.catalog_id,
			is_dfc = excluded.is_dfc,
			reprint = excluded.reprint
	`)
	if err != nil {
		return fmt.Errorf("storing cards: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		if _, err := stmt.Exec(c.Name, c.CatalogID, c.DoubleFaced, c.CollectorNumber, c.Edition, c.Reprint); err != nil {
			return fmt.Errorf("storing card %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storing cards: %w", err)
	}
	return nil
}

// RefreshMark returns the time and dataset version of the last refresh
// attempt. The zero time means no refresh has ever run.
func (s *Store) RefreshMark() (time.Time, string, error) {
	at, err := s.metaValue(metaCardRefreshAt)
	if err != nil {
		return time.Time{}, "", err
	}
	version, err := s.metaValue(metaCardRefreshVersion)
	if err != nil {
		return time.Time{}, "", err
	}
	if at == "" {
		return time.Time{}, version, nil
	}
	unix, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return time.Time{}, version, nil
	}
	return time.Unix(unix, 0), version, nil
}

// SetRefreshMark records a refresh attempt.
func (s *Store) SetRefreshMark(at time.Time, version string) error {
	if err := s.setMetaValue(metaCardRefreshAt, strconv.FormatInt(at.Unix(), 10)); err != nil {
		return err
	}
	return s.setMetaValue(metaCardRefreshVersion, version)
}

func (s *Store) metaValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setMetaValue(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}

// escapeLike quotes LIKE wildcards in user-derived card names.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
