// Package sqlite persists the sync cache and the card catalog in a
// single database file.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"decksync/internal/cache"
	"decksync/internal/logging"
	"decksync/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the database connection shared by the cache and catalog
// persistence layers.
type Store struct {
	db   *sql.DB
	path string
}

var log = logging.Component("sqlite")

// Open opens (and if necessary creates) the database at path and applies
// the schema. A database file too corrupt to use is discarded and
// recreated empty: its contents are derived state.
func Open(path string) (*Store, error) {
	store, err := open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).
			Msg("cache database unusable, recreating it")
		if rmErr := os.Remove(path); rmErr != nil {
			return nil, err
		}
		return open(path)
	}
	return store, nil
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS sources (
			id INTEGER PRIMARY KEY,
			short TEXT UNIQUE NOT NULL
		);
		CREATE TABLE IF NOT EXISTS targets (
			id INTEGER PRIMARY KEY,
			short TEXT UNIQUE NOT NULL
		);
		CREATE TABLE IF NOT EXISTS dirs (
			id INTEGER PRIMARY KEY,
			path TEXT UNIQUE NOT NULL
		);
		CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY,
			source INTEGER NOT NULL REFERENCES sources(id),
			user TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS outputs (
			id INTEGER PRIMARY KEY,
			profile INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			target INTEGER NOT NULL REFERENCES targets(id),
			dir INTEGER NOT NULL REFERENCES dirs(id),
			include_maybe INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS deck_files (
			id INTEGER PRIMARY KEY,
			source INTEGER NOT NULL REFERENCES sources(id),
			deck_id TEXT NOT NULL,
			target INTEGER NOT NULL REFERENCES targets(id),
			dir INTEGER NOT NULL REFERENCES dirs(id),
			file_name TEXT NOT NULL,
			written_at INTEGER NOT NULL DEFAULT 0,
			UNIQUE (file_name, dir)
		);
		CREATE TABLE IF NOT EXISTS cards (
			name TEXT NOT NULL COLLATE NOCASE,
			catalog_id TEXT NOT NULL DEFAULT '',
			is_dfc INTEGER NOT NULL DEFAULT 0,
			collector_number TEXT NOT NULL DEFAULT '',
			edition TEXT NOT NULL DEFAULT '',
			reprint INTEGER NOT NULL DEFAULT 0,
			UNIQUE (name, edition, collector_number)
		);
		CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load materializes the cache. Sources and targets are stored by short
// code and resolved through the given lookups; rows referencing codes no
// longer registered are skipped with a warning. A database that cannot
// be read yields an empty cache rather than an error: the files on disk
// are merely stale state and will be regenerated on the next sync.
func (s *Store) Load(sourceByShort func(string) (ports.Source, bool), targetByShort func(string) (ports.Target, bool)) (*cache.Cache, error) {
	c, err := s.load(sourceByShort, targetByShort)
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).
			Msg("cache database could not be read, starting fresh")
		return cache.New(), nil
	}
	return c, nil
}

func (s *Store) load(sourceByShort func(string) (ports.Source, bool), targetByShort func(string) (ports.Target, bool)) (*cache.Cache, error) {
	c := cache.New()

	dirs := make(map[int64]*cache.OutputDir)
	rows, err := s.db.Query(`SELECT id, path FROM dirs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		dir := c.OutputDir(path)
		dir.ID = id
		dirs[id] = dir
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	profiles := make(map[int64]*cache.Profile)
	rows, err = s.db.Query(`
		SELECT p.id, s.short, p.user, p.name
		FROM profiles p JOIN sources s ON s.id = p.source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var short, user, name string
		if err := rows.Scan(&id, &short, &user, &name); err != nil {
			return nil, err
		}
		source, ok := sourceByShort(short)
		if !ok {
			log.Warn().Str("source", short).Str("user", user).
				Msg("profile references unknown source, skipping")
			continue
		}
		profile := cache.NewProfile(source, user, name)
		profile.ID = id
		c.AddProfile(profile)
		profiles[id] = profile
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT o.id, o.profile, t.short, o.dir, o.include_maybe
		FROM outputs o JOIN targets t ON t.id = o.target
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, profileID, dirID int64
		var short string
		var includeMaybe bool
		if err := rows.Scan(&id, &profileID, &short, &dirID, &includeMaybe); err != nil {
			return nil, err
		}
		profile, ok := profiles[profileID]
		if !ok {
			continue
		}
		target, tok := targetByShort(short)
		dir, dok := dirs[dirID]
		if !tok || !dok {
			log.Warn().Str("target", short).
				Msg("output references unknown target or directory, skipping")
			continue
		}
		out := &cache.Output{ID: id, Target: target, Dir: dir, IncludeMaybe: includeMaybe}
		profile.AddOutput(out)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT f.id, s.short, f.deck_id, t.short, f.dir, f.file_name, f.written_at
		FROM deck_files f
		JOIN sources s ON s.id = f.source
		JOIN targets t ON t.id = f.target
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, dirID, writtenAt int64
		var sourceShort, deckID, targetShort, fileName string
		if err := rows.Scan(&id, &sourceShort, &deckID, &targetShort, &dirID, &fileName, &writtenAt); err != nil {
			return nil, err
		}
		dir, ok := dirs[dirID]
		if !ok {
			continue
		}
		dir.AddTrackedFile(targetShort, &cache.TrackedFile{
			ID:        id,
			Source:    sourceShort,
			DeckID:    deckID,
			FileName:  fileName,
			WrittenAt: time.Unix(writtenAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// Save writes the whole cache back in one transaction, assigning row ids
// to entities inserted for the first time and deleting profiles removed
// since load.
func (s *Store) Save(c *cache.Cache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	defer tx.Rollback()

	for _, id := range c.RemovedProfileIDs() {
		if _, err := tx.Exec(`DELETE FROM profiles WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting profile %d: %w", id, err)
		}
	}

	for _, dir := range c.Dirs {
		if err := saveDir(tx, dir); err != nil {
			return err
		}
	}
	for _, profile := range c.Profiles {
		if err := saveProfile(tx, profile); err != nil {
			return err
		}
	}
	for _, dir := range c.Dirs {
		if err := saveTrackedFiles(tx, dir); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	return nil
}

func saveDir(tx *sql.Tx, dir *cache.OutputDir) error {
	if dir.ID != 0 {
		_, err := tx.Exec(`UPDATE dirs SET path = ? WHERE id = ?`, dir.Path, dir.ID)
		return err
	}
	_, err := tx.Exec(`INSERT INTO dirs (path) VALUES (?)
		ON CONFLICT (path) DO UPDATE SET path = excluded.path`, dir.Path)
	if err != nil {
		return fmt.Errorf("saving directory %s: %w", dir.Path, err)
	}
	dir.ID, err = rowID(tx, `SELECT id FROM dirs WHERE path = ?`, dir.Path)
	return err
}

func saveProfile(tx *sql.Tx, profile *cache.Profile) error {
	sourceID, err := shortID(tx, "sources", profile.Source.Short())
	if err != nil {
		return err
	}

	if profile.ID == 0 {
		res, err := tx.Exec(`INSERT INTO profiles (source, user, name) VALUES (?, ?, ?)`,
			sourceID, profile.User, profile.Name)
		if err != nil {
			return fmt.Errorf("saving profile %s: %w", profile.UserString(), err)
		}
		profile.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		_, err := tx.Exec(`UPDATE profiles SET source = ?, user = ?, name = ? WHERE id = ?`,
			sourceID, profile.User, profile.Name, profile.ID)
		if err != nil {
			return fmt.Errorf("saving profile %s: %w", profile.UserString(), err)
		}
	}

	for _, out := range profile.Outputs {
		if err := saveOutput(tx, profile.ID, out); err != nil {
			return err
		}
	}
	return nil
}

func saveOutput(tx *sql.Tx, profileID int64, out *cache.Output) error {
	targetID, err := shortID(tx, "targets", out.Target.Short())
	if err != nil {
		return err
	}

	if out.ID == 0 {
		res, err := tx.Exec(`INSERT INTO outputs (profile, target, dir, include_maybe) VALUES (?, ?, ?, ?)`,
			profileID, targetID, out.Dir.ID, out.IncludeMaybe)
		if err != nil {
			return fmt.Errorf("saving output: %w", err)
		}
		out.ID, err = res.LastInsertId()
		return err
	}
	_, err = tx.Exec(`UPDATE outputs SET profile = ?, target = ?, dir = ?, include_maybe = ? WHERE id = ?`,
		profileID, targetID, out.Dir.ID, out.IncludeMaybe, out.ID)
	if err != nil {
		return fmt.Errorf("saving output: %w", err)
	}
	return nil
}

func saveTrackedFiles(tx *sql.Tx, dir *cache.OutputDir) error {
	for key, tf := range dir.Files() {
		sourceID, err := shortID(tx, "sources", tf.Source)
		if err != nil {
			return err
		}
		targetID, err := shortID(tx, "targets", key.Target)
		if err != nil {
			return err
		}

		if tf.ID == 0 {
			_, err := tx.Exec(`
				INSERT INTO deck_files (source, deck_id, target, dir, file_name, written_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (file_name, dir) DO UPDATE SET
					source = excluded.source,
					deck_id = excluded.deck_id,
					target = excluded.target,
					written_at = excluded.written_at`,
				sourceID, tf.DeckID, targetID, dir.ID, tf.FileName, tf.WrittenAt.Unix())
			if err != nil {
				return fmt.Errorf("saving deck file %s: %w", tf.FileName, err)
			}
			tf.ID, err = rowID(tx,
				`SELECT id FROM deck_files WHERE file_name = ? AND dir = ?`, tf.FileName, dir.ID)
			if err != nil {
				return err
			}
		} else {
			_, err := tx.Exec(`UPDATE deck_files SET file_name = ?, written_at = ? WHERE id = ?`,
				tf.FileName, tf.WrittenAt.Unix(), tf.ID)
			if err != nil {
				return fmt.Errorf("saving deck file %s: %w", tf.FileName, err)
			}
		}
	}
	return nil
}

// shortID maps a registry short code to its row id in table, inserting
// the code on first use.
func shortID(tx *sql.Tx, table, short string) (int64, error) {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO `+table+` (short) VALUES (?)`, short); err != nil {
		return 0, fmt.Errorf("registering %s code %s: %w", table, short, err)
	}
	var id int64
	err := tx.QueryRow(`SELECT id FROM `+table+` WHERE short = ?`, short).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving %s code %s: %w", table, short, err)
	}
	return id, nil
}

// rowID looks up the canonical row id after an upsert, since
// LastInsertId is unreliable when the conflict branch fired.
func rowID(tx *sql.Tx, query string, args ...any) (int64, error) {
	var id int64
	if err := tx.QueryRow(query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving row id: %w", err)
	}
	return id, nil
}
