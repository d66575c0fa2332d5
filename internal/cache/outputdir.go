package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

// ErrNotDirectory reports that an output path exists but is a file.
var ErrNotDirectory = errors.New("output path is not a directory")

// FileKey identifies a tracked deck file within one directory.
type FileKey struct {
	Target string // target short code
	Source string // source short code
	DeckID string
}

// TrackedFile records a previously written deck file and the update
// timestamp it was written at. Owned by exactly one OutputDir.
type TrackedFile struct {
	ID        int64 // database row id, zero until stored
	Source    string
	DeckID    string
	FileName  string
	WrittenAt time.Time
}

// OutputDir tracks, per local directory, the deck files written into it.
// Identity is by resolved filesystem path, not string equality; the Cache
// enforces that when handing instances out.
type OutputDir struct {
	ID   int64
	Path string

	files map[FileKey]*TrackedFile
}

// NewOutputDir creates an empty OutputDir for path.
func NewOutputDir(path string) *OutputDir {
	return &OutputDir{
		Path:  path,
		files: make(map[FileKey]*TrackedFile),
	}
}

// Ensure makes sure the directory exists, creating it when missing.
// A file occupying the path is reported as ErrNotDirectory.
func (d *OutputDir) Ensure() error {
	info, err := os.Stat(d.Path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrNotDirectory, d.Path)
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(d.Path, 0o755)
}

// Files exposes the tracked files for persistence. Callers must not
// mutate the map.
func (d *OutputDir) Files() map[FileKey]*TrackedFile {
	return d.files
}

// AddTrackedFile registers a tracked file loaded from the store.
func (d *OutputDir) AddTrackedFile(target string, tf *TrackedFile) {
	d.files[FileKey{Target: target, Source: tf.Source, DeckID: tf.DeckID}] = tf
}

// NeedsUpdate is the staleness predicate: a deck needs writing when it
// has never been written for this target, when the previously written
// file no longer exists on disk, or when the source reports an update
// newer than the last write.
func (d *OutputDir) NeedsUpdate(target ports.Target, update domain.DeckUpdate) bool {
	tf, ok := d.files[FileKey{Target: target.Short(), Source: update.Source, DeckID: update.DeckID}]
	if !ok {
		return true
	}
	if _, err := os.Stat(filepath.Join(d.Path, tf.FileName)); err != nil {
		return true
	}
	return update.UpdatedAt.After(tf.WrittenAt)
}

// DecksToUpdate filters a listing down to the deck IDs that are stale
// for this directory and target.
func (d *OutputDir) DecksToUpdate(target ports.Target, updates []domain.DeckUpdate) []string {
	var ids []string
	for _, u := range updates {
		if d.NeedsUpdate(target, u) {
			ids = append(ids, u.DeckID)
		}
	}
	return ids
}

// TrackedFile returns the tracked file for a deck, creating it with a
// collision-free file name on first use. The name is assigned at most
// once per key and reused thereafter, even if the deck is later renamed
// at the source.
func (d *OutputDir) TrackedFile(target ports.Target, deck *domain.Deck) *TrackedFile {
	key := FileKey{Target: target.Short(), Source: deck.Source, DeckID: deck.ID}
	if tf, ok := d.files[key]; ok {
		return tf
	}
	tf := &TrackedFile{
		Source:   deck.Source,
		DeckID:   deck.ID,
		FileName: d.createFileName(target, deck.Name),
	}
	d.files[key] = tf
	return tf
}

// RecordWrite stamps a successful write. WrittenAt never decreases.
func (d *OutputDir) RecordWrite(tf *TrackedFile, at time.Time) {
	if at.After(tf.WrittenAt) {
		tf.WrittenAt = at
	}
}

// createFileName derives a file name unique within this directory,
// disambiguating collisions with a numeric suffix before the extension.
func (d *OutputDir) createFileName(target ports.Target, deckName string) string {
	suggested := target.CreateFileName(deckName)
	name := suggested
	for i := 1; d.fileNameTaken(name); i++ {
		ext := filepath.Ext(suggested)
		base := strings.TrimSuffix(suggested, ext)
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	return name
}

func (d *OutputDir) fileNameTaken(name string) bool {
	for _, tf := range d.files {
		if tf.FileName == name {
			return true
		}
	}
	return false
}
