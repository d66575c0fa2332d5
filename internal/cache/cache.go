// Package cache holds the in-memory aggregate of sync state: profiles,
// output directories and the deck files tracked within them. The SQLite
// adapter materializes and persists it; the sync engine mutates it.
package cache

import (
	"os"
	"path/filepath"

	"decksync/internal/logging"
	"decksync/internal/ports"
)

// Cache owns all profiles and output directories. Insertions deduplicate
// by the equivalence rules on Profile and Output; directories deduplicate
// by resolved filesystem path.
type Cache struct {
	Profiles []*Profile
	Dirs     []*OutputDir

	removed []int64 // profile row ids detached since load
}

var log = logging.Component("cache")

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// OutputDir returns the directory entity for path, reusing an existing
// one when the paths resolve to the same directory on disk.
func (c *Cache) OutputDir(path string) *OutputDir {
	for _, dir := range c.Dirs {
		if samePath(path, dir.Path) {
			return dir
		}
	}
	log.Debug().Str("path", path).Msg("tracking new output directory")
	dir := NewOutputDir(path)
	c.Dirs = append(c.Dirs, dir)
	return dir
}

// AddProfile inserts a profile, or returns the existing equivalent one
// when the candidate adds nothing new.
func (c *Cache) AddProfile(candidate *Profile) *Profile {
	for _, p := range c.Profiles {
		if p.Equivalent(candidate) {
			log.Info().Str("user", p.UserString()).
				Msg("equivalent profile already exists, skipping creation")
			return p
		}
	}
	c.Profiles = append(c.Profiles, candidate)
	return candidate
}

// BuildProfile creates and inserts a profile with no outputs yet.
func (c *Cache) BuildProfile(source ports.Source, user, name string) *Profile {
	return c.AddProfile(NewProfile(source, user, name))
}

// AddOutput attaches a write destination to a profile, resolving the
// OutputDir by path identity and merging with an equivalent existing
// output instead of duplicating it.
func (c *Cache) AddOutput(profile *Profile, target ports.Target, path string, includeMaybe bool) *Output {
	out := &Output{
		Target:       target,
		Dir:          c.OutputDir(path),
		IncludeMaybe: includeMaybe,
	}
	if !profile.AddOutput(out) {
		log.Info().Str("target", target.Name()).Str("path", path).
			Msg("equivalent output already exists, skipping addition")
		for _, existing := range profile.Outputs {
			if existing.Equivalent(out) {
				return existing
			}
		}
	}
	return out
}

// RemoveProfile detaches a profile. Its output directories are left in
// place: they may be shared with, or reused by, other profiles.
func (c *Cache) RemoveProfile(profile *Profile) {
	for i, p := range c.Profiles {
		if p == profile {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			if profile.ID != 0 {
				c.removed = append(c.removed, profile.ID)
			}
			log.Info().Str("user", profile.UserString()).Msg("deleted profile")
			return
		}
	}
}

// RemovedProfileIDs lists row ids of profiles detached since load, for
// the store to delete on save.
func (c *Cache) RemovedProfileIDs() []int64 {
	return c.removed
}

// samePath reports whether two path strings refer to the same directory.
// When both exist this is a true filesystem identity check; otherwise it
// falls back to comparing canonicalized absolute paths.
func samePath(a, b string) bool {
	ai, aerr := os.Stat(a)
	bi, berr := os.Stat(b)
	if aerr == nil && berr == nil {
		return os.SameFile(ai, bi)
	}
	return canonical(a) == canonical(b)
}

func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
