package cache

import (
	"fmt"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

// Output is one write destination within a Profile: a target format, a
// shared OutputDir and the option to include maybeboard cards.
type Output struct {
	ID           int64
	Target       ports.Target
	Dir          *OutputDir
	IncludeMaybe bool
}

// Equivalent reports whether two outputs write the same format to the
// same directory. The maybeboard option does not enter into identity.
func (o *Output) Equivalent(other *Output) bool {
	return other != nil && o.Target.Short() == other.Target.Short() && o.Dir == other.Dir
}

// NeedsUpdate applies the directory's staleness predicate for this
// output's target.
func (o *Output) NeedsUpdate(update domain.DeckUpdate) bool {
	return o.Dir.NeedsUpdate(o.Target, update)
}

// DecksToUpdate filters a listing for this output.
func (o *Output) DecksToUpdate(updates []domain.DeckUpdate) []string {
	return o.Dir.DecksToUpdate(o.Target, updates)
}

// Profile binds one remote user on one source to a set of outputs.
type Profile struct {
	ID      int64
	Source  ports.Source
	User    string
	Name    string // optional display name
	Outputs []*Output
}

// NewProfile creates a profile with no outputs.
func NewProfile(source ports.Source, user, name string) *Profile {
	return &Profile{Source: source, User: user, Name: name}
}

// UserString describes the profile's remote identity for logs.
func (p *Profile) UserString() string {
	return fmt.Sprintf("%s on %s", p.User, p.Source.Name())
}

// Equivalent reports whether candidate adds nothing over this profile:
// same source, same user, and every candidate output equivalent to one
// of ours.
func (p *Profile) Equivalent(candidate *Profile) bool {
	if candidate == nil ||
		candidate.User != p.User ||
		candidate.Source.Short() != p.Source.Short() {
		return false
	}
	for _, out := range candidate.Outputs {
		if !p.hasEquivalentOutput(out) {
			return false
		}
	}
	return true
}

// AddOutput appends an output unless an equivalent one already exists.
// Reports whether the output was actually added.
func (p *Profile) AddOutput(out *Output) bool {
	if p.hasEquivalentOutput(out) {
		return false
	}
	p.Outputs = append(p.Outputs, out)
	return true
}

func (p *Profile) hasEquivalentOutput(out *Output) bool {
	for _, existing := range p.Outputs {
		if existing.Equivalent(out) {
			return true
		}
	}
	return false
}
