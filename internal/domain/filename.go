package domain

import (
	"regexp"
	"strings"
)

var fileNameStrip = regexp.MustCompile(`[^a-z0-9_ ]+`)

// SanitizeFileName reduces a deck name to a filesystem-safe base name:
// lowercased, anything outside [a-z0-9_ ] removed, spaces to underscores.
// Targets append their own extension.
func SanitizeFileName(deckName string) string {
	name := fileNameStrip.ReplaceAllString(strings.ToLower(deckName), "")
	return strings.ReplaceAll(name, " ", "_")
}
