package domain

// Card is a canonical card identity record, populated in bulk from the
// external card dataset and read-only to the sync engine.
type Card struct {
	Name            string
	CatalogID       string // online-client catalog number; empty when unknown
	DoubleFaced     bool
	CollectorNumber string
	Edition         string
	Reprint         bool
}

// CardMap maps a card name to its resolved identity record. Absent or nil
// entries mean the name could not be resolved; targets decide whether such
// cards are written as-is or skipped.
type CardMap map[string]*Card

// FrontFace returns the card name with any back-face part stripped.
// Double-faced cards are listed as "Front // Back" by most sources, while
// client programs identify the card by its front face alone.
func (c *Card) FrontFace() string {
	return FrontFaceName(c.Name)
}
