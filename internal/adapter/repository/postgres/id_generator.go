package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator implements usecase.IDGenerator with ULIDs. Lexicographic
// order follows creation time, which keeps index pages warm on append-heavy
// tables like journal_entries.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
