package cards

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Catalog is the immutable, ordered card collection loaded once at process
// start. The game core only ever sees the Valid() subset.
type Catalog struct {
	cards []Card
	stats []string
}

// Load reads a catalog from a CSV file on disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	catalog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// Parse reads a catalog from CSV data. The first row is the header; every
// column except Name and ImageFileName is treated as a statistic column.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var stats []string
	for _, column := range header {
		if column != ColumnName && column != ColumnImage {
			stats = append(stats, column)
		}
	}

	var records []Card
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		card := make(Card, len(header))
		for i, column := range header {
			if i < len(row) {
				card[column] = row[i]
			}
		}
		records = append(records, card)
	}

	return &Catalog{cards: records, stats: stats}, nil
}

// Valid returns the playable cards in catalog order. The returned slice is
// freshly allocated; the cards themselves are shared.
func (c *Catalog) Valid() []Card {
	valid := make([]Card, 0, len(c.cards))
	for _, card := range c.cards {
		if card.Valid() {
			valid = append(valid, card)
		}
	}
	return valid
}

// Len returns the total number of rows loaded, valid or not.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Stats returns the statistic column identifiers in header order.
func (c *Catalog) Stats() []string {
	stats := make([]string, len(c.stats))
	copy(stats, c.stats)
	return stats
}
