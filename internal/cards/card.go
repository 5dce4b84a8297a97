package cards

import "strings"

// Well-known column names in the catalog CSV.
const (
	ColumnName  = "Name"
	ColumnImage = "ImageFileName"
)

// Statistic identifiers recognized by the game. Any other column in the
// catalog is still carried on the card, it just has no display label.
const (
	StatTimeInOffice = "TimeInOfficeDays"
	StatAgeAtPM      = "AgeAtPM"
	StatTimeAsMP     = "TimeAsMPYears"
	StatPeerage      = "Peerage"
	StatAge          = "Age"
)

var statLabels = map[string]string{
	StatTimeInOffice: "Time in Office",
	StatAgeAtPM:      "Age at PM",
	StatTimeAsMP:     "Time as MP",
	StatPeerage:      "Peerage",
	StatAge:          "Age",
}

// Label returns the display label for a statistic identifier. Unknown
// identifiers fall back to the raw identifier.
func Label(stat string) string {
	if label, ok := statLabels[stat]; ok {
		return label
	}
	return stat
}

// IsCategorical reports whether a statistic ranks through the peerage table
// rather than parsing as a number.
func IsCategorical(stat string) bool {
	return stat == StatPeerage
}

// Card is a single catalog record: one row of the CSV, keyed by column name.
// Cards are treated as immutable after load and shared by reference across
// player decks, so callers must not modify the map.
type Card map[string]string

// Name returns the card's display name.
func (c Card) Name() string {
	return c[ColumnName]
}

// Image returns the card's image file name.
func (c Card) Image() string {
	return c[ColumnImage]
}

// Stat returns the raw value of a statistic column.
func (c Card) Stat(stat string) string {
	return c[stat]
}

// Valid reports whether the card is playable. Rows without an image file
// name are artifacts of the source data and are excluded from dealing.
func (c Card) Valid() bool {
	return strings.TrimSpace(c[ColumnImage]) != ""
}
