package game

import (
	"strconv"
	"strings"

	"github.com/lox/toptrumps/internal/cards"
)

// ValueKind distinguishes why a comparison value is what it is. Absent and
// Invalid both lose to any positive value, but tests and diagnostics can
// tell "player had no card" from "card had no usable data".
type ValueKind int

const (
	// Absent means the player had no top card. Absent players can never
	// win a round and are excluded from tie sets.
	Absent ValueKind = iota
	// Invalid means the stat was missing or unparseable; it compares as 0.
	Invalid
	// Number is a parsed numeric statistic.
	Number
	// Rank is a categorical statistic mapped through the peerage table.
	Rank
)

// StatValue is one player's comparison value for a round.
type StatValue struct {
	Kind  ValueKind
	Value float64
}

// Present reports whether the player participated in the comparison at all.
func (v StatValue) Present() bool {
	return v.Kind != Absent
}

// Outcome is the result of comparing every player's top card on one stat.
// WinnerIndex is -1 on a tie or when no present player exists.
type Outcome struct {
	WinnerIndex int
	Tied        bool
	Values      []StatValue
}

// Peerage titles in ascending precedence. Matching is by case-insensitive
// substring so "1st Earl of Beaconsfield" ranks as an earl.
var peerageOrder = []string{"knight", "baron", "viscount", "earl", "marquess", "duke"}

func peerageRank(title string) int {
	normalized := strings.ToLower(title)
	for i := len(peerageOrder) - 1; i >= 0; i-- {
		if strings.Contains(normalized, peerageOrder[i]) {
			return i + 1
		}
	}
	return 0
}

// statValue computes a single card's comparison value for a stat.
func statValue(card cards.Card, stat string) StatValue {
	raw := card.Stat(stat)
	if cards.IsCategorical(stat) {
		// No recognized title ranks 0: a commoner is a legitimate
		// lowest value, not malformed input.
		return StatValue{Kind: Rank, Value: float64(peerageRank(raw))}
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return StatValue{Kind: Invalid}
	}
	return StatValue{Kind: Number, Value: num}
}

// resolveRound compares every player's top card on the given stat. Pure: it
// never mutates decks; card movement happens at commit.
func resolveRound(players []*Player, stat string) Outcome {
	values := make([]StatValue, len(players))
	for i, p := range players {
		if top := p.TopCard(); top != nil {
			values[i] = statValue(top, stat)
		}
		// zero value is Absent
	}

	maxValue := 0.0
	anyPresent := false
	for _, v := range values {
		if !v.Present() {
			continue
		}
		if !anyPresent || v.Value > maxValue {
			maxValue = v.Value
			anyPresent = true
		}
	}

	if !anyPresent {
		return Outcome{WinnerIndex: -1, Values: values}
	}

	winnerIndex := -1
	count := 0
	for i, v := range values {
		if v.Present() && v.Value == maxValue {
			count++
			if winnerIndex == -1 {
				winnerIndex = i
			}
		}
	}

	if count > 1 {
		return Outcome{WinnerIndex: -1, Tied: true, Values: values}
	}
	return Outcome{WinnerIndex: winnerIndex, Values: values}
}
