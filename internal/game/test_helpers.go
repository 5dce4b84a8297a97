package game

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/lox/toptrumps/internal/cards"
	"github.com/lox/toptrumps/internal/randutil"
)

// ageCard builds a minimal valid card with the given Age stat.
func ageCard(name string, age int) cards.Card {
	return cards.Card{
		cards.ColumnName:  name,
		cards.ColumnImage: name + ".jpg",
		cards.StatAge:     strconv.Itoa(age),
	}
}

// testCatalog builds n distinct valid cards with ascending Age values.
func testCatalog(n int) []cards.Card {
	catalog := make([]cards.Card, n)
	for i := range catalog {
		catalog[i] = ageCard(fmt.Sprintf("PM %d", i+1), 40+i)
	}
	return catalog
}

func testLogger() *log.Logger {
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	return logger
}

// testRoom creates a seeded room over n catalog cards with the given player
// names seated in order.
func testRoom(t interface{ Fatalf(string, ...interface{}) }, n int, names ...string) *Room {
	room := NewRoom("TEST1", testCatalog(n), randutil.New(42), testLogger())
	for _, name := range names {
		if _, err := room.AddPlayer(name); err != nil {
			t.Fatalf("AddPlayer(%q): %v", name, err)
		}
	}
	return room
}

// cardCount sums every container a card can live in.
func (r *Room) cardCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := len(r.tiePile) + len(r.unusedPile)
	for _, p := range r.players {
		total += len(p.Deck)
	}
	return total
}
