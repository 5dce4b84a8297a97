package game

import (
	"testing"

	"github.com/lox/toptrumps/internal/randutil"
)

func TestDealInitialEqualShares(t *testing.T) {
	room := NewRoom("TEST1", testCatalog(53), randutil.New(42), testLogger())
	for i, name := range []string{"A", "B", "C", "D"} {
		room.players = append(room.players, &Player{ID: i + 1, Name: name})
	}
	room.dealInitial()

	for _, p := range room.players {
		if len(p.Deck) != 13 {
			t.Errorf("player %d: expected 13 cards, got %d", p.ID, len(p.Deck))
		}
	}
	if len(room.unusedPile) != 1 {
		t.Errorf("expected 1 unused card, got %d", len(room.unusedPile))
	}
	if room.totalDealt != 52 {
		t.Errorf("expected totalDealt 52, got %d", room.totalDealt)
	}
}

func TestSequentialJoinsStillEqualShares(t *testing.T) {
	room := testRoom(t, 53, "A", "B", "C", "D")

	for _, p := range room.players {
		if len(p.Deck) != 13 {
			t.Errorf("player %d: expected 13 cards after rebalances, got %d", p.ID, len(p.Deck))
		}
	}
	if len(room.unusedPile) != 1 {
		t.Errorf("expected 1 unused card, got %d", len(room.unusedPile))
	}
}

func TestDealConservation(t *testing.T) {
	room := testRoom(t, 53, "A", "B", "C")

	if got := room.cardCount(); got != 53 {
		t.Fatalf("after initial deal: expected 53 cards across containers, got %d", got)
	}

	if _, err := room.AddPlayer("D"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if got := room.cardCount(); got != 53 {
		t.Fatalf("after rebalance: expected 53 cards across containers, got %d", got)
	}
}

func TestDealNoDuplicates(t *testing.T) {
	room := testRoom(t, 30, "A", "B", "C")

	seen := make(map[string]bool)
	check := func(name string) {
		if seen[name] {
			t.Errorf("card %q appears twice", name)
		}
		seen[name] = true
	}
	for _, p := range room.players {
		for _, c := range p.Deck {
			check(c.Name())
		}
	}
	for _, c := range room.unusedPile {
		check(c.Name())
	}
	if len(seen) != 30 {
		t.Errorf("expected 30 distinct cards, got %d", len(seen))
	}
}

func TestRebalancePreservesTopCards(t *testing.T) {
	room := testRoom(t, 31, "A", "B", "C")

	tops := make([]string, len(room.players))
	for i, p := range room.players {
		tops[i] = p.TopCard().Name()
	}

	if _, err := room.AddPlayer("D"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	for i, want := range tops {
		got := room.players[i].TopCard().Name()
		if got != want {
			t.Errorf("player %d: top card changed across rebalance: %q -> %q", i+1, want, got)
		}
	}

	// The late joiner got a top card from the pool
	newcomer := room.players[3]
	if newcomer.TopCard() == nil {
		t.Error("new player has no top card after rebalance")
	}
}

func TestRebalanceRecomputesTotalDealt(t *testing.T) {
	room := testRoom(t, 31, "A", "B")
	if _, err := room.AddPlayer("C"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	sum := 0
	for _, p := range room.players {
		sum += len(p.Deck)
	}
	if room.totalDealt != sum {
		t.Errorf("totalDealt %d, want sum of deck sizes %d", room.totalDealt, sum)
	}
}

func TestRebalanceRejectedWhileAwaitingCommit(t *testing.T) {
	room := testRoom(t, 20, "A", "B")
	room.SelectStat("Age")

	if _, err := room.AddPlayer("C"); err != ErrRebalanceLocked {
		t.Fatalf("expected ErrRebalanceLocked, got %v", err)
	}
	if len(room.players) != 2 {
		t.Errorf("room changed by rejected join: %d players", len(room.players))
	}
}

func TestRoomFull(t *testing.T) {
	room := testRoom(t, 60, "A", "B", "C", "D", "E", "F")

	if _, err := room.AddPlayer("G"); err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestFirstPlayerGetsWholeCatalog(t *testing.T) {
	room := testRoom(t, 10, "A")

	if len(room.players[0].Deck) != 10 {
		t.Errorf("expected sole player to hold all 10 cards, got %d", len(room.players[0].Deck))
	}
	if room.totalDealt != 10 {
		t.Errorf("expected totalDealt 10, got %d", room.totalDealt)
	}
}

func TestShuffleDeterministicForSeed(t *testing.T) {
	build := func() []string {
		room := NewRoom("TEST1", testCatalog(20), randutil.New(7), testLogger())
		if _, err := room.AddPlayer("A"); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
		names := make([]string, 0, 20)
		for _, c := range room.players[0].Deck {
			names = append(names, c.Name())
		}
		return names
	}

	first := build()
	second := build()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different shuffles at index %d: %q vs %q", i, first[i], second[i])
		}
	}
}
