package game

import (
	rand "math/rand/v2"

	"github.com/lox/toptrumps/internal/cards"
)

// shuffleCards randomizes card order in place with the room's rng.
func shuffleCards(rng *rand.Rand, cs []cards.Card) {
	for i := len(cs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cs[i], cs[j] = cs[j], cs[i]
	}
}

// dealInitial distributes a shuffled copy of the catalog evenly across all
// players, round-robin. Cards that don't divide evenly go to the unused
// pile. Caller holds the room lock.
func (r *Room) dealInitial() {
	shuffled := make([]cards.Card, len(r.catalog))
	copy(shuffled, r.catalog)
	shuffleCards(r.rng, shuffled)

	numPlayers := len(r.players)
	perPlayer := len(shuffled) / numPlayers
	totalToDeal := perPlayer * numPlayers

	for _, p := range r.players {
		p.Deck = nil
	}
	for i := 0; i < totalToDeal; i++ {
		p := r.players[i%numPlayers]
		p.Deck = append(p.Deck, shuffled[i])
	}

	r.unusedPile = shuffled[totalToDeal:]
	r.totalDealt = totalToDeal
	r.dealt = true
}

// rebalance redistributes cards after a late join, preserving every existing
// player's visible top card so an in-progress comparison isn't disturbed.
// Players without a top card (the new player, or anyone who ran out) get one
// popped from the shuffled pool. The rest is dealt round-robin behind the
// tops; the leftover becomes the unused pile. Caller holds the room lock,
// and the room must not be awaiting a commit.
func (r *Room) rebalance() {
	preservedTops := make([]cards.Card, len(r.players))
	var pool []cards.Card
	for i, p := range r.players {
		if len(p.Deck) > 0 {
			preservedTops[i] = p.popTop()
		}
		pool = append(pool, p.Deck...)
		p.Deck = nil
	}
	pool = append(pool, r.unusedPile...)
	r.unusedPile = nil

	shuffleCards(r.rng, pool)

	for i, p := range r.players {
		if preservedTops[i] == nil && len(pool) > 0 {
			preservedTops[i] = pool[0]
			pool = pool[1:]
		}
		if preservedTops[i] != nil {
			p.Deck = append(p.Deck, preservedTops[i])
		}
	}

	numPlayers := len(r.players)
	perPlayer := len(pool) / numPlayers
	totalToDeal := perPlayer * numPlayers
	for i := 0; i < totalToDeal; i++ {
		p := r.players[i%numPlayers]
		p.Deck = append(p.Deck, pool[i])
	}
	r.unusedPile = pool[totalToDeal:]

	r.totalDealt = 0
	for _, p := range r.players {
		r.totalDealt += len(p.Deck)
	}
}
