package game

import "github.com/lox/toptrumps/internal/cards"

// Player is one seat in a room. The deck front (index 0) is the top card,
// the only card eligible for comparison or movement in the current round.
// Transport state (the player's connection) lives in the server package;
// game logic never needs a live connection to resolve.
type Player struct {
	ID   int
	Name string
	Deck []cards.Card
}

// TopCard returns the player's top card, or nil when the deck is empty.
func (p *Player) TopCard() cards.Card {
	if len(p.Deck) == 0 {
		return nil
	}
	return p.Deck[0]
}

// popTop removes and returns the top card. Callers must check the deck is
// nonempty.
func (p *Player) popTop() cards.Card {
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	return card
}
