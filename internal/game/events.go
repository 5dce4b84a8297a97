package game

import "github.com/lox/toptrumps/internal/cards"

// Event is an outbound payload produced by a room transition. The game core
// never performs I/O; the server broadcasts events after the transition
// completes.
type Event interface {
	EventType() string
}

// PlayerView is a player as serialized to clients, deck included. The deck
// is a snapshot slice; the cards themselves are shared read-only.
type PlayerView struct {
	ID   int          `json:"id"`
	Name string       `json:"name"`
	Deck []cards.Card `json:"deck"`
}

// PlayerInfo is the deckless form used in player lists.
type PlayerInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RoomStateEvent carries the full room snapshot after create/join/bind.
type RoomStateEvent struct {
	Code          string       `json:"code"`
	Players       []PlayerView `json:"players"`
	CurrentPlayer int          `json:"currentPlayer"`
}

func (RoomStateEvent) EventType() string { return "room-state" }

// PlayerListEvent announces the current seating without decks.
type PlayerListEvent struct {
	Players []PlayerInfo `json:"players"`
}

func (PlayerListEvent) EventType() string { return "player-list" }

// RoundResultEvent is emitted on both halves of the round protocol: the
// announce step (stat set, decks unchanged, awaitNextRound true) and the
// commit step (stat null, decks moved, awaitNextRound false). Winner is the
// winning player's id, null on a tie or no contest.
type RoundResultEvent struct {
	Code           string       `json:"code"`
	Stat           *string      `json:"stat"`
	Players        []PlayerView `json:"players"`
	Winner         *int         `json:"winner"`
	Message        string       `json:"message"`
	CurrentPlayer  int          `json:"currentPlayer"`
	AwaitNextRound bool         `json:"awaitNextRound"`
}

func (RoundResultEvent) EventType() string { return "round-result" }

// GameOverEvent is terminal: once emitted, the room rejects further
// state-changing inputs and only re-emits this event.
type GameOverEvent struct {
	Code    string `json:"code"`
	Winner  int    `json:"winner"`
	Message string `json:"message"`
}

func (GameOverEvent) EventType() string { return "game-over" }
