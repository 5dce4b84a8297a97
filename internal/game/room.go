package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/toptrumps/internal/cards"
)

// MaxPlayers is the per-room seat cap.
const MaxPlayers = 6

var (
	// ErrRoomFull is returned when a join would exceed MaxPlayers.
	ErrRoomFull = errors.New("room is full")
	// ErrRebalanceLocked is returned when a join arrives while a round
	// outcome is awaiting commit; redistributing decks mid-round would
	// disturb the announced comparison.
	ErrRebalanceLocked = errors.New("room is awaiting a round commit")
	// ErrGameOver is returned for joins after the game has ended.
	ErrGameOver = errors.New("game is over")
)

// Phase is the round protocol state.
type Phase int

const (
	// Open accepts a stat selection to start a round.
	Open Phase = iota
	// AwaitingCommit means an outcome was announced but decks haven't
	// moved; only a commit is accepted as a state-changing input.
	AwaitingCommit
)

// String returns the string representation of a phase.
func (p Phase) String() string {
	switch p {
	case Open:
		return "open"
	case AwaitingCommit:
		return "awaiting-commit"
	default:
		return "unknown"
	}
}

// pendingOutcome records an announced round between the two protocol halves.
// winnerIndex is -1 for a tie or no contest.
type pendingOutcome struct {
	winnerIndex int
	tied        bool
	stat        string
}

// Room owns one game's mutable state. All state-changing methods serialize
// on the room mutex, which is the per-room single-owner execution context:
// two actions on the same room never interleave, and rooms are independent.
type Room struct {
	code    string
	catalog []cards.Card
	rng     *rand.Rand
	logger  *log.Logger

	mu          sync.Mutex
	players     []*Player
	tiePile     []cards.Card
	unusedPile  []cards.Card
	totalDealt  int
	dealt       bool
	phase       Phase
	currentTurn int
	pending     *pendingOutcome
	over        bool
	champion    *Player
	lastActive  time.Time
}

// NewRoom creates an empty room over the valid card catalog. The rng drives
// every shuffle in this room; pass a seeded one for deterministic tests.
func NewRoom(code string, catalog []cards.Card, rng *rand.Rand, logger *log.Logger) *Room {
	return &Room{
		code:    code,
		catalog: catalog,
		rng:     rng,
		logger:  logger.WithPrefix("room").With("code", code),
	}
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// AddPlayer seats a new player and deals. The first deal distributes the
// whole catalog; later joins rebalance existing decks while preserving each
// player's visible top card. Join order is turn order.
func (r *Room) AddPlayer(name string) (PlayerInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return PlayerInfo{}, ErrGameOver
	}
	if r.phase == AwaitingCommit {
		return PlayerInfo{}, ErrRebalanceLocked
	}
	if len(r.players) >= MaxPlayers {
		return PlayerInfo{}, ErrRoomFull
	}

	id := len(r.players) + 1
	if name == "" {
		name = fmt.Sprintf("Player %d", id)
	}
	player := &Player{ID: id, Name: name}
	r.players = append(r.players, player)

	if r.dealt {
		r.rebalance()
	} else {
		r.dealInitial()
	}

	r.logger.Info("Player joined", "player", id, "name", name, "players", len(r.players), "deck", len(player.Deck))
	return PlayerInfo{ID: player.ID, Name: player.Name}, nil
}

// HasPlayer reports whether a player id is seated in the room.
func (r *Room) HasPlayer(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// RenamePlayer updates a player's display name, as sent on the socket-level
// join-room bind. Unknown ids are ignored.
func (r *Room) RenamePlayer(id int, name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.ID == id {
			p.Name = name
			return
		}
	}
}

// SelectStat runs the announce half of the round protocol: resolve the
// comparison, record the pending outcome, advance the turn, and report the
// result without moving a single card. Valid only while Open; in
// AwaitingCommit it
// re-emits a reminder instead.
func (r *Room) SelectStat(stat string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return []Event{r.gameOverEvent()}
	}

	if r.phase == AwaitingCommit {
		return []Event{RoundResultEvent{
			Code:           r.code,
			Players:        r.playerViews(),
			Message:        "Click Next Round to continue",
			CurrentPlayer:  r.currentTurn,
			AwaitNextRound: true,
		}}
	}

	outcome := resolveRound(r.players, stat)
	r.pending = &pendingOutcome{winnerIndex: outcome.WinnerIndex, tied: outcome.Tied, stat: stat}

	switch {
	case outcome.WinnerIndex >= 0:
		r.currentTurn = outcome.WinnerIndex
	case outcome.Tied:
		// attacker chooses again
	default:
		r.currentTurn = (r.currentTurn + 1) % len(r.players)
	}
	r.phase = AwaitingCommit

	var winnerID *int
	message := "No winner this round."
	if outcome.Tied {
		message = "It's a tie. Attacker chooses again"
	} else if outcome.WinnerIndex >= 0 {
		winner := r.players[outcome.WinnerIndex]
		winnerID = &winner.ID
		message = fmt.Sprintf("%s wins - %s", winner.Name, cards.Label(stat))
	}

	r.logger.Debug("Round announced", "stat", stat, "winnerIndex", outcome.WinnerIndex, "tied", outcome.Tied)

	statCopy := stat
	return []Event{RoundResultEvent{
		Code:           r.code,
		Stat:           &statCopy,
		Players:        r.playerViews(),
		Winner:         winnerID,
		Message:        message,
		CurrentPlayer:  r.currentTurn,
		AwaitNextRound: true,
	}}
}

// Commit runs the movement half of the round protocol: tie outcomes push
// every present top card onto the tie pile, a winner takes all tops plus the
// accumulated tie pile, a no-contest moves nothing. Valid only while
// AwaitingCommit; while Open it is a no-op notice, which makes duplicate or
// out-of-order commit messages harmless.
func (r *Room) Commit() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return []Event{r.gameOverEvent()}
	}

	if r.phase != AwaitingCommit {
		return []Event{RoundResultEvent{
			Code:          r.code,
			Players:       r.playerViews(),
			Message:       "Round already in progress",
			CurrentPlayer: r.currentTurn,
		}}
	}

	outcome := r.pending
	switch {
	case outcome.tied:
		for _, p := range r.players {
			if len(p.Deck) > 0 {
				r.tiePile = append(r.tiePile, p.popTop())
			}
		}
	case outcome.winnerIndex >= 0:
		winner := r.players[outcome.winnerIndex]
		var taken []cards.Card
		for _, p := range r.players {
			if len(p.Deck) > 0 {
				taken = append(taken, p.popTop())
			}
		}
		taken = append(taken, r.tiePile...)
		r.tiePile = nil
		winner.Deck = append(winner.Deck, taken...)
	default:
		// no valid outcome, nothing moves
	}

	r.pending = nil
	r.phase = Open

	events := []Event{RoundResultEvent{
		Code:          r.code,
		Players:       r.playerViews(),
		Message:       "Next round started",
		CurrentPlayer: r.currentTurn,
	}}

	if champion := r.detectGameOver(); champion != nil {
		r.over = true
		r.champion = champion
		r.logger.Info("Game over", "champion", champion.ID, "name", champion.Name)
		events = append(events, r.gameOverEvent())
	}

	return events
}

// detectGameOver returns the champion, or nil while play continues. The
// game ends when one player holds every dealt card, or when only one player
// has cards left. Caller holds the room lock.
func (r *Room) detectGameOver() *Player {
	var active []*Player
	for _, p := range r.players {
		if len(p.Deck) > 0 {
			active = append(active, p)
		}
	}
	for _, p := range r.players {
		if r.totalDealt > 0 && len(p.Deck) == r.totalDealt {
			return p
		}
	}
	if len(active) == 1 {
		return active[0]
	}
	return nil
}

func (r *Room) gameOverEvent() GameOverEvent {
	return GameOverEvent{
		Code:    r.code,
		Winner:  r.champion.ID,
		Message: fmt.Sprintf("%s is the new Prime Minister!", r.champion.Name),
	}
}

// Snapshot returns the full room state event.
func (r *Room) Snapshot() RoomStateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomStateEvent{
		Code:          r.code,
		Players:       r.playerViews(),
		CurrentPlayer: r.currentTurn,
	}
}

// PlayerList returns the deckless seating event.
func (r *Room) PlayerList() PlayerListEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]PlayerInfo, len(r.players))
	for i, p := range r.players {
		infos[i] = PlayerInfo{ID: p.ID, Name: p.Name}
	}
	return PlayerListEvent{Players: infos}
}

// PlayerViews returns player snapshots with decks, for HTTP responses.
func (r *Room) PlayerViews() []PlayerView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerViews()
}

// playerViews snapshots every player with a copied deck slice. Caller holds
// the room lock.
func (r *Room) playerViews() []PlayerView {
	views := make([]PlayerView, len(r.players))
	for i, p := range r.players {
		deck := make([]cards.Card, len(p.Deck))
		copy(deck, p.Deck)
		views[i] = PlayerView{ID: p.ID, Name: p.Name, Deck: deck}
	}
	return views
}

// Touch records activity for the registry's idle sweep.
func (r *Room) Touch(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = t
}

// LastActive returns the last recorded activity time.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// Over reports whether a game-over event has been emitted for this room.
func (r *Room) Over() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.over
}
