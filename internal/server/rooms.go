package server

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/toptrumps/internal/cards"
	"github.com/lox/toptrumps/internal/game"
	"github.com/lox/toptrumps/internal/randutil"
	"github.com/lox/toptrumps/internal/roomcode"
)

// ErrRoomNotFound is returned when a room code doesn't match an active room.
var ErrRoomNotFound = errors.New("room not found")

// RoomService is the room registry: it creates and looks up rooms by code
// and sweeps abandoned ones. State mutation inside a room is serialized by
// the room itself; the service mutex only guards the map.
type RoomService struct {
	logger     *log.Logger
	clock      quartz.Clock
	catalog    []cards.Card
	codes      *roomcode.Generator
	idleExpiry time.Duration

	mu    sync.RWMutex
	rooms map[string]*game.Room
	rng   *rand.Rand
}

// NewRoomService constructs a registry over the valid catalog cards. The
// seed drives room codes and every room's shuffle sequence, so a fixed seed
// makes the whole service deterministic under test.
func NewRoomService(catalog []cards.Card, seed int64, idleExpiry time.Duration, clock quartz.Clock, logger *log.Logger) *RoomService {
	rng := randutil.New(seed)
	return &RoomService{
		logger:     logger.WithPrefix("rooms"),
		clock:      clock,
		catalog:    catalog,
		codes:      roomcode.NewGenerator(rng),
		idleExpiry: idleExpiry,
		rooms:      make(map[string]*game.Room),
		rng:        rng,
	}
}

// CreateRoom generates a unique code, creates a room with one seated player
// and an initial deal, and registers it.
func (s *RoomService) CreateRoom(name string) (*game.Room, game.PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.codes.Generate()
	for _, exists := s.rooms[code]; exists; _, exists = s.rooms[code] {
		code = s.codes.Generate()
	}

	room := game.NewRoom(code, s.catalog, randutil.New(s.rng.Int64()), s.logger)
	player, err := room.AddPlayer(name)
	if err != nil {
		return nil, game.PlayerInfo{}, err
	}
	room.Touch(s.clock.Now())
	s.rooms[code] = room

	s.logger.Info("Room created", "code", code, "player", player.Name)
	return room, player, nil
}

// JoinRoom seats a new player in an existing room, rebalancing decks.
func (s *RoomService) JoinRoom(code, name string) (*game.Room, game.PlayerInfo, error) {
	room, ok := s.GetRoom(code)
	if !ok {
		return nil, game.PlayerInfo{}, ErrRoomNotFound
	}

	player, err := room.AddPlayer(name)
	if err != nil {
		return nil, game.PlayerInfo{}, err
	}
	room.Touch(s.clock.Now())

	s.logger.Info("Room joined", "code", room.Code(), "player", player.ID, "name", player.Name)
	return room, player, nil
}

// GetRoom looks up a room by code, normalizing user-typed input.
func (s *RoomService) GetRoom(code string) (*game.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomcode.Normalize(code)]
	return room, ok
}

// Touch records activity on a room for idle sweeping.
func (s *RoomService) Touch(room *game.Room) {
	room.Touch(s.clock.Now())
}

// RemoveRoom drops a room from the registry.
func (s *RoomService) RemoveRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomcode.Normalize(code))
}

// RoomCount returns the number of active rooms.
func (s *RoomService) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// RunSweeper periodically removes rooms idle past the configured expiry.
// Blocks until the context is canceled. A zero expiry disables sweeping.
func (s *RoomService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if s.idleExpiry <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := s.clock.NewTicker(interval, "room-sweeper")
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepIdle()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SweepIdle removes every room whose last activity is older than the idle
// expiry. Returns the swept count.
func (s *RoomService) SweepIdle() int {
	if s.idleExpiry <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.idleExpiry)

	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for code, room := range s.rooms {
		if room.LastActive().Before(cutoff) {
			delete(s.rooms, code)
			swept++
			s.logger.Info("Swept idle room", "code", code, "over", room.Over())
		}
	}
	return swept
}
