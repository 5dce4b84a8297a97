package server

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/toptrumps/internal/cards"
	"github.com/lox/toptrumps/internal/game"
	"github.com/lox/toptrumps/internal/roomcode"
)

func testCatalog(n int) []cards.Card {
	catalog := make([]cards.Card, n)
	for i := range catalog {
		catalog[i] = cards.Card{
			cards.ColumnName:  fmt.Sprintf("PM %d", i+1),
			cards.ColumnImage: fmt.Sprintf("pm%d.jpg", i+1),
			cards.StatAge:     strconv.Itoa(40 + i),
		}
	}
	return catalog
}

func testLogger() *log.Logger {
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	return logger
}

func newTestService(t *testing.T, idleExpiry time.Duration) (*RoomService, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewRoomService(testCatalog(30), 42, idleExpiry, clock, testLogger()), clock
}

func TestCreateRoom(t *testing.T) {
	service, _ := newTestService(t, 0)

	room, player, err := service.CreateRoom("Alice")
	require.NoError(t, err)
	require.NotNil(t, room)

	assert.Equal(t, 1, player.ID)
	assert.Equal(t, "Alice", player.Name)
	assert.NoError(t, roomcode.Validate(room.Code()))
	assert.Equal(t, 1, service.RoomCount())

	// First player holds the whole catalog
	views := room.PlayerViews()
	require.Len(t, views, 1)
	assert.Len(t, views[0].Deck, 30)
}

func TestCreateRoomDefaultName(t *testing.T) {
	service, _ := newTestService(t, 0)

	_, player, err := service.CreateRoom("")
	require.NoError(t, err)
	assert.Equal(t, "Player 1", player.Name)
}

func TestJoinRoom(t *testing.T) {
	service, _ := newTestService(t, 0)
	room, _, err := service.CreateRoom("Alice")
	require.NoError(t, err)

	joined, player, err := service.JoinRoom(room.Code(), "Bob")
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.Equal(t, 2, player.ID)

	views := room.PlayerViews()
	require.Len(t, views, 2)
	// 30 cards over 2 players: a preserved top plus an even share each
	assert.Equal(t, len(views[0].Deck), len(views[1].Deck))
}

func TestJoinRoomNormalizesCode(t *testing.T) {
	service, _ := newTestService(t, 0)
	room, _, err := service.CreateRoom("Alice")
	require.NoError(t, err)

	sloppy := "  " + strings.ToLower(room.Code()) + " "
	_, _, err = service.JoinRoom(sloppy, "Bob")
	assert.NoError(t, err)
}

func TestJoinRoomNotFound(t *testing.T) {
	service, _ := newTestService(t, 0)

	_, _, err := service.JoinRoom("ZZZZZ", "Bob")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomFull(t *testing.T) {
	service, _ := newTestService(t, 0)
	room, _, err := service.CreateRoom("P1")
	require.NoError(t, err)

	for i := 2; i <= game.MaxPlayers; i++ {
		_, _, err := service.JoinRoom(room.Code(), fmt.Sprintf("P%d", i))
		require.NoError(t, err)
	}

	_, _, err = service.JoinRoom(room.Code(), "P7")
	assert.ErrorIs(t, err, game.ErrRoomFull)
}

func TestJoinRoomRejectedMidRound(t *testing.T) {
	service, _ := newTestService(t, 0)
	room, _, err := service.CreateRoom("Alice")
	require.NoError(t, err)
	_, _, err = service.JoinRoom(room.Code(), "Bob")
	require.NoError(t, err)

	room.SelectStat(cards.StatAge)

	_, _, err = service.JoinRoom(room.Code(), "Carol")
	assert.ErrorIs(t, err, game.ErrRebalanceLocked)

	room.Commit()
	_, _, err = service.JoinRoom(room.Code(), "Carol")
	assert.NoError(t, err)
}

func TestUniqueCodes(t *testing.T) {
	service, _ := newTestService(t, 0)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, _, err := service.CreateRoom("P")
		require.NoError(t, err)
		require.False(t, seen[room.Code()], "duplicate code %s", room.Code())
		seen[room.Code()] = true
	}
}

func TestSweepIdle(t *testing.T) {
	service, clock := newTestService(t, 2*time.Hour)

	stale, _, err := service.CreateRoom("Alice")
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)
	fresh, _, err := service.CreateRoom("Bob")
	require.NoError(t, err)
	require.Equal(t, 2, service.RoomCount())

	// Another hour: the first room crosses the 2h idle line, the second
	// doesn't.
	clock.Advance(time.Hour)
	swept := service.SweepIdle()
	assert.Equal(t, 1, swept)
	assert.Equal(t, 1, service.RoomCount())

	_, ok := service.GetRoom(stale.Code())
	assert.False(t, ok, "stale room should be gone")
	_, ok = service.GetRoom(fresh.Code())
	assert.True(t, ok, "fresh room should remain")
}

func TestSweepDisabledByZeroExpiry(t *testing.T) {
	service, clock := newTestService(t, 0)
	_, _, err := service.CreateRoom("Alice")
	require.NoError(t, err)

	clock.Advance(1000 * time.Hour)
	assert.Equal(t, 0, service.SweepIdle())
	assert.Equal(t, 1, service.RoomCount())
}

func TestTouchDefersSweep(t *testing.T) {
	service, clock := newTestService(t, time.Hour)
	room, _, err := service.CreateRoom("Alice")
	require.NoError(t, err)

	clock.Advance(55 * time.Minute)
	service.Touch(room)

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 0, service.SweepIdle())
	assert.Equal(t, 1, service.RoomCount())
}
