package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/toptrumps/internal/cards"
	"github.com/lox/toptrumps/internal/game"
	"github.com/lox/toptrumps/internal/roomcode"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	rooms := NewRoomService(testCatalog(30), 42, 0, quartz.NewReal(), testLogger())
	return NewServer("127.0.0.1:0", rooms, quartz.NewReal(), testLogger())
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestCreateRoomEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	w := postJSON(t, srv.Routes(), "/rooms", CreateRoomRequest{Name: "Alice"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp CreateRoomResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NoError(t, roomcode.Validate(resp.Code))
	require.Len(t, resp.Players, 1)
	assert.Equal(t, "Alice", resp.Players[0].Name)
	assert.Len(t, resp.Players[0].Deck, 30)
}

func TestCreateRoomEndpointBadBody(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJoinRoomEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	routes := srv.Routes()

	w := postJSON(t, routes, "/rooms", CreateRoomRequest{Name: "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	var created CreateRoomResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = postJSON(t, routes, "/rooms/join", JoinRoomRequest{Code: created.Code, Name: "Bob"})
	require.Equal(t, http.StatusOK, w.Code)

	var joined JoinRoomResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&joined))
	assert.Equal(t, 2, joined.PlayerID)
	require.Len(t, joined.Players, 2)
	assert.Equal(t, len(joined.Players[0].Deck), len(joined.Players[1].Deck))
}

func TestJoinRoomEndpointNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	w := postJSON(t, srv.Routes(), "/rooms/join", JoinRoomRequest{Code: "ZZZZZ", Name: "Bob"})
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Room not found", resp.Error)
}

func TestJoinRoomEndpointFull(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	routes := srv.Routes()

	w := postJSON(t, routes, "/rooms", CreateRoomRequest{Name: "P1"})
	require.Equal(t, http.StatusOK, w.Code)
	var created CreateRoomResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	for i := 2; i <= game.MaxPlayers; i++ {
		w = postJSON(t, routes, "/rooms/join", JoinRoomRequest{Code: created.Code, Name: fmt.Sprintf("P%d", i)})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = postJSON(t, routes, "/rooms/join", JoinRoomRequest{Code: created.Code, Name: "P7"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Room is full (max 6 players)", resp.Error)
}

func TestJoinRoomEndpointMidRound(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	routes := srv.Routes()

	w := postJSON(t, routes, "/rooms", CreateRoomRequest{Name: "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	var created CreateRoomResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = postJSON(t, routes, "/rooms/join", JoinRoomRequest{Code: created.Code, Name: "Bob"})
	require.Equal(t, http.StatusOK, w.Code)

	room, ok := srv.rooms.GetRoom(created.Code)
	require.True(t, ok)
	room.SelectStat(cards.StatAge)

	w = postJSON(t, routes, "/rooms/join", JoinRoomRequest{Code: created.Code, Name: "Carol"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
