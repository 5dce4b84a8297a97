package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lox/toptrumps/internal/game"
)

// Routes builds the HTTP surface: room creation and joining, the WebSocket
// endpoint, and a health check.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/rooms", s.handleCreateRoom)
	r.Post("/rooms/join", s.handleJoinRoom)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, _, err := s.rooms.CreateRoom(req.Name)
	if err != nil {
		s.logger.Error("Failed to create room", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	// Give any already-connected clients the fresh state; new clients get
	// it when they bind over the socket.
	s.broadcastEvent(room.Code(), room.Snapshot())

	writeJSON(w, http.StatusOK, CreateRoomResponse{
		Code:    room.Code(),
		Players: room.PlayerViews(),
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, player, err := s.rooms.JoinRoom(req.Code, req.Name)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "Room not found")
		return
	case errors.Is(err, game.ErrRoomFull):
		writeError(w, http.StatusBadRequest, "Room is full (max 6 players)")
		return
	case errors.Is(err, game.ErrRebalanceLocked):
		writeError(w, http.StatusConflict, "Room is mid-round, try again shortly")
		return
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, "Game is already over")
		return
	case err != nil:
		s.logger.Error("Failed to join room", "error", err, "code", req.Code)
		writeError(w, http.StatusInternalServerError, "failed to join room")
		return
	}

	s.broadcastEvent(room.Code(), room.Snapshot())
	s.broadcastEvent(room.Code(), room.PlayerList())

	writeJSON(w, http.StatusOK, JoinRoomResponse{
		PlayerID: player.ID,
		Players:  room.PlayerViews(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
