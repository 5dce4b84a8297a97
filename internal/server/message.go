package server

import (
	"encoding/json"
	"time"

	"github.com/lox/toptrumps/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message stamped with the given time
func NewMessage(messageType MessageType, data interface{}, at time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: at,
	}, nil
}

// Client → Server Messages

type JoinRoomData struct {
	Code     string `json:"code"`
	PlayerID int    `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

type PlayRoundData struct {
	Code string `json:"code"`
	Stat string `json:"stat"`
}

type NextRoundData struct {
	Code string `json:"code"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTP payloads

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type CreateRoomResponse struct {
	Code    string            `json:"code"`
	Players []game.PlayerView `json:"players"`
}

type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type JoinRoomResponse struct {
	PlayerID int               `json:"playerId"`
	Players  []game.PlayerView `json:"players"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
