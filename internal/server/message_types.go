package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeJoinRoom  MessageType = "join-room"
	MessageTypePlayRound MessageType = "play-round"
	MessageTypeNextRound MessageType = "next-round"

	// Server to client messages
	MessageTypeRoomState   MessageType = "room-state"
	MessageTypePlayerList  MessageType = "player-list"
	MessageTypeRoundResult MessageType = "round-result"
	MessageTypeGameOver    MessageType = "game-over"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
