// Package protocol defines the JSON messages exchanged between the game
// server and a presentation client over the websocket bridge.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the type of message.
type MessageType string

// Client to server message types
const (
	TypeNewGame    MessageType = "new_game"
	TypeLoadGame   MessageType = "load_game"
	TypeListGames  MessageType = "list_games"
	TypeCommand    MessageType = "command"
	TypeGetState   MessageType = "get_state"
	TypeGetHistory MessageType = "get_history"
)

// Server to client message types
const (
	TypeWelcome       MessageType = "welcome"
	TypeGameCreated   MessageType = "game_created"
	TypeGameList      MessageType = "game_list"
	TypeState         MessageType = "state"
	TypeCommandResult MessageType = "command_result"
	TypeHistory       MessageType = "history"
	TypeGameOver      MessageType = "game_over"
	TypeError         MessageType = "error"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// ParsePayload unmarshals the payload into the given type. An absent
// payload leaves v untouched.
func (m *Message) ParsePayload(v interface{}) error {
	if len(m.Payload) == 0 || string(m.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// Decode parses a raw envelope.
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ErrorCode represents an error type. Rule violations use the engine's
// rule codes, e.g. "not_your_turn" or "insufficient_moves".
type ErrorCode string

const (
	ErrCodeInvalidMessage ErrorCode = "invalid_message"
	ErrCodeUnknownType    ErrorCode = "unknown_type"
	ErrCodeNoGame         ErrorCode = "no_game"
	ErrCodeGameNotFound   ErrorCode = "game_not_found"
	ErrCodeGameOver       ErrorCode = "game_over"
	ErrCodeNotYourSeat    ErrorCode = "not_your_seat"
	ErrCodeUnknownID      ErrorCode = "unknown_id"
	ErrCodeRateLimited    ErrorCode = "rate_limited"
	ErrCodeInternalError  ErrorCode = "internal_error"
)

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
