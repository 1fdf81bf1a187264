package protocol

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
)

const maxPayloadSize = 1 * 1024 * 1024 // 1MB max inbound command size

// ErrTooLarge is returned when an inbound frame exceeds maxPayloadSize.
var ErrTooLarge = errors.New("payload too large")

// Envelope is the only wire shape the hub emits. Every outbound frame is
// exactly one JSON-encoded envelope.
type Envelope struct {
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"origin"`
	Nickname  string    `json:"nickname"`
	Data      any       `json:"data"`
}

// Command is the only shape accepted from a broadcast-mode peer.
type Command struct {
	Command string `json:"command"`
	Params  Params `json:"params"`
}

// Params carries the command-specific keys. Each command validates its own
// required key; absent keys decode to the empty string.
type Params struct {
	Message  string `json:"message,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Position string `json:"position,omitempty"`
}

// Movement is the structured payload fanned out for game position updates.
// Unlike chat traffic it is not wrapped as text; it rides in Envelope.Data
// as an object.
type Movement struct {
	Position string `json:"position"`
	Model    string `json:"model"`
}

// GameEvent is a structured roster event for the game extension.
type GameEvent struct {
	Action      string `json:"action"`
	Nickname    string `json:"nickname,omitempty"`
	OldNickname string `json:"old_nickname,omitempty"`
	NewNickname string `json:"new_nickname,omitempty"`
}

// NewEnvelope stamps data with the emission time and attribution.
func NewEnvelope(data any, origin, nickname string) Envelope {
	return Envelope{
		Timestamp: time.Now(),
		Origin:    origin,
		Nickname:  nickname,
		Data:      data,
	}
}

// EncodeEnvelope marshals an envelope for the wire.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeCommand parses an inbound broadcast-mode frame. A frame that is not
// a JSON object of the command shape is a decode failure; the caller answers
// it with a sender-only error envelope and nothing else happens.
func DecodeCommand(data []byte) (Command, error) {
	if len(data) > maxPayloadSize {
		return Command{}, ErrTooLarge
	}
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}
