package network

import (
	"errors"

	json "github.com/json-iterator/go"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/physics"
)

// MessageType identifies the semantic meaning of a message
type MessageType string

const (
	// Server to client
	MsgWelcome   MessageType = "welcome"   // Session id on connect
	MsgSnapshot  MessageType = "snapshot"  // Full world state
	MsgCollision MessageType = "collision" // Contacts since the last broadcast
	MsgError     MessageType = "error"     // Rejected client message

	// Client to server
	MsgPointer MessageType = "pointer" // Boundary drag and hover
	MsgParam   MessageType = "param"   // Slider change
	MsgSpawn   MessageType = "spawn"   // New body
	MsgPause   MessageType = "pause"   // Pause or resume
)

// ErrMalformedMessage is returned for frames that are not a valid envelope
var ErrMalformedMessage = errors.New("malformed message")

// Message is the envelope of every frame; Payload is decoded per Type
type Message struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PointerAction is the phase of a pointer gesture
type PointerAction string

const (
	PointerDown   PointerAction = "down"
	PointerMove   PointerAction = "move"
	PointerUp     PointerAction = "up"
	PointerCancel PointerAction = "cancel"
)

// PointerPayload carries world coordinates
type PointerPayload struct {
	Action PointerAction `json:"action"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
}

type ParamPayload struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type PausePayload struct {
	Paused bool `json:"paused"`
}

type WelcomePayload struct {
	ClientID string `json:"client_id"`
	Tick     uint64 `json:"tick"`
}

type CollisionPayload struct {
	Tick     uint64            `json:"tick"`
	Contacts []physics.Contact `json:"contacts"`
}

type ErrorPayload struct {
	Seq     uint64 `json:"seq,omitempty"` // Seq of the rejected message
	Message string `json:"message"`
}

// Encode frames payload under msgType
func Encode(msgType MessageType, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}

// Decode parses an envelope, leaving Payload raw
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, errors.Join(ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return Message{}, ErrMalformedMessage
	}
	return msg, nil
}

// DecodePayload unmarshals msg.Payload into v
func DecodePayload(msg Message, v any) error {
	if len(msg.Payload) == 0 {
		return ErrMalformedMessage
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return errors.Join(ErrMalformedMessage, err)
	}
	return nil
}

// EncodeSnapshot frames a world snapshot
func EncodeSnapshot(s *engine.Snapshot) ([]byte, error) {
	return Encode(MsgSnapshot, s)
}
