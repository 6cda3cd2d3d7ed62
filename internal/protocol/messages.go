package protocol

import (
	"encoding/json"
	"time"

	"github.com/cjquines/cfish/internal/fish"
)

// MessageType identifies a transport message
type MessageType string

const (
	// Client -> Server
	TypeJoin   MessageType = "join"
	TypeRename MessageType = "rename"
	TypeReset  MessageType = "reset"
	TypeEvent  MessageType = "event"

	// Server -> Client. join, rename, reset and event are reused with
	// server payloads.
	TypeUsers MessageType = "users"
	TypeLeave MessageType = "leave"
	TypeError MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData
const (
	CodeInvalidMessage = "invalid_message"
	CodeNotJoined      = "not_joined"
	CodeAlreadyJoined  = "already_joined"
	CodeForbidden      = "forbidden"
	CodeRejected       = "rejected"
	CodeRoomLimit      = "room_limit"
	CodeUnavailable    = "unavailable"
)

// Message is the frame exchanged over the websocket
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// NewEventMessage wraps an event in its envelope
func NewEventMessage(ev Event) (*Message, error) {
	data, err := MarshalEvent(ev)
	if err != nil {
		return nil, err
	}
	return &Message{Type: TypeEvent, Data: data, Timestamp: time.Now()}, nil
}

// NewErrorMessage builds an error frame
func NewErrorMessage(code, message string) *Message {
	// ErrorData always marshals.
	msg, _ := NewMessage(TypeError, ErrorData{Code: code, Message: message})
	return msg
}

// Event decodes the envelope carried by an event message
func (m *Message) Event() (Event, error) {
	return UnmarshalEvent(m.Data)
}

// Decode unmarshals the payload into v
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(m.Data, v)
}

// User is a connected user as shown to the room
type User struct {
	ID   fish.UserID `json:"id"`
	Name string      `json:"name"`
}

// Client -> Server payloads

type JoinData struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

type RenameData struct {
	Name string `json:"name"`
}

// Server -> Client payloads

type UsersData struct {
	Users []User `json:"users"`
}

// JoinedData announces a user entering the room. The joiner learns its own
// id from the viewer of the reset snapshot that follows.
type JoinedData struct {
	User User `json:"user"`
}

type RenamedData struct {
	User fish.UserID `json:"user"`
	Name string      `json:"name"`
}

type LeaveData struct {
	User fish.UserID `json:"user"`
}

// ResetData carries a snapshot redacted for the recipient
type ResetData struct {
	State fish.State `json:"state"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
