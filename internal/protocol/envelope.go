package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Envelope types exchanged over /ws.
const (
	TypeInitialStatus    = "initialStatus"
	TypeGetInitialStatus = "getInitialStatus"
	TypeUpdateStatus     = "updateStatus"
	TypeStatusUpdated    = "statusUpdated"
)

// Message is one of InitialStatus, GetInitialStatus, UpdateStatus or
// StatusUpdated. The set is closed: only this package can add members.
type Message interface {
	MessageType() string
	isMessage()
}

// RoomState pairs a room id with a status token.
type RoomState struct {
	Room   string `json:"room"`
	Status string `json:"status"`
}

// InitialStatus is the full snapshot, server to client.
type InitialStatus struct {
	Vocabulary Vocabulary
	Rooms      []RoomState // configuration order
}

// GetInitialStatus asks for a fresh snapshot, client to server.
type GetInitialStatus struct{}

// UpdateStatus asks to change one room, client to server.
// Status is the raw client token and is decoded by the receiver.
type UpdateStatus struct {
	Room   string
	Status string
}

// StatusUpdated announces an accepted change, server to every client.
type StatusUpdated struct {
	Vocabulary Vocabulary
	Room       string
	Status     string
}

func (InitialStatus) MessageType() string    { return TypeInitialStatus }
func (GetInitialStatus) MessageType() string { return TypeGetInitialStatus }
func (UpdateStatus) MessageType() string     { return TypeUpdateStatus }
func (StatusUpdated) MessageType() string    { return TypeStatusUpdated }

func (InitialStatus) isMessage()    {}
func (GetInitialStatus) isMessage() {}
func (UpdateStatus) isMessage()     {}
func (StatusUpdated) isMessage()    {}

// wireEnvelope is the JSON shape shared by every message type.
type wireEnvelope struct {
	Type       string                                 `json:"type"`
	Vocabulary Vocabulary                             `json:"vocabulary,omitempty"`
	Data       *orderedmap.OrderedMap[string, string] `json:"data,omitempty"`
	Room       string                                 `json:"room,omitempty"`
	Status     *string                                `json:"status,omitempty"`
}

// ErrUnknownType is wrapped by ParseError when the type tag is not recognized.
var ErrUnknownType = errors.New("unknown message type")

// ParseError reports an inbound frame that could not be decoded.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse envelope: %s: %v", e.Reason, e.Err)
	}
	return "parse envelope: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseEnvelope decodes one frame into its Message.
func ParseEnvelope(data []byte) (Message, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ParseError{Reason: "malformed json", Err: err}
	}

	switch env.Type {
	case TypeGetInitialStatus:
		return GetInitialStatus{}, nil

	case TypeUpdateStatus:
		if env.Room == "" {
			return nil, &ParseError{Reason: "updateStatus: missing room"}
		}
		if env.Status == nil {
			return nil, &ParseError{Reason: "updateStatus: missing status"}
		}
		return UpdateStatus{Room: env.Room, Status: *env.Status}, nil

	case TypeStatusUpdated:
		if env.Room == "" || env.Status == nil {
			return nil, &ParseError{Reason: "statusUpdated: missing room or status"}
		}
		return StatusUpdated{Vocabulary: env.Vocabulary, Room: env.Room, Status: *env.Status}, nil

	case TypeInitialStatus:
		if env.Data == nil {
			return nil, &ParseError{Reason: "initialStatus: missing data"}
		}
		rooms := make([]RoomState, 0, env.Data.Len())
		for p := env.Data.Oldest(); p != nil; p = p.Next() {
			rooms = append(rooms, RoomState{Room: p.Key, Status: p.Value})
		}
		return InitialStatus{Vocabulary: env.Vocabulary, Rooms: rooms}, nil

	case "":
		return nil, &ParseError{Reason: "missing type"}

	default:
		return nil, &ParseError{Reason: fmt.Sprintf("type %q", env.Type), Err: ErrUnknownType}
	}
}

// Encode serializes m into its wire envelope.
func Encode(m Message) ([]byte, error) {
	env := wireEnvelope{Type: m.MessageType()}

	switch msg := m.(type) {
	case InitialStatus:
		env.Vocabulary = msg.Vocabulary
		env.Data = orderedmap.New[string, string](len(msg.Rooms))
		for _, rs := range msg.Rooms {
			env.Data.Set(rs.Room, rs.Status)
		}
	case GetInitialStatus:
	case UpdateStatus:
		env.Room = msg.Room
		env.Status = &msg.Status
	case StatusUpdated:
		env.Vocabulary = msg.Vocabulary
		env.Room = msg.Room
		env.Status = &msg.Status
	default:
		return nil, fmt.Errorf("encode: unsupported message %T", m)
	}

	return json.Marshal(env)
}
