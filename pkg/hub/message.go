// Package hub fans settings events out to websocket subscribers
// using a channel-based broadcast loop.
package hub

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types sent to subscribers.
const (
	// EventSnapshot carries every setting. Sent once on connect.
	EventSnapshot = "snapshot"
	// EventSetting carries one setting after its summary changed.
	EventSetting = "setting"
	// EventPreset names a preset that was just applied.
	EventPreset = "preset"
)

// Event is the JSON envelope written to subscribers.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// NewEvent creates an event with a fresh ID.
func NewEvent(typ string, data any) Event {
	return Event{
		ID:   uuid.New().String(),
		Type: typ,
		Time: time.Now().UTC(),
		Data: data,
	}
}

// Message is an encoded frame queued for a client
type Message struct {
	Data []byte
}

// Encode renders an event as a message.
func Encode(e Event) (Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{Data: data}, nil
}
