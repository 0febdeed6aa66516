package amqp

import (
	"encoding/json"
	"fmt"

	"fintrack/internal/events"
)

// MessageVersion is bumped when EventMessage changes incompatibly.
const MessageVersion = 1

// EventMessage is the wire form of a change event. It carries ids only; the
// consumer loads the current row from the database.
type EventMessage struct {
	events.Event
	Version int `json:"version"`
}

func NewEventMessage(e events.Event) *EventMessage {
	return &EventMessage{Event: e, Version: MessageVersion}
}

// RoutingKey is "<entity>.<action>", e.g. "transaction.created".
func (m *EventMessage) RoutingKey() string {
	return RoutingKey(m.Entity, m.Action)
}

func RoutingKey(entity events.Entity, action events.Action) string {
	return fmt.Sprintf("%s.%s", entity, action)
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON parses a message and rejects ones missing their
// routing fields.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.Action == "" {
		return nil, fmt.Errorf("event message missing entity or action")
	}
	return &msg, nil
}
