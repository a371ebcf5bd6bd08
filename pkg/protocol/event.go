// Package protocol defines the data-channel event types exchanged with the
// realtime model. Events are JSON text frames discriminated by a "type" field.
package protocol

import (
	"encoding/json"
	"fmt"
)

// EventType identifies the type of data-channel event
type EventType string

const (
	// Model → client events
	TypeTextDelta    EventType = "response.text.delta" // Partial transcript fragment
	TypeTextDone     EventType = "response.text.done"  // End of the current turn
	TypeFunctionCall EventType = "function.call"       // Tool invocation request

	// Client → model events
	TypeItemCreate     EventType = "conversation.item.create" // User text input
	TypeFunctionResult EventType = "function.result"          // Tool call succeeded
	TypeFunctionError  EventType = "function.error"           // Tool call failed
)

// Event is the base wrapper for all data-channel events.
// Fields beyond Type are populated depending on the event type;
// unrecognized types carry only Type and are ignored by consumers.
type Event struct {
	Type EventType `json:"type"`

	// Text is the transcript fragment for TypeTextDelta.
	Text string `json:"text,omitempty"`

	// Function carries the call payload for function events.
	Function *FunctionPayload `json:"function,omitempty"`

	// Item carries the conversation item for TypeItemCreate.
	Item *Item `json:"item,omitempty"`
}

// FunctionPayload is the function-call body shared by the three
// function event shapes.
type FunctionPayload struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Item is the inner "item" object of a conversation.item.create event.
type Item struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []ItemContent `json:"content,omitempty"`
}

// ItemContent is one content part of a conversation item.
type ItemContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Bytes returns the JSON-encoded event
func (e *Event) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvent parses a JSON event from a data-channel frame.
// An unknown type is not an error; callers check Type and skip
// what they do not understand.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return &ev, nil
}
