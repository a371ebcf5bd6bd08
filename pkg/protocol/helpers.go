package protocol

// =============================================================================
// Helper functions for creating outbound events
// =============================================================================

// NewItemCreateEvent creates a conversation.item.create event carrying
// a single input_text content part authored by the user.
func NewItemCreateEvent(itemID, text string) *Event {
	return &Event{
		Type: TypeItemCreate,
		Item: &Item{
			ID:   itemID,
			Type: "message",
			Role: "user",
			Content: []ItemContent{
				{Type: "input_text", Text: text},
			},
		},
	}
}

// NewFunctionResultEvent creates a function.result event
func NewFunctionResultEvent(name, result string) *Event {
	return &Event{
		Type:     TypeFunctionResult,
		Function: &FunctionPayload{Name: name, Result: result},
	}
}

// NewFunctionErrorEvent creates a function.error event.
// The description must not leak internal error detail.
func NewFunctionErrorEvent(name, description string) *Event {
	return &Event{
		Type:     TypeFunctionError,
		Function: &FunctionPayload{Name: name, Error: description},
	}
}
