// Package tools defines the payment actions the assistant may invoke and
// executes them against Stripe. The allow-list is fixed; arguments are
// validated here, not by the bridge.
package tools

import (
	"context"
	"errors"
	"fmt"
)

// Tool names the assistant is allowed to call.
const (
	ToolCreatePaymentLink = "create_payment_link"
	ToolCreateProduct     = "create_product"
	ToolCreatePrice       = "create_price"
)

// ErrUnknownTool indicates the invocation named a tool outside the allow-list.
var ErrUnknownTool = errors.New("tools: unknown tool")

// ExecutionError indicates a tool invocation failed. The bridge converts
// it into a generic function-error frame; the detail stays in local logs.
type ExecutionError struct {
	// Tool is the invoked tool name.
	Tool string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tools: %s failed: %v", e.Tool, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Invocation is a single model-initiated tool call. ID correlates the
// call across the wire event, the relay and the external action, so a
// retry layer can be added later without double-charging.
type Invocation struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Executor performs the side-effecting action for one invocation.
// Implementations are stateless per call and execute at most once;
// failed invocations are not retried.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) (string, error)
}

// Definition describes one tool to the realtime session.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Definitions returns the advertised tool schemas, matching the
// executor's allow-list.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        ToolCreatePaymentLink,
			Description: "Create a shareable Stripe payment link for an existing price.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"price": map[string]any{
						"type":        "string",
						"description": "ID of the price to sell",
					},
					"quantity": map[string]any{
						"type":        "integer",
						"description": "Quantity of the item, defaults to 1",
					},
				},
				"required": []string{"price"},
			},
		},
		{
			Name:        ToolCreateProduct,
			Description: "Create a Stripe product for an item on the menu.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Product name",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Optional product description",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        ToolCreatePrice,
			Description: "Create a Stripe price, in JPY, for an existing product.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product": map[string]any{
						"type":        "string",
						"description": "ID of the product to price",
					},
					"unit_amount": map[string]any{
						"type":        "integer",
						"description": "Amount in the smallest currency unit",
					},
				},
				"required": []string{"product", "unit_amount"},
			},
		},
	}
}

// Allowed reports whether name is on the tool allow-list.
func Allowed(name string) bool {
	switch name {
	case ToolCreatePaymentLink, ToolCreateProduct, ToolCreatePrice:
		return true
	}
	return false
}

// argument extraction helpers

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func intArg(args map[string]any, key string) (int64, error) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case nil:
		return 0, fmt.Errorf("missing argument %q", key)
	default:
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
}

func optionalIntArg(args map[string]any, key string, def int64) int64 {
	n, err := intArg(args, key)
	if err != nil {
		return def
	}
	return n
}
