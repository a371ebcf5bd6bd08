package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kaikura/voicecafe/internal/httpc"
)

// Relay is the client-side Executor: it forwards the decoded invocation
// to the backend tool endpoint, which holds the Stripe credentials.
type Relay struct {
	// Endpoint is the full URL of the tool route,
	// e.g. "http://localhost:3000/api/handle-function-call".
	Endpoint string

	// HTTPClient defaults to the shared httpc client.
	HTTPClient *http.Client
}

// Execute implements Executor by POSTing the invocation as JSON and
// returning the backend's raw result body.
func (r *Relay) Execute(ctx context.Context, inv Invocation) (string, error) {
	client := r.HTTPClient
	if client == nil {
		client = httpc.Client
	}

	body, err := json.Marshal(inv)
	if err != nil {
		return "", &ExecutionError{Tool: inv.Name, Cause: fmt.Errorf("marshal invocation: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ExecutionError{Tool: inv.Name, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	// Satisfy the backend's same-origin referer check.
	req.Header.Set("Referer", r.Endpoint)

	resp, err := client.Do(req)
	if err != nil {
		return "", &ExecutionError{Tool: inv.Name, Cause: err}
	}
	defer resp.Body.Close()

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ExecutionError{Tool: inv.Name, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ExecutionError{Tool: inv.Name, Cause: fmt.Errorf("relay returned HTTP %d: %s", resp.StatusCode, result)}
	}

	return string(result), nil
}
