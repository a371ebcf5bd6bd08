package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kaikura/voicecafe/internal/httpc"
	"github.com/kaikura/voicecafe/pkg/tools"
)

// DefaultSessionsURL is the realtime session-minting endpoint.
const DefaultSessionsURL = "https://api.openai.com/v1/realtime/sessions"

// Minter creates ephemeral realtime sessions on behalf of browser and
// agent clients, so the long-lived API key never leaves the backend.
type Minter struct {
	// APIKey is the long-lived realtime service key.
	APIKey string

	// Model, Voice and Instructions configure the minted session.
	Model        string
	Voice        string
	Instructions string

	// Tools are advertised to the model so it can issue function calls.
	Tools []tools.Definition

	// URL defaults to DefaultSessionsURL.
	URL string

	// HTTPClient defaults to the shared httpc client.
	HTTPClient *http.Client
}

// flatTool is the wire shape the realtime service expects per tool.
type flatTool struct {
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

// Mint creates a session and returns the raw response body, which
// includes the client_secret the token endpoint forwards verbatim.
func (m *Minter) Mint(ctx context.Context) (json.RawMessage, error) {
	url := m.URL
	if url == "" {
		url = DefaultSessionsURL
	}
	client := m.HTTPClient
	if client == nil {
		client = httpc.Client
	}

	flat := make([]flatTool, len(m.Tools))
	for i, t := range m.Tools {
		flat[i].Function.Name = t.Name
		flat[i].Function.Description = t.Description
		params := t.Parameters
		if params == nil {
			params = map[string]any{}
		}
		flat[i].Function.Parameters = params
	}

	payload := map[string]any{
		"model":               m.Model,
		"voice":               m.Voice,
		"modalities":          []string{"text", "audio"},
		"input_audio_format":  "pcm16",
		"output_audio_format": "pcm16",
		"temperature":         0.8,
		"instructions":        m.Instructions,
		"turn_detection": map[string]any{
			"type":                "server_vad",
			"threshold":           0.5,
			"prefix_padding_ms":   300,
			"silence_duration_ms": 200,
			"create_response":     true,
			"interrupt_response":  true,
		},
		"tools": flat,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("session: marshal mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("session: build mint request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session: mint request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("session: read mint response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProvisioningError{StatusCode: resp.StatusCode}
	}

	return json.RawMessage(raw), nil
}
