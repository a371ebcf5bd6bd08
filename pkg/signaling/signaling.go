// Package signaling performs the one-shot offer/answer exchange with the
// realtime service: the local session description goes up over HTTP with
// the ephemeral credential, the remote answer comes back as raw SDP.
package signaling

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kaikura/voicecafe/internal/httpc"
	"github.com/kaikura/voicecafe/pkg/session"
)

// DefaultBaseURL is the realtime signaling endpoint.
const DefaultBaseURL = "https://api.openai.com/v1/realtime"

// ErrEmptyAnswer indicates the remote returned a 2xx with no SDP body.
var ErrEmptyAnswer = errors.New("signaling: empty answer description")

// SignalingError indicates the handshake request was rejected.
type SignalingError struct {
	// StatusCode is the remote HTTP status.
	StatusCode int

	// Body is the remote response body text.
	Body string
}

// Error implements the error interface.
func (e *SignalingError) Error() string {
	return fmt.Sprintf("signaling: exchange failed (HTTP %d): %s", e.StatusCode, e.Body)
}

// Client performs the SDP exchange. One exchange per session; no
// renegotiation is attempted.
type Client struct {
	// Model selects the realtime model via query parameter.
	Model string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient defaults to the shared httpc client.
	HTTPClient *http.Client
}

// Negotiate sends the local offer SDP authenticated by the ephemeral
// credential and returns the remote answer SDP verbatim.
func (c *Client) Negotiate(ctx context.Context, offerSDP string, cred session.Credential) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := c.HTTPClient
	if client == nil {
		client = httpc.Client
	}

	url := fmt.Sprintf("%s?model=%s", base, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(offerSDP))
	if err != nil {
		return "", fmt.Errorf("signaling: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Value)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("signaling: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("signaling: read answer: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SignalingError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return "", ErrEmptyAnswer
	}

	return string(body), nil
}
