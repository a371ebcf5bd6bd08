// Package session handles the ephemeral realtime credential: the backend
// mints it from the realtime service, the client fetches it right before
// the peer-connection handshake. The credential authorizes exactly one
// handshake and is never persisted.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kaikura/voicecafe/internal/httpc"
)

// ErrMissingCredential indicates the token response had no usable secret.
var ErrMissingCredential = errors.New("session: response missing client secret")

// ProvisioningError indicates the credential fetch failed. The bridge
// must not proceed to the handshake when it sees one.
type ProvisioningError struct {
	// StatusCode is the HTTP status from the token endpoint, if any.
	StatusCode int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ProvisioningError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("session: provisioning failed (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("session: provisioning failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ProvisioningError) Unwrap() error {
	return e.Cause
}

// Credential is the short-lived secret authorizing one handshake.
// Expiry is managed by the remote service and not tracked locally.
type Credential struct {
	Value string
}

// tokenResponse mirrors the token endpoint body:
// { "client_secret": { "value": "..." } }
type tokenResponse struct {
	ClientSecret struct {
		Value string `json:"value"`
	} `json:"client_secret"`
}

// Provisioner fetches ephemeral credentials from the backend token endpoint.
type Provisioner struct {
	// Endpoint is the full URL of the token route,
	// e.g. "http://localhost:3000/api/realtime-session".
	Endpoint string

	// HTTPClient defaults to the shared httpc client.
	HTTPClient *http.Client
}

// Fetch issues a single request to the token endpoint and returns the
// credential. No retries; retry policy, if any, belongs to the caller.
func (p *Provisioner) Fetch(ctx context.Context) (Credential, error) {
	client := p.HTTPClient
	if client == nil {
		client = httpc.Client
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint, nil)
	if err != nil {
		return Credential{}, &ProvisioningError{Cause: err}
	}
	// The backend only serves same-origin callers; present ourselves
	// the way the frontend does.
	req.Header.Set("Referer", p.Endpoint)

	resp, err := client.Do(req)
	if err != nil {
		return Credential{}, &ProvisioningError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Credential{}, &ProvisioningError{StatusCode: resp.StatusCode}
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Credential{}, &ProvisioningError{Cause: err}
	}
	if body.ClientSecret.Value == "" {
		return Credential{}, &ProvisioningError{Cause: ErrMissingCredential}
	}

	return Credential{Value: body.ClientSecret.Value}, nil
}
