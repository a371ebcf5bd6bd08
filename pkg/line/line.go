// Package line wraps the LINE Login surface the app needs: code exchange
// and profile retrieval for clients embedded in the LINE browser.
// This is a boundary wrapper only; profile data is never stored.
package line

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/kaikura/voicecafe/internal/httpc"
)

// LINE Login endpoints.
const (
	AuthURL    = "https://access.line.me/oauth2/v2.1/authorize"
	TokenURL   = "https://api.line.me/oauth2/v2.1/token"
	ProfileURL = "https://api.line.me/v2/profile"
)

// ErrUnauthorized indicates the access token was rejected.
var ErrUnauthorized = errors.New("line: access token rejected")

// Profile is the user profile returned by LINE.
type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// Client talks to LINE Login on behalf of the backend.
type Client struct {
	oauth oauth2.Config

	// ProfileEndpoint defaults to ProfileURL.
	ProfileEndpoint string

	// HTTPClient defaults to the shared httpc client.
	HTTPClient *http.Client
}

// NewClient creates a client for the given LINE Login channel.
func NewClient(channelID, channelSecret, redirectURL string) *Client {
	return &Client{
		oauth: oauth2.Config{
			ClientID:     channelID,
			ClientSecret: channelSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"profile", "openid"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthURL,
				TokenURL: TokenURL,
			},
		},
	}
}

// AuthCodeURL returns the login URL for the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if c.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
	}
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("line: code exchange failed: %w", err)
	}
	return tok, nil
}

// Profile fetches the user profile for an access token.
func (c *Client) Profile(ctx context.Context, accessToken string) (Profile, error) {
	endpoint := c.ProfileEndpoint
	if endpoint == "" {
		endpoint = ProfileURL
	}
	client := c.HTTPClient
	if client == nil {
		client = httpc.Client
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("line: build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("line: profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Profile{}, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("line: profile request returned HTTP %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("line: decode profile: %w", err)
	}
	return profile, nil
}
