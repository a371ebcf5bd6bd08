// Package config provides configuration helpers for voicecafe commands.
package config

import (
	"fmt"
	"os"
)

// Default server configuration.
const (
	DefaultPort  = "3000"
	DefaultModel = "gpt-4o-realtime-preview-2024-12-17"
	DefaultVoice = "verse"
)

// Port returns the listen port from PORT env var or the default.
func Port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// Model returns the realtime model from REALTIME_MODEL env var or the default.
func Model() string {
	if m := os.Getenv("REALTIME_MODEL"); m != "" {
		return m
	}
	return DefaultModel
}

// Voice returns the assistant voice from REALTIME_VOICE env var or the default.
func Voice() string {
	if v := os.Getenv("REALTIME_VOICE"); v != "" {
		return v
	}
	return DefaultVoice
}

// OpenAIKeyRequired returns the OpenAI API key from OPENAI_API_KEY.
// Exits if not set.
func OpenAIKeyRequired() string {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		fmt.Fprintln(os.Stderr, "Error: OPENAI_API_KEY environment variable is required")
		os.Exit(1)
	}
	return key
}

// StripeKeyRequired returns the Stripe secret key from STRIPE_SECRET_KEY.
// Exits if not set.
func StripeKeyRequired() string {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		fmt.Fprintln(os.Stderr, "Error: STRIPE_SECRET_KEY environment variable is required")
		os.Exit(1)
	}
	return key
}

// BaseURL returns the public base URL from BASE_URL env var.
// Falls back to a localhost URL built from the port.
func BaseURL() string {
	if u := os.Getenv("BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:" + Port()
}

// LineChannelID returns the LINE Login channel ID from LINE_CHANNEL_ID.
func LineChannelID() string {
	return os.Getenv("LINE_CHANNEL_ID")
}

// LineChannelSecret returns the LINE Login channel secret from LINE_CHANNEL_SECRET.
func LineChannelSecret() string {
	return os.Getenv("LINE_CHANNEL_SECRET")
}
