package payment

import (
	"context"
	"errors"
	"testing"
)

func TestCreateCheckoutValidation(t *testing.T) {
	s := NewService("sk_test_unused", "http://localhost:3000")

	t.Run("missing name", func(t *testing.T) {
		_, err := s.CreateCheckout(context.Background(), CheckoutRequest{Amount: 500})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := s.CreateCheckout(context.Background(), CheckoutRequest{Name: "コーヒー", Amount: 0})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})
}

func TestRedirectURLs(t *testing.T) {
	s := NewService("sk_test_unused", "https://example.com")
	if s.SuccessURL != "https://example.com/success" {
		t.Errorf("success URL mismatch: %q", s.SuccessURL)
	}
	if s.CancelURL != "https://example.com/cancel" {
		t.Errorf("cancel URL mismatch: %q", s.CancelURL)
	}
}
