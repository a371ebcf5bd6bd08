// Package payment creates Stripe Checkout sessions for one-off purchases
// initiated from the chat UI.
package payment

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/client"
)

// ErrInvalidRequest indicates the checkout request was incomplete.
var ErrInvalidRequest = errors.New("payment: name and a positive amount are required")

// CheckoutRequest describes a single-item card payment in JPY.
type CheckoutRequest struct {
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Service creates checkout sessions.
type Service struct {
	api *client.API

	// SuccessURL and CancelURL are where Stripe redirects after checkout.
	SuccessURL string
	CancelURL  string
}

// NewService creates a Service bound to the given secret key and base URL.
func NewService(secretKey, baseURL string) *Service {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Service{
		api:        api,
		SuccessURL: baseURL + "/success",
		CancelURL:  baseURL + "/cancel",
	}
}

// CreateCheckout creates a checkout session and returns its URL.
func (s *Service) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	if req.Name == "" || req.Amount <= 0 {
		return "", ErrInvalidRequest
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%sの決済", req.Name)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyJPY)),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.Name),
						Description: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.SuccessURL),
		CancelURL:  stripe.String(s.CancelURL),
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("payment: create checkout session: %w", err)
	}
	return sess.URL, nil
}
