package tools

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/client"
)

// StripeExecutor executes the allow-listed actions against Stripe.
// Each call is a real external effect; callers must treat an invocation
// as at-most-once.
type StripeExecutor struct {
	api *client.API
}

// NewStripeExecutor creates an executor bound to the given secret key.
func NewStripeExecutor(secretKey string) *StripeExecutor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeExecutor{api: api}
}

// Execute implements Executor.
func (e *StripeExecutor) Execute(ctx context.Context, inv Invocation) (string, error) {
	var (
		result string
		err    error
	)

	switch inv.Name {
	case ToolCreatePaymentLink:
		result, err = e.createPaymentLink(ctx, inv.Arguments)
	case ToolCreateProduct:
		result, err = e.createProduct(ctx, inv.Arguments)
	case ToolCreatePrice:
		result, err = e.createPrice(ctx, inv.Arguments)
	default:
		return "", &ExecutionError{Tool: inv.Name, Cause: ErrUnknownTool}
	}

	if err != nil {
		return "", &ExecutionError{Tool: inv.Name, Cause: err}
	}
	return result, nil
}

func (e *StripeExecutor) createPaymentLink(ctx context.Context, args map[string]any) (string, error) {
	price, err := stringArg(args, "price")
	if err != nil {
		return "", err
	}
	quantity := optionalIntArg(args, "quantity", 1)

	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(quantity)},
		},
	}
	params.Context = ctx

	link, err := e.api.PaymentLinks.New(params)
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{"id": link.ID, "url": link.URL})
}

func (e *StripeExecutor) createProduct(ctx context.Context, args map[string]any) (string, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return "", err
	}

	params := &stripe.ProductParams{Name: stripe.String(name)}
	if desc := optionalStringArg(args, "description"); desc != "" {
		params.Description = stripe.String(desc)
	}
	params.Context = ctx

	product, err := e.api.Products.New(params)
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{"id": product.ID, "name": product.Name})
}

func (e *StripeExecutor) createPrice(ctx context.Context, args map[string]any) (string, error) {
	product, err := stringArg(args, "product")
	if err != nil {
		return "", err
	}
	amount, err := intArg(args, "unit_amount")
	if err != nil {
		return "", err
	}

	params := &stripe.PriceParams{
		Product:    stripe.String(product),
		UnitAmount: stripe.Int64(amount),
		Currency:   stripe.String(string(stripe.CurrencyJPY)),
	}
	params.Context = ctx

	price, err := e.api.Prices.New(params)
	if err != nil {
		return "", err
	}
	return marshalResult(map[string]any{"id": price.ID, "unit_amount": price.UnitAmount})
}

func marshalResult(v map[string]any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}
