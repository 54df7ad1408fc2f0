// Package payments talks to the card payment provider: it opens a payment
// for a placed order and turns the provider's webhook calls into payment
// status updates.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Kariqs/camiu-api/models"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Intent struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"clientSecret"`
}

// WebhookResult is the payment outcome carried by a webhook call. Handled is
// false for event types that do not affect an order.
type WebhookResult struct {
	OrderID   uint
	Status    models.PaymentStatus
	Reference string
	Handled   bool
}

type Gateway interface {
	CreatePayment(ctx context.Context, order *models.Order) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*WebhookResult, error)
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewStripeGateway(secretKey, webhookSecret, currency string) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		currency:      currency,
	}
}

// amountInCents converts the order total to the smallest currency unit.
func amountInCents(order *models.Order) int64 {
	return order.Total.Shift(2).Round(0).IntPart()
}

func (g *StripeGateway) CreatePayment(ctx context.Context, order *models.Order) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents(order)),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.FormatUint(uint64(order.ID), 10))
	params.AddMetadata("order_ref", order.Reference)
	params.SetIdempotencyKey("order-" + order.Reference)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent for order %d: %w", order.ID, err)
	}
	return &Intent{Reference: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var status models.PaymentStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.PaymentStatusPaid
	case "payment_intent.payment_failed":
		status = models.PaymentStatusFailed
	default:
		return &WebhookResult{}, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}

	orderID, err := strconv.ParseUint(pi.Metadata["order_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("payment intent %s has no order id: %w", pi.ID, err)
	}

	return &WebhookResult{
		OrderID:   uint(orderID),
		Status:    status,
		Reference: pi.ID,
		Handled:   true,
	}, nil
}
