package payments

import (
	"fmt"
	"testing"
	"time"

	"github.com/Kariqs/camiu-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78/webhook"
)

const testSecret = "whsec_test"

func signedEvent(t *testing.T, eventType string, metadata string) (payload []byte, header string) {
	t.Helper()
	payload = []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": "pi_123", "object": "payment_intent", "metadata": %s}}
	}`, eventType, metadata))

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestAmountInCents(t *testing.T) {
	order := &models.Order{Total: decimal.RequireFromString("65.485")}
	assert.EqualValues(t, 6549, amountInCents(order))

	order.Total = decimal.RequireFromString("10")
	assert.EqualValues(t, 1000, amountInCents(order))
}

func TestParseWebhook_Succeeded(t *testing.T) {
	g := NewStripeGateway("sk_test", testSecret, "")
	payload, header := signedEvent(t, "payment_intent.succeeded", `{"order_id": "12"}`)

	res, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.True(t, res.Handled)
	assert.EqualValues(t, 12, res.OrderID)
	assert.Equal(t, models.PaymentStatusPaid, res.Status)
	assert.Equal(t, "pi_123", res.Reference)
}

func TestParseWebhook_Failed(t *testing.T) {
	g := NewStripeGateway("sk_test", testSecret, "")
	payload, header := signedEvent(t, "payment_intent.payment_failed", `{"order_id": "3"}`)

	res, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, res.Status)
}

func TestParseWebhook_IgnoresOtherEvents(t *testing.T) {
	g := NewStripeGateway("sk_test", testSecret, "")
	payload, header := signedEvent(t, "charge.refunded", `{}`)

	res, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.False(t, res.Handled)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test", "whsec_other", "")
	payload, header := signedEvent(t, "payment_intent.succeeded", `{"order_id": "12"}`)

	_, err := g.ParseWebhook(payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
