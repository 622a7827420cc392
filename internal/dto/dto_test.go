package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentSubscription(t *testing.T) {
	payload := &WebhookPayload{
		Reference1: "subscription",
		Reference2: "42",
		Reference3: "pro",
	}

	intent, err := payload.Intent()
	require.NoError(t, err)

	sub, ok := intent.(SubscriptionIntent)
	require.True(t, ok)
	assert.Equal(t, uint(42), sub.UserID)
	assert.Equal(t, "pro", sub.Plan)
}

func TestIntentPurchase(t *testing.T) {
	payload := &WebhookPayload{
		Reference1: "7",
		Reference2: "3",
		Reference3: "12",
	}

	intent, err := payload.Intent()
	require.NoError(t, err)

	purchase, ok := intent.(PurchaseIntent)
	require.True(t, ok)
	assert.Equal(t, uint(7), purchase.ProductID)
	assert.Equal(t, 3, purchase.Quantity)
	assert.Equal(t, uint(12), purchase.SellerID)
}

func TestIntentRejectsGarbage(t *testing.T) {
	tests := []struct {
		name    string
		payload WebhookPayload
	}{
		{"bad user id", WebhookPayload{Reference1: "subscription", Reference2: "abc", Reference3: "pro"}},
		{"missing plan", WebhookPayload{Reference1: "subscription", Reference2: "42"}},
		{"bad product id", WebhookPayload{Reference1: "x", Reference2: "1", Reference3: "2"}},
		{"zero quantity", WebhookPayload{Reference1: "7", Reference2: "0", Reference3: "2"}},
		{"negative quantity", WebhookPayload{Reference1: "7", Reference2: "-2", Reference3: "2"}},
		{"bad seller id", WebhookPayload{Reference1: "7", Reference2: "1", Reference3: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.payload.Intent()
			assert.Error(t, err)
		})
	}
}
