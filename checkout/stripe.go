package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"

	"github.com/abirabdullahs/smart-canteen-client/models"
)

// StripeIntents creates PaymentIntents on Stripe. stripe.Key must be
// set before use (the driver does this from config).
type StripeIntents struct {
	Currency string
}

func NewStripeIntents() *StripeIntents {
	return &StripeIntents{Currency: "bdt"}
}

func (s *StripeIntents) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(s.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("item_count", fmt.Sprintf("%d", len(req.Items)))
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return Intent{}, err
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// StripeConfirmer confirms an intent server-side with a tokenized
// payment method. The intent id is recovered from the client secret the
// same way the browser SDK does.
type StripeConfirmer struct{}

func (StripeConfirmer) ConfirmCardPayment(ctx context.Context, clientSecret, paymentMethod string, billing models.ShippingAddress) (Confirmation, error) {
	intentID := intentIDFromSecret(clientSecret)
	if intentID == "" {
		return Confirmation{}, fmt.Errorf("malformed client secret")
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
		Shipping: &stripe.ShippingDetailsParams{
			Name:  stripe.String(billing.FullName),
			Phone: stripe.String(billing.Phone),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(billing.Address),
				City:       stripe.String(billing.City),
				PostalCode: stripe.String(billing.ZipCode),
			},
		},
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return Confirmation{}, err
	}
	return Confirmation{PaymentIntentID: pi.ID, Status: string(pi.Status)}, nil
}

func intentIDFromSecret(clientSecret string) string {
	id, _, found := strings.Cut(clientSecret, "_secret")
	if !found {
		return ""
	}
	return id
}
