package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/abirabdullahs/smart-canteen-client/checkout"
	"github.com/abirabdullahs/smart-canteen-client/models"
)

// CreatePaymentIntentHandler exposes raw payment-intent creation for
// clients that drive the card confirmation themselves. The amount is
// already in minor units; callers may pin an Idempotency-Key header to
// make retries safe.
func (db *DB) CreatePaymentIntentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("payment-service").Start(r.Context(), "CreatePaymentIntentHandler")
	defer span.End()

	var body struct {
		Amount          int64                  `json:"amount"`
		UserID          string                 `json:"userId"`
		Items           []models.CartItem      `json:"items"`
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		paymentIntentRequests.WithLabelValues("error").Inc()
		return
	}

	if body.Amount <= 0 {
		http.Error(w, "Amount must be greater than zero", http.StatusBadRequest)
		paymentIntentRequests.WithLabelValues("error").Inc()
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		idempotencyKey = uuid.New().String()
	}

	intent, err := db.Intents.CreateIntent(ctx, checkout.IntentRequest{
		Amount:          body.Amount,
		UserID:          body.UserID,
		Items:           body.Items,
		ShippingAddress: body.ShippingAddress,
		IdempotencyKey:  idempotencyKey,
	})
	if err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to create payment intent", http.StatusInternalServerError)
		paymentIntentRequests.WithLabelValues("error").Inc()
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"clientSecret": intent.ClientSecret})
	paymentIntentRequests.WithLabelValues("success").Inc()
}
