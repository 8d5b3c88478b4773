package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abirabdullahs/smart-canteen-client/checkout"
	"github.com/abirabdullahs/smart-canteen-client/middleware"
	"github.com/abirabdullahs/smart-canteen-client/models"
	"github.com/abirabdullahs/smart-canteen-client/store"
)

// openCart rehydrates the authenticated user's cart from storage.
func (db *DB) openCart(r *http.Request) (*store.Cart, string, error) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		return nil, "", errors.New("missing username in context")
	}
	cart, err := store.Open(r.Context(), db.CartStorage, username)
	if err != nil {
		return nil, "", err
	}
	return cart, username, nil
}

func cartView(cart *store.Cart) map[string]interface{} {
	return map[string]interface{}{
		"items": cart.Items(),
		"total": cart.GetTotal(),
		"count": cart.GetCartCount(),
	}
}

func (db *DB) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, _, err := db.openCart(r)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cartView(cart))
}

// PostCartItem adds a catalog product to the cart by id. Adding a
// product already in the cart increments its quantity. Stock is not
// checked here; checkout reconciles quantities before charging.
func (db *DB) PostCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FoodID string `json:"foodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.FoodID == "" {
		http.Error(w, "foodId is required", http.StatusBadRequest)
		return
	}

	objectID, err := primitive.ObjectIDFromHex(body.FoodID)
	if err != nil {
		http.Error(w, "Invalid food ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var food models.Product
	if err := db.FoodCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&food); err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Food not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching food details", http.StatusInternalServerError)
		return
	}

	cart, _, err := db.openCart(r)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := cart.AddToCart(r.Context(), food.Snapshot()); err != nil {
		http.Error(w, "Failed to add item to cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cartView(cart))
}

func (db *DB) PatchCartQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FoodID   string `json:"foodId"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.FoodID == "" {
		http.Error(w, "foodId and quantity are required", http.StatusBadRequest)
		return
	}

	cart, _, err := db.openCart(r)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := cart.UpdateQuantity(r.Context(), body.FoodID, body.Quantity); err != nil {
		http.Error(w, "Failed to update quantity", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cartView(cart))
}

func (db *DB) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	cart, _, err := db.openCart(r)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := cart.RemoveFromCart(r.Context(), vars["id"]); err != nil {
		http.Error(w, "Failed to remove item from cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cartView(cart))
}

func (db *DB) DeleteCart(w http.ResponseWriter, r *http.Request) {
	cart, _, err := db.openCart(r)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := cart.ClearCart(r.Context()); err != nil {
		http.Error(w, "Failed to clear cart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Cart cleared successfully"})
}

// PostCheckout runs the full checkout sequence for the authenticated
// user's cart: validate, create the payment intent, confirm the card
// payment, persist the order, clear the cart.
func (db *DB) PostCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
		PaymentMethod   string                 `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		checkoutRequests.WithLabelValues("error").Inc()
		return
	}

	cart, username, err := db.openCart(r)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		checkoutRequests.WithLabelValues("error").Inc()
		return
	}

	if !db.beginCheckout(username) {
		http.Error(w, "a checkout is already in progress", http.StatusBadRequest)
		checkoutRequests.WithLabelValues("validation_error").Inc()
		return
	}
	defer db.endCheckout(username)

	orchestrator := checkout.New(db.Intents, db.Payments, db, db)
	order, err := orchestrator.Submit(r.Context(), checkout.SubmitRequest{
		UserID:          username,
		Cart:            cart,
		ShippingAddress: body.ShippingAddress,
		PaymentMethod:   body.PaymentMethod,
	})
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Reason, http.StatusBadRequest)
			checkoutRequests.WithLabelValues("validation_error").Inc()
			return
		}
		// Processor and backend failures surface their message; the
		// cart is left intact for a retry.
		http.Error(w, err.Error(), http.StatusPaymentRequired)
		checkoutRequests.WithLabelValues("payment_error").Inc()
		return
	}

	ordersPlaced.Inc()
	checkoutRequests.WithLabelValues("success").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}
