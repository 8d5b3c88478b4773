package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/abirabdullahs/smart-canteen-client/models"
)

// SaveOrder implements checkout.OrderWriter.
func (db *DB) SaveOrder(ctx context.Context, order models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.OrdersCollection.InsertOne(ctx, order)
	return err
}

// PostOrder persists an order assembled by the storefront. The
// checkout endpoint is the usual entry point; this mirrors the raw
// POST /api/orders contract the storefront also uses.
func (db *DB) PostOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return
	}

	if order.UserID == "" || len(order.Items) == 0 {
		http.Error(w, "userId and items are required", http.StatusBadRequest)
		return
	}
	if order.OrderStatus == "" {
		order.OrderStatus = models.OrderStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	if err := db.SaveOrder(r.Context(), order); err != nil {
		log.Printf("Failed to insert order: %v", err)
		http.Error(w, "Failed to create new order", http.StatusInternalServerError)
		return
	}

	ordersPlaced.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Order placed successfully"})
}

func (db *DB) GetOrdersForUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.OrdersCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		log.Printf("Error querying orders: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			log.Printf("Failed to decode order: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		log.Printf("Error while iterating over orders: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}
