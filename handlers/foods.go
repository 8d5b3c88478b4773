package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"

	"github.com/abirabdullahs/smart-canteen-client/catalog"
	"github.com/abirabdullahs/smart-canteen-client/models"
)

// GetAllFoods lists the catalog. The four storefront selectors can be
// supplied as query parameters (category, search, price_range, sort)
// and are applied through the catalog pipeline after the fetch, exactly
// as the storefront applies them client-side.
func (db *DB) GetAllFoods(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := otel.Tracer("catalog-service").Start(r.Context(), "GetAllFoods")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := db.FoodCollection.Find(ctx, bson.M{})
	if err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to fetch foods", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	foods := make([]models.Product, 0)
	for cursor.Next(ctx) {
		var food models.Product
		if err := cursor.Decode(&food); err != nil {
			http.Error(w, "Failed to decode food", http.StatusInternalServerError)
			return
		}
		foods = append(foods, food)
	}
	if err := cursor.Err(); err != nil {
		http.Error(w, "Error while iterating over foods", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := catalog.Filter{
		Category:   query.Get("category"),
		Search:     query.Get("search"),
		PriceRange: query.Get("price_range"),
		SortBy:     query.Get("sort"),
	}
	foods = filter.Apply(foods)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(foods)
	catalogRequestDuration.Observe(time.Since(start).Seconds())
}

func (db *DB) GetSingleFood(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	objectID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid food ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var food models.Product
	err = db.FoodCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&food)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Food not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching food details", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(food)
}

// validFoodPayload mirrors the admin dashboard's required-field check.
func validFoodPayload(food models.Product) bool {
	return food.Name != "" && food.Price != nil && food.Category != "" && food.Stock >= 0
}

func (db *DB) PostFood(w http.ResponseWriter, r *http.Request) {
	var food models.Product
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return
	}

	if !validFoodPayload(food) {
		http.Error(w, "Name, price, category and stock are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := db.FoodCollection.InsertOne(ctx, food)
	if err != nil {
		http.Error(w, "Failed to create food: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (db *DB) PutFood(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	objectID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid food ID", http.StatusBadRequest)
		return
	}

	var food models.Product
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return
	}
	if !validFoodPayload(food) {
		http.Error(w, "Name, price, category and stock are required", http.StatusBadRequest)
		return
	}
	food.ID = objectID

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := db.FoodCollection.ReplaceOne(ctx, bson.M{"_id": objectID}, food)
	if err != nil {
		http.Error(w, "Failed to update food", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Food not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Food updated successfully"})
}

func (db *DB) DeleteFood(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	objectID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid food ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := db.FoodCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		http.Error(w, "Cannot delete database record", http.StatusBadRequest)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Food not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Food deleted successfully"})
}

// Stock implements checkout.StockReader so the orchestrator can
// reconcile cart quantities against the catalog before charging.
func (db *DB) Stock(ctx context.Context, productID string) (int, error) {
	objectID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result struct {
		Stock int `bson:"stock"`
	}
	if err := db.FoodCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&result); err != nil {
		return 0, err
	}
	return result.Stock, nil
}
