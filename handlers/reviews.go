package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/abirabdullahs/smart-canteen-client/middleware"
	"github.com/abirabdullahs/smart-canteen-client/models"
)

// GetReviewsForFood lists reviews for a food id together with the
// derived average rating; the average is recomputed from the full list
// on every request, never stored.
func (db *DB) GetReviewsForFood(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	foodID := vars["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.ReviewCollection.Find(ctx, bson.M{"foodId": foodID})
	if err != nil {
		http.Error(w, "Failed to fetch reviews", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			http.Error(w, "Failed to decode review", http.StatusInternalServerError)
			return
		}
		reviews = append(reviews, review)
	}
	if err := cursor.Err(); err != nil {
		http.Error(w, "Error while iterating over reviews", http.StatusInternalServerError)
		return
	}

	response := struct {
		Reviews       []models.Review `json:"reviews"`
		AverageRating float64         `json:"averageRating"`
	}{
		Reviews:       reviews,
		AverageRating: models.AverageRating(reviews),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (db *DB) PostReview(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Please login to submit a review", http.StatusUnauthorized)
		return
	}

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return
	}

	if review.FoodID == "" {
		http.Error(w, "foodId is required", http.StatusBadRequest)
		return
	}
	if review.Rating < 1 || review.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(review.ReviewText) == "" {
		http.Error(w, "Please write a review", http.StatusBadRequest)
		return
	}

	if review.UserName == "" {
		review.UserName = username
	}
	review.UserID = username
	review.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := db.ReviewCollection.InsertOne(ctx, review)
	if err != nil {
		http.Error(w, "Failed to submit review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}
