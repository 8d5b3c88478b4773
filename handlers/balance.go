package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// StreamBalanceHandler pushes balance updates for a user over
// server-sent events. The current balance is sent immediately, then one
// event per update until the client disconnects.
func (db *DB) StreamBalanceHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userId"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := db.Balance.Subscribe(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to subscribe to balance updates", http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		case balance, ok := <-sub.C:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %d\n\n", balance)
			flusher.Flush()
		}
	}
}

// SetBalanceHandler lets the admin panel push a new balance to a user.
func (db *DB) SetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userId"]

	var body struct {
		Balance json.Number `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return
	}

	balance, err := strconv.ParseInt(body.Balance.String(), 10, 64)
	if err != nil || balance < 0 {
		http.Error(w, "Balance must be a non-negative integer", http.StatusBadRequest)
		return
	}

	if err := db.Balance.Set(r.Context(), userID, balance); err != nil {
		http.Error(w, "Failed to update balance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"userId":  userID,
		"balance": balance,
	})
}
