package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abirabdullahs/smart-canteen-client/middleware"
	"github.com/abirabdullahs/smart-canteen-client/models"
	"github.com/abirabdullahs/smart-canteen-client/store"
)

func cartTestDB(t *testing.T, username string, items ...models.CartItem) *DB {
	t.Helper()

	storage := store.NewMemoryStorage()
	cart, err := store.Open(context.Background(), storage, username)
	require.NoError(t, err)
	for _, item := range items {
		for i := 0; i < item.Quantity; i++ {
			one := item
			one.Quantity = 1
			require.NoError(t, cart.AddToCart(context.Background(), one))
		}
	}
	return &DB{CartStorage: storage}
}

func authedRequest(method, target, body, username string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUsername(req.Context(), username))
}

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

func TestGetCartReturnsItemsTotalAndCount(t *testing.T) {
	db := cartTestDB(t, "rahim",
		models.CartItem{ProductID: "f1", Name: "Beef Tehari", Price: "120", Quantity: 2},
		models.CartItem{ProductID: "f2", Name: "Cold Coffee", Price: 80, Quantity: 1},
	)

	rec := httptest.NewRecorder()
	db.GetCart(rec, authedRequest(http.MethodGet, "/api/cart", "", "rahim"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, int64(320), resp.Total)
	assert.Equal(t, 3, resp.Count)
}

func TestGetCartRequiresAuthenticatedUser(t *testing.T) {
	db := &DB{CartStorage: store.NewMemoryStorage()}

	rec := httptest.NewRecorder()
	db.GetCart(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPatchCartQuantityUpdatesPersistedCart(t *testing.T) {
	db := cartTestDB(t, "rahim",
		models.CartItem{ProductID: "f1", Name: "Beef Tehari", Price: "120", Quantity: 1},
	)

	rec := httptest.NewRecorder()
	db.PatchCartQuantity(rec, authedRequest(http.MethodPatch, "/api/cart/quantity",
		`{"foodId":"f1","quantity":4}`, "rahim"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Count)
	assert.Equal(t, int64(480), resp.Total)
}

func TestDeleteCartItemRemovesOnlyThatItem(t *testing.T) {
	db := cartTestDB(t, "rahim",
		models.CartItem{ProductID: "f1", Name: "Beef Tehari", Price: "120", Quantity: 1},
		models.CartItem{ProductID: "f2", Name: "Cold Coffee", Price: 80, Quantity: 1},
	)

	req := authedRequest(http.MethodDelete, "/api/cart/items/f1", "", "rahim")
	req = mux.SetURLVars(req, map[string]string{"id": "f1"})
	rec := httptest.NewRecorder()
	db.DeleteCartItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "f2", resp.Items[0].ProductID)
}

func TestCheckoutGuardReleasesAfterCompletion(t *testing.T) {
	db := &DB{}

	require.True(t, db.beginCheckout("rahim"))
	assert.False(t, db.beginCheckout("rahim"), "second submission must be rejected while one is in flight")
	assert.True(t, db.beginCheckout("karim"), "other shoppers are not serialized")

	db.endCheckout("rahim")
	db.endCheckout("karim")

	// Finished attempts leave nothing behind; the same user can check
	// out again.
	assert.True(t, db.beginCheckout("rahim"))
	db.endCheckout("rahim")
}

func TestDeleteCartClearsEverything(t *testing.T) {
	db := cartTestDB(t, "rahim",
		models.CartItem{ProductID: "f1", Name: "Beef Tehari", Price: "120", Quantity: 3},
	)

	rec := httptest.NewRecorder()
	db.DeleteCart(rec, authedRequest(http.MethodDelete, "/api/cart", "", "rahim"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	db.GetCart(rec, authedRequest(http.MethodGet, "/api/cart", "", "rahim"))

	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.Count)
}
