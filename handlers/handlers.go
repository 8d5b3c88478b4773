// Package handlers provides the HTTP handler functions for the campus
// canteen storefront API: catalog browsing and admin CRUD, reviews,
// cart management, checkout with Stripe card payment, order history,
// and the JWT-backed identity endpoints. Handlers integrate with
// MongoDB for persistence, Redis for cart and balance state, and
// Prometheus/OpenTelemetry for request metrics and tracing.
package handlers

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abirabdullahs/smart-canteen-client/checkout"
	"github.com/abirabdullahs/smart-canteen-client/config"
	"github.com/abirabdullahs/smart-canteen-client/realtime"
	"github.com/abirabdullahs/smart-canteen-client/store"
)

type DB struct {
	Collection               *mongo.Collection // users
	FoodCollection           *mongo.Collection
	ReviewCollection         *mongo.Collection
	OrdersCollection         *mongo.Collection
	RefreshTokenCollection   *mongo.Collection
	TokenBlacklistCollection *mongo.Collection

	CartStorage store.Storage
	Balance     *realtime.Feed

	Intents  checkout.IntentCreator
	Payments checkout.PaymentConfirmer

	Cfg config.Config

	// users with a checkout in flight; entries are removed when the
	// attempt finishes, so the map only ever holds active checkouts
	inflight sync.Map
}

// Define Prometheus metrics
var (
	// Counter for the number of requests
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "create_user_requests_total",
			Help: "Total number of requests to create user",
		},
		[]string{"status"},
	)

	// Histogram for request duration
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "create_user_duration_seconds",
			Help:    "Histogram of request durations for creating user",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	loginRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_requests_total",
		Help: "Total number of login requests",
	})

	loginRequestsbyStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_requests_by_status_total",
		Help: "Total number of login requests by status",
	},
		[]string{"status"})

	checkoutRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_requests_total",
		Help: "Total number of checkout submissions by outcome",
	},
		[]string{"status"})

	ordersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of successfully placed orders",
	})

	paymentIntentRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intent_requests_total",
		Help: "Total number of payment intent creations by outcome",
	},
		[]string{"status"})

	catalogRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Histogram of catalog listing durations",
		Buckets: prometheus.DefBuckets,
	})
)

func Init() {
	// Register metrics with Prometheus
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(loginRequests)
	prometheus.MustRegister(loginRequestsbyStatus)
	prometheus.MustRegister(checkoutRequests)
	prometheus.MustRegister(ordersPlaced)
	prometheus.MustRegister(paymentIntentRequests)
	prometheus.MustRegister(catalogRequestDuration)
}

// beginCheckout marks a checkout in flight for userID. It reports false
// when one is already running, keeping the double-submission guard
// scoped to one shopper without serializing unrelated checkouts.
func (db *DB) beginCheckout(userID string) bool {
	_, alreadyRunning := db.inflight.LoadOrStore(userID, struct{}{})
	return !alreadyRunning
}

// endCheckout releases the in-flight marker for userID.
func (db *DB) endCheckout(userID string) {
	db.inflight.Delete(userID)
}
