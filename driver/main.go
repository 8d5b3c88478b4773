package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v72"

	"github.com/abirabdullahs/smart-canteen-client/checkout"
	"github.com/abirabdullahs/smart-canteen-client/config"
	"github.com/abirabdullahs/smart-canteen-client/handlers"
	"github.com/abirabdullahs/smart-canteen-client/middleware"
	"github.com/abirabdullahs/smart-canteen-client/middleware/logkafka"
	"github.com/abirabdullahs/smart-canteen-client/realtime"
	"github.com/abirabdullahs/smart-canteen-client/store"
	"github.com/abirabdullahs/smart-canteen-client/telem"
	"github.com/abirabdullahs/smart-canteen-client/utils"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize MongoDB client
	client, err := utils.InitMongoClient(cfg.MongoURI)
	if err != nil {
		panic(err)
	}
	defer client.Disconnect(context.TODO())

	// Get database collections
	collection := utils.GetCollection(client, cfg.MongoDatabase, "users")
	foodCollection := utils.GetCollection(client, cfg.MongoDatabase, "foods")
	reviewCollection := utils.GetCollection(client, cfg.MongoDatabase, "reviews")
	ordersCollection := utils.GetCollection(client, cfg.MongoDatabase, "orders")
	refreshTokenCollection := utils.GetCollection(client, cfg.MongoDatabase, "refreshTokens")
	tokenBlacklistCollection := utils.GetCollection(client, cfg.MongoDatabase, "tokenBlacklist")

	// Redis backs the cart store and the balance feed
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	stripe.Key = cfg.StripeKey

	// Request logs flow through Kafka to Elasticsearch
	logkafka.InitKafkaWriter(cfg.KafkaBrokers, cfg.KafkaLogTopic)
	defer logkafka.CloseKafkaWriter()

	pusherCtx, stopPusher := context.WithCancel(context.Background())
	defer stopPusher()
	go func() {
		if err := utils.RunLogPusher(pusherCtx, cfg.KafkaBrokers, cfg.KafkaLogTopic, cfg.ElasticAddrs); err != nil && err != context.Canceled {
			log.Printf("Log pusher stopped: %v", err)
		}
	}()

	handlers.Init()
	shutdownMetrics, err := telem.InitMetrics("canteen-api", cfg.MetricsAddr)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer shutdownMetrics(context.Background())

	shutdownTracing, err := telem.InitTracing("canteen-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Create an instance of your DB
	db := &handlers.DB{
		Collection:               collection,
		FoodCollection:           foodCollection,
		ReviewCollection:         reviewCollection,
		OrdersCollection:         ordersCollection,
		RefreshTokenCollection:   refreshTokenCollection,
		TokenBlacklistCollection: tokenBlacklistCollection,
		CartStorage:              store.NewRedisStorage(rdb),
		Balance:                  realtime.NewFeed(rdb),
		Intents:                  checkout.NewStripeIntents(),
		Payments:                 checkout.StripeConfirmer{},
		Cfg:                      cfg,
	}

	mainRouter := mux.NewRouter()
	mainRouter.Use(logkafka.LoggingMiddleware)

	auth := middleware.Auth([]byte(cfg.JWTSecret))

	// Public catalog and review reads
	mainRouter.HandleFunc("/foods", db.GetAllFoods).Methods("GET")
	mainRouter.HandleFunc("/api/food/{id}", db.GetSingleFood).Methods("GET")
	mainRouter.HandleFunc("/api/reviews/{id}", db.GetReviewsForFood).Methods("GET")
	mainRouter.HandleFunc("/api/balance/{userId}", db.StreamBalanceHandler).Methods("GET")

	//Define routes that require RequestBody validation
	validationRouter := mainRouter.PathPrefix("/api").Subrouter()
	validationRouter.Use(middleware.ValidateRequestBody)
	validationRouter.HandleFunc("/users", db.CreateUserHandler).Methods("POST")

	// Define routes that don't use any middleware
	tokenRouter := mainRouter.PathPrefix("/token").Subrouter()
	tokenRouter.HandleFunc("/login/", db.LoginTokenHandler).Methods("POST")
	tokenRouter.HandleFunc("/refresh/", db.RefreshTokenHandler).Methods("POST")
	mainRouter.HandleFunc("/admin/login", db.AdminLoginHandler).Methods("POST")

	//Define routes that require jwttoken validation middleware
	userRouter := mainRouter.PathPrefix("/api").Subrouter()
	userRouter.Use(auth)
	userRouter.HandleFunc("/users/me/", db.GetCurrentUserHandler).Methods("GET")
	userRouter.HandleFunc("/users/logout/", db.LogoutUserHandler).Methods("POST")
	userRouter.HandleFunc("/cart", db.GetCart).Methods("GET")
	userRouter.HandleFunc("/cart", db.PostCartItem).Methods("POST")
	userRouter.HandleFunc("/cart", db.DeleteCart).Methods("DELETE")
	userRouter.HandleFunc("/cart/quantity", db.PatchCartQuantity).Methods("PATCH")
	userRouter.HandleFunc("/cart/items/{id}", db.DeleteCartItem).Methods("DELETE")
	userRouter.HandleFunc("/checkout", db.PostCheckout).Methods("POST")
	userRouter.HandleFunc("/create-payment-intent", db.CreatePaymentIntentHandler).Methods("POST")
	userRouter.HandleFunc("/orders", db.PostOrder).Methods("POST")
	userRouter.HandleFunc("/orders/{userId}", db.GetOrdersForUser).Methods("GET")
	userRouter.HandleFunc("/reviews", db.PostReview).Methods("POST")

	// Admin panel routes: catalog CRUD and balance pushes
	adminRouter := mainRouter.NewRoute().Subrouter()
	adminRouter.Use(auth, middleware.AdminOnly)
	adminRouter.HandleFunc("/foods", db.PostFood).Methods("POST")
	adminRouter.HandleFunc("/foods/{id}", db.PutFood).Methods("PUT")
	adminRouter.HandleFunc("/foods/{id}", db.DeleteFood).Methods("DELETE")
	adminRouter.HandleFunc("/api/balance/{userId}", db.SetBalanceHandler).Methods("POST")

	// Serve the main router
	http.Handle("/", mainRouter)

	// No WriteTimeout: the balance stream holds its connection open.
	srv := &http.Server{
		Handler:     mainRouter,
		Addr:        cfg.Addr,
		ReadTimeout: 15 * time.Second,
	}

	log.Printf("Canteen API listening on %s", cfg.Addr)
	log.Fatal(srv.ListenAndServe())
}
