package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/abirabdullahs/smart-canteen-client/middleware"
	"github.com/abirabdullahs/smart-canteen-client/models"
)

// Save user with flat structure
type UserFlat struct {
	ID           interface{} `json:"id" bson:"_id,omitempty"`
	Name         string      `json:"name" bson:"name"`
	Email        string      `json:"email" bson:"email"`
	PasswordHash string      `json:"password" bson:"password"`
}

type Response struct {
	AccessToken  string `json:"token" bson:"token"`
	RefreshToken string `json:"refresh_token" bson:"refresh_token"`
}

func (db *DB) secret() []byte {
	return []byte(db.Cfg.JWTSecret)
}

//CreateUserHandler handles requests to create new user

func (db *DB) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	// Start the request duration timer
	start := time.Now()

	// Start tracing (OpenTelemetry)
	ctx, span := otel.Tracer("auth-service").Start(r.Context(), "CreateUserHandler")
	defer span.End()

	var newUser models.User
	if err := json.NewDecoder(r.Body).Decode(&newUser); err != nil {
		span.RecordError(err)
		http.Error(w, "Error decoding request body: "+err.Error(), http.StatusBadRequest)
		requestCount.WithLabelValues("error").Inc()
		requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	if newUser.Name == "" || newUser.Email == "" || newUser.Password == "" {
		http.Error(w, "All fields (name, email, password) are required", http.StatusBadRequest)
		requestCount.WithLabelValues("error").Inc()
		requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	// Check if the username already exists
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var existingUser struct {
		Name string `bson:"name"`
	}
	err := db.Collection.FindOne(ctx, bson.M{"name": newUser.Name}).Decode(&existingUser)
	if err != nil && err != mongo.ErrNoDocuments {
		http.Error(w, "Database error: "+err.Error(), http.StatusInternalServerError)
		requestCount.WithLabelValues("error").Inc()
		requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	if existingUser.Name == newUser.Name {
		http.Error(w, "Username is already taken", http.StatusBadRequest)
		requestCount.WithLabelValues("error").Inc()
		requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	// Hash the user's password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newUser.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password: "+err.Error(), http.StatusInternalServerError)
		requestCount.WithLabelValues("error").Inc()
		requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	user := UserFlat{
		Name:         newUser.Name,
		Email:        newUser.Email,
		PasswordHash: string(passwordHash),
	}

	result, err := db.Collection.InsertOne(ctx, user)
	if err != nil {
		http.Error(w, "Failed to create user: "+err.Error(), http.StatusInternalServerError)
		requestCount.WithLabelValues("error").Inc()
		requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	response := map[string]interface{}{
		"message":     "User created successfully",
		"inserted_id": result.InsertedID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		requestCount.WithLabelValues("error").Inc()
		requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	requestCount.WithLabelValues("success").Inc()
	requestDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
}

func (db *DB) LoginTokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		loginRequestsbyStatus.WithLabelValues("error").Inc()
		return
	}

	loginRequests.Inc()
	err := r.ParseForm()
	if err != nil {
		http.Error(w, "Invalid Form Data", http.StatusBadRequest)
		loginRequestsbyStatus.WithLabelValues("error").Inc()
		return
	}

	username := r.PostForm.Get("name")
	password := r.PostForm.Get("password")

	if username == "" || password == "" {
		http.Error(w, "Username and Password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user UserFlat
	err = db.Collection.FindOne(ctx, bson.M{"name": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "User not Found", http.StatusNotFound)
			loginRequestsbyStatus.WithLabelValues("error").Inc()
			return
		}
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		http.Error(w, "Invalid Credentials", http.StatusBadRequest)
		loginRequestsbyStatus.WithLabelValues("error").Inc()
		return
	}

	// Password is correct, generate JWT token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(time.Hour * 1).Unix(), // Access token expires in 1 hour
		"iat":      time.Now().Unix(),
	})
	tokenString, err := token.SignedString(db.secret())
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		loginRequestsbyStatus.WithLabelValues("error").Inc()
		return
	}

	//Generate Refresh Token
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(), // Refresh token expires in 24 hours
		"iat":      time.Now().Unix(),
		"type":     "refresh",
	})

	refreshTokenString, err := refreshToken.SignedString(db.secret())
	if err != nil {
		http.Error(w, "Failed to generate token "+err.Error(), http.StatusInternalServerError)
		loginRequestsbyStatus.WithLabelValues("error").Inc()
		return
	}

	//Store refresh token in the database
	_, err = db.RefreshTokenCollection.InsertOne(ctx, bson.M{
		"username":     user.Name,
		"refreshToken": refreshTokenString,
		"iat":          time.Now().Unix(),
	})
	if err != nil {
		http.Error(w, "Failed to store refresh Token "+err.Error(), http.StatusInternalServerError)
		loginRequestsbyStatus.WithLabelValues("error").Inc()
		return
	}

	response := Response{AccessToken: tokenString, RefreshToken: refreshTokenString}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
	loginRequestsbyStatus.WithLabelValues("success").Inc()
}

func (db *DB) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if request.RefreshToken == "" {
		http.Error(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	token, err := jwt.Parse(request.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return db.secret(), nil
	})

	if err != nil || !token.Valid {
		http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Invalid token claims", http.StatusUnauthorized)
		return
	}
	if claims["type"] != "refresh" {
		http.Error(w, "Invalid token type", http.StatusUnauthorized)
		return
	}

	username, ok := claims["username"].(string)
	if !ok {
		http.Error(w, "Invalid token payload", http.StatusUnauthorized)
		return
	}

	// Check if the refresh token exists in the database
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var storedToken struct {
		RefreshToken string `json:"refreshToken" bson:"refreshToken"`
	}

	err = db.RefreshTokenCollection.FindOne(ctx, bson.M{
		"username":     username,
		"refreshToken": request.RefreshToken,
	}).Decode(&storedToken)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Refresh token not found", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Generate a new access token
	newAccessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(1 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})

	newAccessTokenString, err := newAccessToken.SignedString(db.secret())
	if err != nil {
		http.Error(w, "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	response := struct {
		AccessToken string `json:"access_token"`
	}{
		AccessToken: newAccessTokenString,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

//LogoutUserHandler handles requests to logout user

func (db *DB) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Failed to retrieve username", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	//Blacklist the access token

	accessToken := r.Header.Get("token")

	if accessToken != "" {
		blacklistToken := bson.M{"token": accessToken, "expiresAt": time.Now().Add(time.Second * 60).Unix()}
		_, err := db.TokenBlacklistCollection.InsertOne(ctx, blacklistToken)
		if err != nil {
			http.Error(w, "Failed to blacklist token", http.StatusInternalServerError)
			return
		}
	}

	// Delete refresh token from the database
	result, err := db.RefreshTokenCollection.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		http.Error(w, "Failed to delete refresh token", http.StatusInternalServerError)
		return
	}

	if result.DeletedCount == 0 {
		http.Error(w, "No active session found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "User logged out successfully"})
}

func (db *DB) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.UsernameFromContext(r.Context())

	var user models.SingleUser
	err := db.Collection.FindOne(r.Context(), bson.M{"name": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("User not found"))
			return
		}
		http.Error(w, "Error fetching user details", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
}
