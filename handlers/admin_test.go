package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abirabdullahs/smart-canteen-client/config"
)

func adminTestDB() *DB {
	cfg := config.Default()
	cfg.AdminEmail = "admin@canteen.com"
	cfg.AdminPassword = "admin123"
	cfg.JWTSecret = "test-secret"
	return &DB{Cfg: cfg}
}

func TestAdminLoginIssuesAdminToken(t *testing.T) {
	db := adminTestDB()

	body := strings.NewReader(`{"email":"admin@canteen.com","password":"admin123"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", body)
	rec := httptest.NewRecorder()

	db.AdminLoginHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(db.Cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "admin@canteen.com", claims["username"])
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	db := adminTestDB()

	body := strings.NewReader(`{"email":"admin@canteen.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", body)
	rec := httptest.NewRecorder()

	db.AdminLoginHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid admin credentials. Please try again.")
}

func TestAdminLoginRejectsMissingFields(t *testing.T) {
	db := adminTestDB()

	body := strings.NewReader(`{"email":"","password":""}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", body)
	rec := httptest.NewRecorder()

	db.AdminLoginHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
