package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auth"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "integration-test-secret"

// TestEnv bundles the router with direct access to the ledger so tests can
// seed state that has no public endpoint (admin accounts, expired auctions).
type TestEnv struct {
	Router *gin.Engine
	Repo   *repository.MemoryLedger
	Auth   *auth.AuthService
}

// SetupTestEnv initializes the full HTTP stack over an in-memory ledger.
func SetupTestEnv() *TestEnv {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryLedger()
	auctionService := auction.NewAuctionService(repo)
	authService := auth.NewAuthService(repo, testJWTSecret, time.Hour)
	router := server.SetupRouter(auctionService, authService, authService)
	return &TestEnv{Router: router, Repo: repo, Auth: authService}
}

// ExecuteRequestAndParse executes an HTTP request on the router and parses the JSON envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// SignupAndLogin registers a fresh account through the API and returns its id and token.
func SignupAndLogin(t *testing.T, env *TestEnv, name, email, password string) (userID, token string) {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	userID = resp["data"].(map[string]any)["user_id"].(string)

	resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	token = resp["data"].(map[string]any)["token"].(string)
	return userID, token
}

// SeedAdmin inserts an admin account directly into the ledger and logs it in.
func SeedAdmin(t *testing.T, env *TestEnv, email, password string) (userID, token string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	userID = utils.GenerateID()
	require.NoError(t, env.Repo.CreateUser(model.User{
		UserID:       userID,
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}))

	resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	token = resp["data"].(map[string]any)["token"].(string)
	return userID, token
}

// SeedProduct inserts a listing directly into the ledger, bypassing the API,
// so tests can control ends_at freely.
func SeedProduct(t *testing.T, env *TestEnv, sellerID, title string, startPrice float64, endsAt time.Time) string {
	t.Helper()

	productID := utils.GenerateID()
	require.NoError(t, env.Repo.CreateProduct(model.Product{
		ProductID:  productID,
		SellerID:   sellerID,
		Title:      title,
		StartPrice: startPrice,
		EndsAt:     endsAt,
		CreatedAt:  time.Now().UTC(),
	}))
	return productID
}

// Deposit funds an account through the API.
func Deposit(t *testing.T, env *TestEnv, token string, amount float64) {
	t.Helper()

	_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/me/deposit", token, map[string]any{
		"amount": amount,
	})
	require.Equal(t, http.StatusOK, w.Code)
}
