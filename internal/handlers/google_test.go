package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/polymathuniversata/toDoApp/internal/cache"
	"github.com/polymathuniversata/toDoApp/internal/config"
	"github.com/polymathuniversata/toDoApp/internal/handlers"
	"github.com/polymathuniversata/toDoApp/internal/models"
	"github.com/polymathuniversata/toDoApp/internal/services"
)

const testFrontendURL = "http://localhost:3000"

// setupGoogleStack wires the consent/callback handlers over a real broker
// backed by miniredis. The code-exchange leg needs Google and is not
// reachable from here: these tests cover the consent redirect and every
// failure path before the exchange.
func setupGoogleStack(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	states := cache.NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { states.Close() })

	broker := services.NewOAuthBroker(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:5000/api/auth/google/callback",
	}, states)
	tokens := services.NewTokenService("test-secret", time.Hour)
	handler := handlers.NewGoogleAuthHandler(db, broker, tokens, testFrontendURL)

	router := gin.New()
	router.GET("/api/auth/google", handler.Consent)
	router.GET("/api/auth/google/callback", handler.Callback)

	return router
}

func assertFailureRedirect(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != testFrontendURL+"/login?error=oauth_failed" {
		t.Errorf("Expected failure redirect, got %q", loc)
	}
}

func TestConsent_RedirectsToGoogle(t *testing.T) {
	router := setupGoogleStack(t)

	req, _ := http.NewRequest("GET", "/api/auth/google", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", w.Code)
	}

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse Location header: %v", err)
	}
	if loc.Host != "accounts.google.com" {
		t.Errorf("Expected redirect to accounts.google.com, got %q", loc.Host)
	}

	q := loc.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("Expected client_id in consent URL, got %q", q.Get("client_id"))
	}
	if q.Get("access_type") != "offline" {
		t.Errorf("Expected offline access, got %q", q.Get("access_type"))
	}
	if q.Get("state") == "" {
		t.Error("Expected a state parameter in the consent URL")
	}
}

func TestCallback_ProviderError(t *testing.T) {
	router := setupGoogleStack(t)

	req, _ := http.NewRequest("GET", "/api/auth/google/callback?error=access_denied", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertFailureRedirect(t, w)
}

func TestCallback_UnknownState(t *testing.T) {
	router := setupGoogleStack(t)

	req, _ := http.NewRequest("GET", "/api/auth/google/callback?state=never-issued&code=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertFailureRedirect(t, w)
}

func TestCallback_MissingState(t *testing.T) {
	router := setupGoogleStack(t)

	req, _ := http.NewRequest("GET", "/api/auth/google/callback?code=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertFailureRedirect(t, w)
}

func TestCallback_MissingCode(t *testing.T) {
	router := setupGoogleStack(t)

	// Obtain a genuine state nonce from the consent redirect.
	req, _ := http.NewRequest("GET", "/api/auth/google", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse consent Location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("consent redirect carried no state")
	}

	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/api/auth/google/callback?state="+url.QueryEscape(state), nil)
	router.ServeHTTP(w2, req2)

	assertFailureRedirect(t, w2)

	// The nonce is burned even on a failed callback.
	w3 := httptest.NewRecorder()
	req3, _ := http.NewRequest("GET", "/api/auth/google/callback?state="+url.QueryEscape(state)+"&code=abc", nil)
	router.ServeHTTP(w3, req3)

	assertFailureRedirect(t, w3)
}
