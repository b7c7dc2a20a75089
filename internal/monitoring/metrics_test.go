package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupMetricsRouter() (*gin.Engine, *Metrics) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	router.GET("/metrics", m.Handler())

	return router, m
}

func TestMetrics_CountsRequests(t *testing.T) {
	router, m := setupMetricsRouter()

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ok", nil)
		router.ServeHTTP(w, req)
	}

	snap := m.Snapshot()
	if snap.RequestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", snap.RequestCount)
	}
	if snap.ActiveRequests != 0 {
		t.Errorf("Expected 0 active requests after completion, got %d", snap.ActiveRequests)
	}
	if snap.StatusCodes["2xx"] != 3 {
		t.Errorf("Expected 3 2xx responses, got %d", snap.StatusCodes["2xx"])
	}
	if snap.Endpoints["GET /ok"] != 3 {
		t.Errorf("Expected endpoint counter of 3, got %d", snap.Endpoints["GET /ok"])
	}
	if snap.LastRequest.IsZero() {
		t.Error("Expected LastRequest to be stamped")
	}
}

func TestMetrics_CountsErrors(t *testing.T) {
	router, m := setupMetricsRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	router.ServeHTTP(w, req)

	snap := m.Snapshot()
	if snap.ErrorCount != 1 {
		t.Errorf("Expected 1 error, got %d", snap.ErrorCount)
	}
	if snap.StatusCodes["5xx"] != 1 {
		t.Errorf("Expected 1 5xx response, got %d", snap.StatusCodes["5xx"])
	}
}

func TestMetrics_SnapshotIsACopy(t *testing.T) {
	router, m := setupMetricsRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ok", nil)
	router.ServeHTTP(w, req)

	snap := m.Snapshot()
	snap.StatusCodes["2xx"] = 99

	if m.Snapshot().StatusCodes["2xx"] != 1 {
		t.Error("Mutating a snapshot must not affect the live counters")
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{
		200: "2xx",
		201: "2xx",
		302: "3xx",
		404: "4xx",
		500: "5xx",
		503: "5xx",
	}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}
