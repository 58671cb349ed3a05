package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"valuate_backend/internal/config"
	"valuate_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fakeCounter struct {
	n   int64
	err error
}

func (f fakeCounter) Count() (int64, error) { return f.n, f.err }

func serveHealth(c *HealthController, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	router := gin.New()
	router.GET("/health", c.HealthCheck)
	router.GET("/health/live", c.Live)
	router.GET("/health/ready", c.Ready)
	router.GET("/health/detailed", c.Detailed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &envelope)
	return w, envelope.Data
}

func TestLiveAlwaysSucceeds(t *testing.T) {
	c := NewHealthController(nil, nil, config.AIConfig{}, fakeCounter{}, fakeCounter{})

	w, data := serveHealth(c, "/health/live")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if data["status"] != "alive" {
		t.Errorf("status field = %v, want alive", data["status"])
	}
}

func TestReadyFailsWithoutDatabase(t *testing.T) {
	c := NewHealthController(nil, nil, config.AIConfig{}, fakeCounter{}, fakeCounter{})

	w, _ := serveHealth(c, "/health/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHealthCheckFailsWithoutDatabase(t *testing.T) {
	c := NewHealthController(nil, nil, config.AIConfig{}, fakeCounter{}, fakeCounter{})

	w, _ := serveHealth(c, "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestDetailedReportsComponentState(t *testing.T) {
	c := NewHealthController(nil, nil, config.AIConfig{APIKey: "sk-test"}, fakeCounter{}, fakeCounter{})

	w, data := serveHealth(c, "/health/detailed")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if data["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", data["status"])
	}
	if data["apiKeyConfigured"] != true {
		t.Errorf("apiKeyConfigured = %v, want true", data["apiKeyConfigured"])
	}

	components, ok := data["components"].(map[string]interface{})
	if !ok {
		t.Fatalf("components missing from report: %v", data)
	}
	if components["database"] != "down" {
		t.Errorf("database component = %v, want down", components["database"])
	}
	if components["redis"] != "disabled" {
		t.Errorf("redis component = %v, want disabled", components["redis"])
	}

	// Counts are only meaningful when the database answers.
	if _, present := data["valuators"]; present {
		t.Error("valuator count reported while the database is down")
	}
}

func TestDetailedFlagsMissingAPIKey(t *testing.T) {
	c := NewHealthController(nil, nil, config.AIConfig{}, fakeCounter{}, fakeCounter{})

	_, data := serveHealth(c, "/health/detailed")
	if data["apiKeyConfigured"] != false {
		t.Errorf("apiKeyConfigured = %v, want false", data["apiKeyConfigured"])
	}
}
