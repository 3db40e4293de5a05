package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"repairhub/config"
)

func TestProviderTokenRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	defer func() { config.AppConfig.JWTSecret = "" }()

	token, err := GenerateToken("prov-a", "Alice Fixit", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := ExtractProviderFromToken(token)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if id.ID != "prov-a" || id.Name != "Alice Fixit" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	config.AppConfig.JWTSecret = "other-secret"
	if _, err := ExtractProviderFromToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("prov-a", "", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ExtractProviderFromToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestCheckHealth(t *testing.T) {
	status := CheckHealth(context.Background(), map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
		"cache": func(context.Context) error { return errors.New("down") },
	})
	if status.Healthy || !status.Dependencies["store"] || status.Dependencies["cache"] {
		t.Fatalf("unexpected status: %+v", status)
	}
	if got := GetHealthStatus(); got.Healthy || len(got.Dependencies) != 2 {
		t.Fatalf("snapshot not stored: %+v", got)
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Logger = zap.NewNop()

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
