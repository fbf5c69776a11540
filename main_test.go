package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/invoice-ledger/auth"
	"github.com/yourusername/invoice-ledger/config"
	"github.com/yourusername/invoice-ledger/handlers"
	"github.com/yourusername/invoice-ledger/logger"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := handlers.NewRouter(handlers.RouterDeps{
		Config: &config.Config{JWTSecret: "test-secret", CORSAllowedOrigins: []string{"*"}},
		Logger: logger.NewNop(),
		Users:  auth.NewStaticUserStore(),
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "invoice-ledger-api")
}
