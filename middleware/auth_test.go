package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/invoice-ledger/auth"
	"github.com/yourusername/invoice-ledger/config"
	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/logger"
	"github.com/yourusername/invoice-ledger/models"
)

func TestJwtAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret: "test-secret",
	}
	users := auth.NewStaticUserStore(
		models.User{ID: 1, Username: "admin", Role: models.RoleAdmin, IsActive: true},
		models.User{ID: 2, Username: "former", Role: models.RoleClerk, IsActive: false},
	)

	validToken, _ := GenerateToken("admin", models.RoleAdmin, cfg.JWTSecret, 1*time.Hour)
	expiredToken, _ := GenerateToken("admin", models.RoleAdmin, cfg.JWTSecret, -1*time.Hour)
	foreignToken, _ := GenerateToken("admin", models.RoleAdmin, "other-secret", 1*time.Hour)
	unknownUserToken, _ := GenerateToken("ghost", models.RoleAdmin, cfg.JWTSecret, 1*time.Hour)
	inactiveToken, _ := GenerateToken("former", models.RoleClerk, cfg.JWTSecret, 1*time.Hour)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedRole   string
		expectedCode   string
	}{
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedRole:   models.RoleAdmin,
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Invalid " + validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "ExpiredToken",
		},
		{
			name:           "Invalid Token",
			authHeader:     "Bearer invalid.token.string",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Wrong Signing Secret",
			authHeader:     "Bearer " + foreignToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Unknown Principal",
			authHeader:     "Bearer " + unknownUserToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Inactive Principal",
			authHeader:     "Bearer " + inactiveToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JwtAuthMiddleware(cfg, users))
			router.GET("/test", func(c *gin.Context) {
				role, _ := c.Get(ContextRole)
				c.JSON(http.StatusOK, gin.H{"role": role})
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedRole != "" {
				assert.Contains(t, w.Body.String(), tt.expectedRole)
			}
			if tt.expectedCode != "" {
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			}
			if w.Code == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestParseToken(t *testing.T) {
	token, err := GenerateToken("admin", models.RoleClerk, "s", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token, "s")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, models.RoleClerk, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	_, err = ParseToken(token, "other")
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupContext   func(c *gin.Context)
		requiredRoles  []string
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Has Required Role",
			setupContext: func(c *gin.Context) {
				c.Set(ContextRole, models.RoleAdmin)
			},
			requiredRoles:  []string{models.RoleAdmin},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Has One Of Required Roles",
			setupContext: func(c *gin.Context) {
				c.Set(ContextRole, models.RoleClerk)
			},
			requiredRoles:  []string{models.RoleAdmin, models.RoleClerk},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Missing Required Role",
			setupContext: func(c *gin.Context) {
				c.Set(ContextRole, models.RoleClerk)
			},
			requiredRoles:  []string{models.RoleAdmin},
			expectedStatus: http.StatusForbidden,
			expectedCode:   ierr.ErrCodePermissionDenied,
		},
		{
			name: "No Role In Context",
			setupContext: func(c *gin.Context) {
			},
			requiredRoles:  []string{models.RoleAdmin},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ierr.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler(logger.NewNop()))
			router.Use(func(c *gin.Context) {
				tt.setupContext(c)
				c.Next()
			})
			router.Use(RequireRole(tt.requiredRoles...))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var body ierr.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body.Code)
				assert.NotEmpty(t, body.Detail)
			}
		})
	}
}
