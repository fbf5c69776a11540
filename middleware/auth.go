package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
	"github.com/yourusername/invoice-ledger/auth"
	"github.com/yourusername/invoice-ledger/config"
	ierr "github.com/yourusername/invoice-ledger/errors"
	"github.com/yourusername/invoice-ledger/models"
)

// Context keys set by JwtAuthMiddleware.
const (
	ContextPrincipal = "principal"
	ContextUserID    = "userID"
	ContextRole      = "role"
)

// Claims represents the JWT claims. The subject is the username.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token for a user
func GenerateToken(username string, role string, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(tokenString string, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JwtAuthMiddleware validates the bearer token, resolves the principal it
// names and stores it in the context.
func JwtAuthMiddleware(cfg *config.Config, users auth.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Not authenticated", "")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "Invalid authorization header format", "")
			return
		}

		claims, err := ParseToken(parts[1], cfg.JWTSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(c, "Token has expired", "ExpiredToken")
			} else {
				unauthorized(c, "Could not validate credentials", "InvalidToken")
			}
			return
		}

		user, err := users.FindByUsername(c.Request.Context(), claims.Subject)
		if err != nil || !user.IsActive {
			unauthorized(c, "Could not validate credentials", "InvalidToken")
			return
		}

		c.Set(ContextPrincipal, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)

		c.Next()
	}
}

func unauthorized(c *gin.Context, detail, code string) {
	body := gin.H{"detail": detail}
	if code != "" {
		body["code"] = code
	}
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}

// Principal returns the user stored by JwtAuthMiddleware.
func Principal(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// RequireRole checks if the user has specific roles. Failures are attached
// with c.Error for ErrorHandler to render.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			c.Error(ierr.NewError("role missing from context").
				WithHint("User role not found in context").
				Mark(ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		roleStr, ok := userRole.(string)
		if !ok {
			c.Error(ierr.NewError("role has unexpected type").
				WithHint("Invalid role type in context").
				Mark(ierr.ErrSystem))
			c.Abort()
			return
		}

		if !lo.Contains(roles, roleStr) {
			c.Error(ierr.NewError("role not allowed").
				WithHint("Forbidden: insufficient permissions").
				WithReportableDetails(map[string]any{"role": roleStr}).
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		c.Next()
	}
}
