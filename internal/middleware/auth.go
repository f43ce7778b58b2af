package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/patient-api/internal/handler"
	"github.com/jwalitptl/patient-api/internal/model"
)

const (
	ContextSubject = "subject"
	ContextRole    = "role"

	claimsCacheTTL     = time.Minute
	claimsCacheCleanup = 5 * time.Minute
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error)
}

type AuthMiddleware struct {
	authService TokenValidator
	claimsCache *gocache.Cache
}

func NewAuthMiddleware(authService TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		claimsCache: gocache.New(claimsCacheTTL, claimsCacheCleanup),
	}
}

// Authenticate verifies the bearer token and sets subject and role in the
// request context. Recently validated claims are cached briefly, never past
// the token's own expiry.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.lookupClaims(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func (m *AuthMiddleware) lookupClaims(ctx context.Context, token string) (*model.TokenClaims, error) {
	if cached, ok := m.claimsCache.Get(token); ok {
		return cached.(*model.TokenClaims), nil
	}

	claims, err := m.authService.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := claimsCacheTTL
	if remaining := time.Until(claims.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl > 0 {
		m.claimsCache.Set(token, claims, ttl)
	}
	return claims, nil
}
