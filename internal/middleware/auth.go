package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"flights_backend/internal/auth"
	"flights_backend/internal/notify"
	"flights_backend/internal/session"
)

const (
	identityKey = "identity"
	tokenKey    = "token"
	claimsKey   = "claims"
)

// Identify resolves the caller of every request. A request without
// credentials continues as anonymous; credentials that are present but
// invalid, expired or revoked end the request with 401.
func Identify(tokens *auth.TokenManager, sessions session.Store, serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(notify.ServiceKeyHeader); key != "" {
			if !auth.ServiceKeyMatches(serviceKey, key) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid service key"})
				return
			}
			c.Set(identityKey, auth.ServiceIdentity)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(identityKey, auth.Anonymous)
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		revoked, err := sessions.Contains(c.Request.Context(), tokenString)
		if err != nil {
			logrus.WithError(err).Error("Identify: blacklist lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not verify token"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Set(tokenKey, tokenString)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through only when the identity set by
// Identify satisfies role.
func RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if auth.HasRole(id, role) {
			c.Next()
			return
		}
		if id.Role == auth.RoleAnonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// CurrentIdentity returns the caller, anonymous when Identify did not run.
func CurrentIdentity(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Anonymous
}

// CurrentToken returns the bearer token and its claims, if the request
// carried one.
func CurrentToken(c *gin.Context) (string, *auth.Claims, bool) {
	token := c.GetString(tokenKey)
	v, ok := c.Get(claimsKey)
	if !ok || token == "" {
		return "", nil, false
	}
	claims, ok := v.(*auth.Claims)
	return token, claims, ok
}
