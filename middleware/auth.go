package middleware

import (
	"net/http"
	"strings"

	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Authenticate rejects requests without a valid access token.
func Authenticate(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromHeader(c, tokens)
		if err != nil || identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// lets the request through as anonymous otherwise. Guest flows (table
// scans, guest orders) depend on this never aborting.
func OptionalAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := identityFromHeader(c, tokens); err == nil && identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// RequireRole runs after Authenticate and limits the route to the given
// roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Insufficient permissions",
		})
		c.Abort()
	}
}

const customerIDKey = "customerID"

// AuthenticateCustomer guards guest-session endpoints. It accepts only
// customer-typed tokens; a staff or customer account's access token is
// rejected here.
func AuthenticateCustomer(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || tokenStr == header {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "No token provided",
			})
			c.Abort()
			return
		}

		identity, err := tokens.Verify(tokenStr, services.TokenTypeCustomer)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			c.Abort()
			return
		}

		c.Set(customerIDKey, identity.UserID)
		c.Next()
	}
}

// GetCustomerID returns the guest session's customer id set by
// AuthenticateCustomer.
func GetCustomerID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(customerIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// GetIdentity returns the caller's identity, or nil for anonymous
// requests.
func GetIdentity(c *gin.Context) *services.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*services.Identity)
	if !ok {
		return nil
	}
	return identity
}

func identityFromHeader(c *gin.Context, tokens *services.TokenService) (*services.Identity, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenStr == "" || tokenStr == header {
		return nil, nil
	}

	return tokens.Verify(tokenStr, services.TokenTypeAccess)
}
