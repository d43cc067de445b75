package middleware

import (
	"net/http"
	"strings"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/coursemarket/backend/internal/identity"
	"github.com/coursemarket/backend/internal/repository"
	"github.com/coursemarket/backend/internal/token"
	"github.com/gin-gonic/gin"
)

const (
	errMissingCredential = "Authorization header is missing or malformed"
	errInvalidToken      = "Token is invalid or expired"
	errStaleCredential   = "Account is inactive or no longer exists"
	errInsufficientRole  = "Insufficient permissions"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg, "error": msg})
}

// Authenticate validates the bearer token and re-checks the account against
// live store state: a deactivated or deleted user is rejected immediately,
// even though the token itself stays cryptographically valid until expiry.
// On success the caller's identity is attached to the request context.
func Authenticate(users repository.UserRepository, codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, errMissingCredential)
			return
		}

		claims, err := codec.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abort(c, http.StatusUnauthorized, errInvalidToken)
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.Subject)
		if err != nil || !user.IsActive {
			abort(c, http.StatusUnauthorized, errStaleCredential)
			return
		}

		id := &identity.Identity{ID: user.ID, Email: user.Email, Role: user.Role}
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// OptionalAuthenticate attaches an identity when a valid token for an active
// user is presented and continues anonymously otherwise. Used on routes that
// behave differently for authenticated callers (register honoring role=admin).
func OptionalAuthenticate(users repository.UserRepository, codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		claims, err := codec.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.Subject)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		id := &identity.Identity{ID: user.ID, Email: user.Email, Role: user.Role}
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireRole runs after Authenticate and rejects callers whose role is not
// in the allowed set.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		id := identity.FromContext(c.Request.Context())
		if id == nil {
			abort(c, http.StatusUnauthorized, errMissingCredential)
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			abort(c, http.StatusForbidden, errInsufficientRole)
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole(admin).
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
