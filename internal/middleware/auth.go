// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

const principalKey = "principal"

// Authenticator resolves an access token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Principal, error)
}

// AuthRequired accepts "Authorization: Bearer <token>". Browsers cannot set headers on a
// websocket handshake, so a token query parameter is accepted as well.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), token)
		if errors.Is(err, services.ErrAccountRevoked) {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountRevoked))
			return
		}
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		c.Set(principalKey, principal)
		c.Set(utils.UserIDKey, principal.ID.String())
		c.Next()
	}
}

// RoleRequired lets the request through only for the listed roles.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if ok {
			for _, r := range roles {
				if principal.Role == r {
					c.Next()
					return
				}
			}
		}

		utils.ForbiddenResponse(c, "")
	}
}

// PrincipalFrom returns the principal set by AuthRequired.
func PrincipalFrom(c *gin.Context) (services.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
