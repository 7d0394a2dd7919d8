package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mercado-api/internal/service"
)

const authClaimsKey = "auth_claims"

// EpochChecker resuelve la época de tokens vigente de un usuario.
type EpochChecker interface {
	Current(ctx context.Context, userID string) (int, error)
}

// JWTAuthMiddleware valida el bearer token y deja los claims en el contexto.
// Además del exp, exige que el claim ver coincida con la época vigente del
// usuario: un ban sube la época y mata los tokens ya emitidos.
func JWTAuthMiddleware(jwtSvc *service.JWTService, versions EpochChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			respondError(c, http.StatusInternalServerError, "Internal server error")
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token")
			c.Abort()
			return
		}

		if versions != nil {
			current, err := versions.Current(c.Request.Context(), claims.UserID)
			if err != nil {
				respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token")
				c.Abort()
				return
			}
			if claims.TokenVersion != current {
				respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token")
				c.Abort()
				return
			}
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// RequireRole autoriza según el rol del claim verificado, nunca según
// campos del request.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
			c.Abort()
			return
		}
		for _, role := range allowedRoles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		respondError(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}
