package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/models"
	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware lets through requests carrying a bearer token of an
// active staff user.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authorization header is missing or malformed.")
			return
		}

		svc := GetServices(c)
		if svc == nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Services not configured.")
			return
		}

		user, err := svc.Auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying token.")
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}
