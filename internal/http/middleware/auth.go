package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/services"
	"github.com/msaimsawaid/music/internal/utils"
)

const userContextKey = "currentUser"

// RequireAuth extracts the bearer token, verifies it and resolves the user
// it belongs to. A token whose account has since been deleted is rejected.
func RequireAuth(tokens *services.TokenService, users services.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "You are not logged in! Please log in to get access."))
			c.Abort()
			return
		}

		userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			message := "Invalid token. Please log in again."
			if errors.Is(err, services.ErrTokenExpired) {
				message = "Your token has expired! Please log in again."
			}
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, message))
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "The user belonging to this token no longer exists."))
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RestrictTo runs after RequireAuth and rejects identities outside the
// allowed roles.
func RestrictTo(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "You are not logged in! Please log in to get access."))
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		utils.RespondError(c, utils.NewAppError(http.StatusForbidden, "You do not have permission to perform this action"))
		c.Abort()
	}
}

// CurrentUser returns the identity attached by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
