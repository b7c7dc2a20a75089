package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/polymathuniversata/toDoApp/internal/models"
	"github.com/polymathuniversata/toDoApp/internal/services"
)

// TokenHeader is the request header carrying the session token. The
// frontend sends it on every authenticated call; it is not the standard
// Authorization scheme.
const TokenHeader = "x-auth-token"

const userContextKey = "current_user"

// AuthRequired rejects requests without a valid session token before they
// reach the business handler. Missing, expired and malformed tokens each
// get their own message; a token whose user no longer exists is treated
// as invalid.
func AuthRequired(db *gorm.DB, tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader(TokenHeader)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "No token, authorization denied",
			})
			return
		}

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "expired_token",
					"message": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token is not valid",
			})
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token is not valid",
			})
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired, or nil on routes
// that skipped it.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
