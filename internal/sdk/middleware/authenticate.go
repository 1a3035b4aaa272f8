package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chandru2600/Vaidra/internal/services/token"
)

// UserIDKey is the context key under which Authenticate stores the subject id.
const UserIDKey = "userID"

var ErrNoUserID = errors.New("middleware: no user id in context")

// Authenticate validates the bearer token and stores the subject id in the
// request context. Every verification failure is a plain 401; expired and
// forged tokens are not distinguished.
func Authenticate(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			c.Abort()
			return
		}

		subject, err := tokens.Decode(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, subject)
		c.Next()
	}
}

// GetUserID extracts the authenticated subject id set by Authenticate.
func GetUserID(c *gin.Context) (int64, error) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return 0, ErrNoUserID
	}

	id, ok := val.(int64)
	if !ok {
		return 0, ErrNoUserID
	}

	return id, nil
}
