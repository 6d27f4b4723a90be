package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SecretTokenHeader is the header the platform echoes back on webhook calls.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookAuthMiddleware rejects webhook calls that do not carry the secret
// token registered with the platform. With an empty configured secret the
// check is disabled (local development).
func WebhookAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		got := c.GetHeader(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid webhook secret",
			})
			return
		}
		c.Next()
	}
}
