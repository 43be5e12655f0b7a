package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	headerCustomerID  = "X-Customer-ID"
	headerDeviceToken = "X-Device-Token"
	headerAdminKey    = "X-Admin-Key"

	customerIDKey = "customerID"
)

// requireCustomer reads the identity asserted by the upstream auth gateway.
func requireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerCustomerID))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthenticated", "customer must be logged in"))
			return
		}
		c.Set(customerIDKey, id)
		c.Next()
	}
}

func customerID(c *gin.Context) string {
	return c.GetString(customerIDKey)
}

// requireAdmin checks X-Admin-Key against a bcrypt hash. An empty hash locks
// the admin routes.
func requireAdmin(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(headerAdminKey)
		if hash == "" || key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthenticated", "admin key required"))
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthenticated", "invalid admin key"))
			return
		}
		c.Next()
	}
}
