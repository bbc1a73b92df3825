package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maqayees/internal/server/resp"
)

const (
	HeaderClientToken = "X-Client-Token"
	HeaderUserToken   = "X-User-Token"
)

// RequireClientToken gates the API to known client builds (the mobile app
// and the dashboard frontend ship the token).
func RequireClientToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(HeaderClientToken))
		if token == "" {
			resp.AbortWithError(c, http.StatusBadRequest, "missing X-Client-Token header")
			return
		}
		if token != expected {
			resp.AbortWithError(c, http.StatusUnauthorized, "invalid X-Client-Token")
			return
		}
		c.Next()
	}
}
