// Unified response shapes for ALL API endpoints:
// success: {"success": true, ...payload}
// failure: {"success": false, "error": "..."}
package resp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, gin.H{"success": false, "error": message})
}

// AbortWithError aborts the chain and sends the unified error response
// (for middleware).
func AbortWithError(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, gin.H{"success": false, "error": message})
}
