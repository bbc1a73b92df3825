package handlers

import (
	"github.com/gin-gonic/gin"

	"maqayees/internal/server/resp"
)

// GET /health
func Health(c *gin.Context) {
	resp.OK(c, gin.H{"status": "ok"})
}
