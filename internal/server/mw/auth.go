package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"maqayees/internal/security"
	"maqayees/internal/server/resp"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// RequireUser validates the dashboard access token and puts the user id and
// role on the context.
func RequireUser(jwtm *security.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserToken))
		if raw == "" {
			resp.AbortWithError(c, http.StatusUnauthorized, "missing X-User-Token")
			return
		}
		id, role, err := jwtm.ParseAccess(raw)
		if err != nil || id == uuid.Nil {
			resp.AbortWithError(c, http.StatusUnauthorized, "invalid X-User-Token")
			return
		}
		c.Set(CtxUserID, id)
		c.Set(CtxRole, role)
		c.Next()
	}
}
