package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/beaverbuddy/server/internal/apperr"
)

// respondError maps a typed error onto its HTTP status and a stable
// machine-checkable body. The underlying detail is echoed only outside
// production.
func respondError(c *gin.Context, production bool, err error) {
	body := gin.H{
		"error": apperr.Message(err),
		"code":  apperr.CodeOf(err),
	}
	if apperr.IsRetryable(err) {
		body["retryable"] = true
	}
	if !production {
		body["details"] = err.Error()
	}
	c.JSON(apperr.Status(err), body)
}

// userFromContext returns the authenticated user id set by the auth
// middleware.
func userFromContext(c *gin.Context) (string, bool) {
	uid, exists := c.Get("uid")
	if !exists {
		return "", false
	}
	userID, ok := uid.(string)
	return userID, ok && userID != ""
}
