package handlers

import (
	"net/http"

	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// ctxUserIDKey is where authMiddleware stores the authenticated user id.
const ctxUserIDKey = "userId"

// authMiddleware guards every route it is attached to; handlers behind it can rely on userId being set.
func (h *Handler) authMiddleware(c *gin.Context) {
	userID, err := h.services.Authorize(c.GetHeader("Authorization"))
	if err != nil {
		h.log.Infow("auth_rejected", "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.MsgUnauthorized})
		return
	}

	c.Set(ctxUserIDKey, userID)
	c.Next()
}
