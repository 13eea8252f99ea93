package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const protectedPayload = "here is the protected data"

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Protected data
// @Tags         protected
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/protected/data [get]
// @Security     BearerAuth
func (h *Handler) protectedData(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": protectedPayload})
}
