package handlers

import (
	"errors"
	"net/http"

	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error kind to the HTTP status returned to clients.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindAuthentication:
		return http.StatusBadRequest
	case service.KindDuplicateUser:
		return http.StatusConflict
	case service.KindAuthorization:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the classified status. Internal causes are logged under event
// and replaced by a generic message.
func (h *Handler) writeError(c *gin.Context, event string, err error, kv ...any) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	if kind == service.KindInternal {
		h.log.Errorw(event, append(kv, "err", err)...)
		c.JSON(status, gin.H{"error": service.MsgInternal})
		return
	}

	h.log.Infow(event, append(kv, "kind", kind.String(), "err", err)...)
	msg := service.MsgUnauthorized
	var se *service.Error
	if kind != service.KindAuthorization && errors.As(err, &se) {
		msg = se.Message
	}
	c.JSON(status, gin.H{"error": msg})
}
