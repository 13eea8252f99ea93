package handlers

import (
	"net/http"

	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

const msgInvalidBody = "invalid request body"

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("auth_bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return false
	}
	return true
}

// @Summary      Register a user
// @Description  Creates a credential record and returns it with a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "username, email, password"
// @Success      201   {object}  models.AuthResult
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/register [post]
func (h *Handler) register(c *gin.Context) {
	var input registerRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	res, err := h.services.Register(c.Request.Context(), service.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		h.writeError(c, "auth_register_failed", err, "username", input.Username)
		return
	}

	h.log.Infow("auth_registered", "user_id", res.ID, "username", res.Username)
	c.JSON(http.StatusCreated, res)
}

// @Summary      Log in
// @Description  Verifies credentials and returns the user with a fresh bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "username, password"
// @Success      200   {object}  models.AuthResult
// @Failure      400   {object}  map[string]string  "Invalid username | Incorrect password"
// @Failure      500   {object}  map[string]string
// @Router       /api/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	res, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.writeError(c, "auth_login_failed", err, "username", input.Username)
		return
	}

	h.log.Infow("auth_logged_in", "user_id", res.ID, "username", res.Username)
	c.JSON(http.StatusOK, res)
}
