package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turma-apps/turma-web/internal/models"
	"github.com/turma-apps/turma-web/internal/service"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/response"
)

// AuthHandler exposes login, logout and profile endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Authenticate with the school API
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.Credentials true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), creds)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Logout godoc
// @Summary Close the current session
// @Tags Auth
// @Produce json
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
		return
	}
	if err := h.auth.Logout(c.Request.Context(), strings.TrimPrefix(header, "Bearer ")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current session profile
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, session.User, nil)
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.PasswordChange true "New password"
// @Success 204
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var change models.PasswordChange
	if err := c.ShouldBindJSON(&change); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload"))
		return
	}
	if err := h.auth.ChangeOwnPassword(c.Request.Context(), session, change); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
