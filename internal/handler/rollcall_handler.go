package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turma-apps/turma-web/internal/models"
	"github.com/turma-apps/turma-web/internal/service"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/response"
)

// RollcallHandler exposes the attendance editor and session history.
type RollcallHandler struct {
	rollcall *service.RollcallService
}

// NewRollcallHandler constructs RollcallHandler.
func NewRollcallHandler(rollcall *service.RollcallService) *RollcallHandler {
	return &RollcallHandler{rollcall: rollcall}
}

// Sessions godoc
// @Summary List a class's attendance sessions
// @Tags Rollcall
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions [get]
func (h *RollcallHandler) Sessions(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sessions, err := h.rollcall.Sessions(c.Request.Context(), upstreamToken(c), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Editor godoc
// @Summary Open the rollcall editor
// @Tags Rollcall
// @Produce json
// @Param id path int true "Class ID"
// @Param session query int false "Session ID to edit; omit for a new session"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/rollcall [get]
func (h *RollcallHandler) Editor(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var ref models.SessionRef
	if raw := c.Query("session"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
			return
		}
		ref.ID = id
	}

	editor, err := h.rollcall.Editor(c.Request.Context(), upstreamToken(c), classID, ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, editor, nil)
}

// Save godoc
// @Summary Save the rollcall editor
// @Tags Rollcall
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Param payload body models.RollcallSave true "Editor state"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/rollcall [post]
func (h *RollcallHandler) Save(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var save models.RollcallSave
	if err := c.ShouldBindJSON(&save); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rollcall payload"))
		return
	}
	detail, err := h.rollcall.Save(c.Request.Context(), upstreamToken(c), classID, save)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if save.Session.IsNew() {
		status = http.StatusCreated
	}
	response.JSON(c, status, detail, nil)
}

// History godoc
// @Summary Read-only view of a recorded session
// @Tags Rollcall
// @Produce json
// @Param id path int true "Class ID"
// @Param sessionId path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions/{sessionId} [get]
func (h *RollcallHandler) History(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sessionID, err := pathID(c, "sessionId")
	if err != nil {
		response.Error(c, err)
		return
	}
	history, err := h.rollcall.History(c.Request.Context(), upstreamToken(c), classID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Delete godoc
// @Summary Delete a recorded session
// @Tags Rollcall
// @Param id path int true "Class ID"
// @Param sessionId path int true "Session ID"
// @Success 204
// @Router /classes/{id}/sessions/{sessionId} [delete]
func (h *RollcallHandler) Delete(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sessionID, err := pathID(c, "sessionId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.rollcall.Delete(c.Request.Context(), upstreamToken(c), classID, sessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
