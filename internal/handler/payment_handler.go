package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turma-apps/turma-web/internal/models"
	"github.com/turma-apps/turma-web/internal/service"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/response"
)

// PaymentHandler exposes the monthly tuition statement and toggles.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Statement godoc
// @Summary Monthly tuition statement of a class
// @Tags Payments
// @Produce json
// @Param id path int true "Class ID"
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/payments [get]
func (h *PaymentHandler) Statement(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, month := monthQuery(c)

	statement, err := h.payments.Statement(c.Request.Context(), upstreamToken(c), classID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statement, nil)
}

// MonthlyStatement godoc
// @Summary Monthly tuition statement across all students
// @Tags Payments
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Param search query string false "Search by student or parent name"
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) MonthlyStatement(c *gin.Context) {
	year, month := monthQuery(c)
	filter := studentFilterQuery(c)

	statement, err := h.payments.MonthlyStatement(c.Request.Context(), upstreamToken(c), year, month, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statement, nil)
}

// Toggle godoc
// @Summary Flip one student's payment status
// @Tags Payments
// @Accept json
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Param payload body models.ToggleRequest true "Toggle"
// @Success 200 {object} response.Envelope
// @Router /payments/toggle [post]
func (h *PaymentHandler) Toggle(c *gin.Context) {
	// Mounted both under /classes/:id and at the top level.
	if c.Param("id") != "" {
		if _, err := pathID(c, "id"); err != nil {
			response.Error(c, err)
			return
		}
	}
	year, month := monthQuery(c)

	var toggle models.ToggleRequest
	if err := c.ShouldBindJSON(&toggle); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload"))
		return
	}
	payment, err := h.payments.Toggle(c.Request.Context(), upstreamToken(c), year, month, toggle)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// BatchToggle godoc
// @Summary Apply several payment toggles at once
// @Tags Payments
// @Accept json
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Param payload body models.BatchToggleRequest true "Toggles"
// @Success 204
// @Router /payments/batch [post]
func (h *PaymentHandler) BatchToggle(c *gin.Context) {
	if c.Param("id") != "" {
		if _, err := pathID(c, "id"); err != nil {
			response.Error(c, err)
			return
		}
	}
	year, month := monthQuery(c)

	var batch models.BatchToggleRequest
	if err := c.ShouldBindJSON(&batch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload"))
		return
	}
	if err := h.payments.BatchToggle(c.Request.Context(), upstreamToken(c), year, month, batch); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func monthQuery(c *gin.Context) (int, int) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if raw := c.Query("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			year = v
		}
	}
	if raw := c.Query("month"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			month = v
		}
	}
	return year, month
}
