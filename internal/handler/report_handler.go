package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turma-apps/turma-web/internal/models"
	"github.com/turma-apps/turma-web/internal/service"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/response"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ReportHandler exposes background report downloads and spreadsheet exports.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// Request godoc
// @Summary Request a DOCX report download
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body models.DownloadRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Request(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download request"))
		return
	}
	download, err := h.reports.Request(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, download, nil)
}

// Status godoc
// @Summary Poll a report download
// @Tags Reports
// @Produce json
// @Param id path string true "Download ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	ticket, err := h.reports.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// File godoc
// @Summary Fetch a prepared report by signed token
// @Tags Reports
// @Produce application/octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /reports/file [get]
func (h *ReportHandler) File(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, filename, err := h.reports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", docxContentType)
	c.File(file.Name())
}

// StatementExport godoc
// @Summary Export the monthly statement as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Param id path int true "Class ID"
// @Param year query int false "Year"
// @Param month query int false "Month"
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /classes/{id}/payments/export [get]
func (h *ReportHandler) StatementExport(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, month := monthQuery(c)
	token := upstreamToken(c)

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		out, err := h.exports.StatementCSV(c.Request.Context(), token, classID, year, month)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("mensalidades", year, month, "csv")))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", out)
	case "pdf":
		out, err := h.exports.StatementPDF(c.Request.Context(), token, classID, year, month)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("mensalidades", year, month, "pdf")))
		c.Data(http.StatusOK, "application/pdf", out)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// AttendanceExport godoc
// @Summary Export a class's attendance history as XLSX
// @Tags Reports
// @Produce application/octet-stream
// @Param id path int true "Class ID"
// @Success 200
// @Router /classes/{id}/sessions/export [get]
func (h *ReportHandler) AttendanceExport(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.exports.AttendanceXLSX(c.Request.Context(), upstreamToken(c), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chamadas.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}

func exportFilename(prefix string, year, month int, ext string) string {
	return fmt.Sprintf("%s_%04d-%02d.%s", prefix, year, month, ext)
}
