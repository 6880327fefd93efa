package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	"github.com/turma-apps/turma-web/pkg/export"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// ExportService renders statements and attendance history to downloadable
// spreadsheet and document formats.
type ExportService struct {
	payments *PaymentService
	rollcall *RollcallService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	xlsx     *export.XLSXExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(payments *PaymentService, rollcall *RollcallService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		payments: payments,
		rollcall: rollcall,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		xlsx:     export.NewXLSXExporter(),
		logger:   logger,
	}
}

// StatementCSV renders one month's tuition statement as CSV.
func (s *ExportService) StatementCSV(ctx context.Context, token string, classID int64, year, month int) ([]byte, error) {
	data, err := s.statementDataset(ctx, token, classID, year, month)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(data)
}

// StatementPDF renders one month's tuition statement as PDF.
func (s *ExportService) StatementPDF(ctx context.Context, token string, classID int64, year, month int) ([]byte, error) {
	data, err := s.statementDataset(ctx, token, classID, year, month)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(data, fmt.Sprintf("Mensalidades %s %d", MonthName(month), year))
}

// AttendanceXLSX renders a class's full session history as a spreadsheet,
// one row per student log.
func (s *ExportService) AttendanceXLSX(ctx context.Context, token string, classID int64) ([]byte, error) {
	sessions, err := s.rollcall.Sessions(ctx, token, classID)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"Data", "Aula", "Aluno", "Presença", "Redação", "Nota", "Observação"},
	}
	for _, session := range sessions {
		history, err := s.rollcall.History(ctx, token, classID, session.ID)
		if err != nil {
			return nil, err
		}
		for _, entry := range history.Entries {
			data.Rows = append(data.Rows, map[string]string{
				"Data":       session.Date,
				"Aula":       session.Description,
				"Aluno":      entry.StudentName,
				"Presença":   presenceLabel(entry.Status),
				"Redação":    boolLabel(entry.EssayDelivered),
				"Nota":       gradeText(entry.Grade),
				"Observação": entry.Observation,
			})
		}
	}
	return s.xlsx.Render(data, "Chamadas")
}

func (s *ExportService) statementDataset(ctx context.Context, token string, classID int64, year, month int) (export.Dataset, error) {
	statement, err := s.payments.Statement(ctx, token, classID, year, month)
	if err != nil {
		return export.Dataset{}, err
	}

	data := export.Dataset{
		Headers: []string{"Aluno", "Responsável", "Status", "Valor", "Pago em"},
	}
	for _, row := range statement.Rows {
		record := map[string]string{
			"Aluno":       row.Student.Name,
			"Responsável": row.Student.ParentName,
			"Status":      statusLabel(row.Status),
			"Valor":       row.AmountFormatted,
		}
		if row.Payment != nil && row.Payment.PaidAt != nil {
			record["Pago em"] = *row.Payment.PaidAt
		}
		data.Rows = append(data.Rows, record)
	}
	return data, nil
}

// MonthName returns the Portuguese month name, or the number when out of
// range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d", month)
	}
	return monthNames[month-1]
}

func statusLabel(status string) string {
	switch status {
	case models.PaymentPaid:
		return "Pago"
	case models.PaymentLate:
		return "Atrasado"
	default:
		return "Pendente"
	}
}

func presenceLabel(status string) string {
	if status == models.StatusPresent {
		return "Presente"
	}
	return "Falta"
}

func boolLabel(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
