package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
)

func newExportService(paymentAPI *mockPaymentAPI, rollcallAPI *mockRollcallAPI) *ExportService {
	payments := NewPaymentService(paymentAPI, validator.New(), zap.NewNop())
	rollcall := NewRollcallService(rollcallAPI, validator.New(), zap.NewNop())
	return NewExportService(payments, rollcall, zap.NewNop())
}

func TestStatementCSV(t *testing.T) {
	paidAt := "2026-03-05"
	api := &mockPaymentAPI{
		roster: []models.Student{
			{ID: 1, Name: "Ana", ParentName: "Beatriz"},
			{ID: 2, Name: "Bruno"},
		},
		payments: []models.Payment{
			{ID: 10, StudentID: 1, Status: models.PaymentPaid, Amount: 150, PaidAt: &paidAt},
		},
	}
	svc := newExportService(api, &mockRollcallAPI{})

	out, err := svc.StatementCSV(context.Background(), "tok", 5, 2026, 3)
	require.NoError(t, err)

	csv := string(out)
	assert.Contains(t, csv, "Aluno,Responsável,Status,Valor,Pago em")
	assert.Contains(t, csv, `Ana,Beatriz,Pago,"R$ 150,00",2026-03-05`)
	assert.Contains(t, csv, "Bruno,,Pendente,,")
}

func TestStatementPDF(t *testing.T) {
	api := &mockPaymentAPI{
		roster: []models.Student{{ID: 1, Name: "Ana"}},
	}
	svc := newExportService(api, &mockRollcallAPI{})

	out, err := svc.StatementPDF(context.Background(), "tok", 5, 2026, 3)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestAttendanceXLSX(t *testing.T) {
	grade := 9.0
	api := &mockRollcallAPI{
		roster:   []models.Student{{ID: 1, Name: "Ana"}},
		sessions: []models.AttendanceSession{{ID: 40, Date: "2026-03-10", Description: "Aula 01"}},
		detail: models.SessionDetail{
			AttendanceSession: models.AttendanceSession{ID: 40, Date: "2026-03-10", Description: "Aula 01"},
			Logs: []models.AttendanceLog{
				{StudentID: 1, Status: models.StatusPresent, EssayDelivered: true, Grade: &grade},
			},
		},
	}
	svc := newExportService(&mockPaymentAPI{}, api)

	out, err := svc.AttendanceXLSX(context.Background(), "tok", 5)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer book.Close() //nolint:errcheck

	rows, err := book.GetRows("Chamadas")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Data", "Aula", "Aluno", "Presença", "Redação", "Nota", "Observação"}, rows[0])
	assert.Equal(t, "Ana", rows[1][2])
	assert.Equal(t, "Presente", rows[1][3])
	assert.Equal(t, "Sim", rows[1][4])
	assert.Equal(t, "9", rows[1][5])
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Janeiro", MonthName(1))
	assert.Equal(t, "Dezembro", MonthName(12))
	assert.Equal(t, "13", MonthName(13))
}
