package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/mask"
)

type paymentAPI interface {
	ClassStudents(ctx context.Context, token string, classID int64) ([]models.Student, error)
	ListStudents(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error)
	ListPayments(ctx context.Context, token string, year, month int, studentID int64) ([]models.Payment, error)
	CreatePayment(ctx context.Context, token string, write models.PaymentWrite) (models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, token string, id int64, status string) (models.Payment, error)
}

// PaymentService builds monthly tuition statements, per class or school-wide,
// and flips payment statuses against the school API.
type PaymentService struct {
	api       paymentAPI
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(api paymentAPI, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PaymentService{api: api, validator: validate, logger: logger, now: time.Now}
}

// Statement assembles one month of tuition status for a class. Every roster
// student gets a row; students without a payment record count as pending.
func (s *PaymentService) Statement(ctx context.Context, token string, classID int64, year, month int) (*models.Statement, error) {
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}

	roster, err := s.api.ClassStudents(ctx, token, classID)
	if err != nil {
		return nil, err
	}
	payments, err := s.api.ListPayments(ctx, token, year, month, 0)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int64]models.Payment, len(payments))
	for _, payment := range payments {
		byStudent[payment.StudentID] = payment
	}

	statement := &models.Statement{
		ClassID: classID,
		Year:    year,
		Month:   month,
		Rows:    statementRows(roster, byStudent),
	}
	statement.Stats.Total = len(roster)
	statement.Stats.Paid = paidCount(roster, byStudent)
	statement.Stats.Pending = statement.Stats.Total - statement.Stats.Paid

	return statement, nil
}

// fullStudentLimit is the page size used when a computation needs every
// student at once, the largest page the upstream serves.
const fullStudentLimit = 1000

// MonthlyStatement assembles one month of tuition status across the whole
// school. Rows cover the requested student page; stats always derive from the
// complete student list so paging and search never skew the totals.
func (s *PaymentService) MonthlyStatement(ctx context.Context, token string, year, month int, filter models.StudentFilter) (*models.MonthlyStatement, error) {
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}

	page, err := s.api.ListStudents(ctx, token, filter)
	if err != nil {
		return nil, err
	}
	everyone, err := s.api.ListStudents(ctx, token, models.StudentFilter{PageSize: fullStudentLimit})
	if err != nil {
		return nil, err
	}
	payments, err := s.api.ListPayments(ctx, token, year, month, 0)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int64]models.Payment, len(payments))
	for _, payment := range payments {
		byStudent[payment.StudentID] = payment
	}

	// The full list is unsearched, so its length only totals the unfiltered view.
	totalCount := len(everyone)
	if filter.Search != "" {
		totalCount = -1
	}

	statement := &models.MonthlyStatement{
		Year:  year,
		Month: month,
		Rows:  statementRows(page, byStudent),
		Pagination: models.Pagination{
			Page:       max(filter.Page, 1),
			PageSize:   filter.Limit(),
			TotalCount: totalCount,
			HasMore:    len(page) == filter.Limit(),
		},
	}
	statement.Stats.Total = len(everyone)
	statement.Stats.Paid = paidCount(everyone, byStudent)
	statement.Stats.Pending = statement.Stats.Total - statement.Stats.Paid

	return statement, nil
}

func statementRows(students []models.Student, byStudent map[int64]models.Payment) []models.StatementRow {
	rows := make([]models.StatementRow, 0, len(students))
	for _, student := range students {
		row := models.StatementRow{Student: student, Status: models.PaymentPending}
		if payment, ok := byStudent[student.ID]; ok {
			p := payment
			row.Payment = &p
			row.Status = payment.Status
			row.AmountFormatted = mask.Currency(toCents(payment.Amount))
		}
		rows = append(rows, row)
	}
	return rows
}

// paidCount counts PAID records belonging to listed students only, so a
// leftover payment of a removed student never inflates the totals.
func paidCount(students []models.Student, byStudent map[int64]models.Payment) int {
	paid := 0
	for _, student := range students {
		if payment, ok := byStudent[student.ID]; ok && payment.Status == models.PaymentPaid {
			paid++
		}
	}
	return paid
}

// Toggle flips one student's payment for the month, creating the record on
// first use. A conflicting concurrent creation is resolved by re-reading the
// month and retrying the decision once.
func (s *PaymentService) Toggle(ctx context.Context, token string, year, month int, toggle models.ToggleRequest) (*models.Payment, error) {
	if err := s.validator.Struct(toggle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid toggle payload")
	}

	payment, err := s.apply(ctx, token, year, month, toggle)
	if err == nil {
		return payment, nil
	}
	if appErrors.FromError(err).Code != appErrors.ErrConflict.Code {
		return nil, err
	}

	// Someone else touched this student's record. Refresh and retry with
	// whatever now exists.
	existing, listErr := s.api.ListPayments(ctx, token, year, month, toggle.StudentID)
	if listErr != nil {
		return nil, listErr
	}
	retry := toggle
	retry.Payment = models.PaymentRef{}
	if len(existing) > 0 {
		retry.Payment = models.PaymentRef{ID: existing[0].ID}
	}
	return s.apply(ctx, token, year, month, retry)
}

// BatchToggle applies several toggles concurrently, reporting one aggregate
// error listing the students whose saves failed.
func (s *PaymentService) BatchToggle(ctx context.Context, token string, year, month int, batch models.BatchToggleRequest) error {
	if err := s.validator.Struct(batch); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []int64
	)
	for _, toggle := range batch.Toggles {
		wg.Add(1)
		go func(toggle models.ToggleRequest) {
			defer wg.Done()
			if _, err := s.Toggle(ctx, token, year, month, toggle); err != nil {
				s.logger.Warn("payment toggle failed",
					zap.Int64("student_id", toggle.StudentID),
					zap.Error(err),
				)
				mu.Lock()
				failed = append(failed, toggle.StudentID)
				mu.Unlock()
			}
		}(toggle)
	}
	wg.Wait()

	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
		ids := make([]string, len(failed))
		for i, id := range failed {
			ids[i] = fmt.Sprintf("%d", id)
		}
		return appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("failed to save payments for students %s", strings.Join(ids, ", ")))
	}
	return nil
}

func (s *PaymentService) apply(ctx context.Context, token string, year, month int, toggle models.ToggleRequest) (*models.Payment, error) {
	if toggle.Payment.Exists() {
		payment, err := s.api.UpdatePaymentStatus(ctx, token, toggle.Payment.ID, toggle.Status)
		if err != nil {
			return nil, err
		}
		return &payment, nil
	}

	write := models.PaymentWrite{
		StudentID: toggle.StudentID,
		Month:     month,
		Year:      year,
		Status:    toggle.Status,
		Amount:    toggle.Amount,
	}
	if toggle.Status == models.PaymentPaid {
		paidAt := s.now().Format("2006-01-02")
		write.PaidAt = &paidAt
	}
	payment, err := s.api.CreatePayment(ctx, token, write)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
