package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/turma-apps/turma-web/internal/models"
)

// ListPayments returns the payments of a month. A non-zero studentID narrows
// the result to one student.
func (c *Client) ListPayments(ctx context.Context, token string, year, month int, studentID int64) ([]models.Payment, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))
	if studentID != 0 {
		query.Set("student_id", strconv.FormatInt(studentID, 10))
	}

	var payments []models.Payment
	err := c.do(ctx, token, http.MethodGet, "/payments/", query, nil, &payments)
	return payments, err
}

func (c *Client) CreatePayment(ctx context.Context, token string, write models.PaymentWrite) (models.Payment, error) {
	var payment models.Payment
	err := c.do(ctx, token, http.MethodPost, "/payments/", nil, write, &payment)
	return payment, err
}

// UpdatePaymentStatus flips an existing payment to the given status.
func (c *Client) UpdatePaymentStatus(ctx context.Context, token string, id int64, status string) (models.Payment, error) {
	query := url.Values{}
	query.Set("status", status)

	var payment models.Payment
	err := c.do(ctx, token, http.MethodPut, fmt.Sprintf("/payments/%d/status", id), query, nil, &payment)
	return payment, err
}
