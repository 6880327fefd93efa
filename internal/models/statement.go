package models

// PaymentRef points a status toggle at either an existing payment record or
// one that must be created on first use (zero ID).
type PaymentRef struct {
	ID int64 `json:"id"`
}

// Exists reports whether a payment record already backs the ref.
func (r PaymentRef) Exists() bool { return r.ID != 0 }

// StatementRow pairs a roster student with their payment record for the
// statement's month, when one exists.
type StatementRow struct {
	Student         Student  `json:"student"`
	Payment         *Payment `json:"payment,omitempty"`
	Status          string   `json:"status"`
	AmountFormatted string   `json:"amount_formatted,omitempty"`
}

// StatementStats summarises one month of a class roster. Pending counts
// every enrolled student without a paid record, including students with no
// record at all.
type StatementStats struct {
	Total   int `json:"total"`
	Paid    int `json:"paid"`
	Pending int `json:"pending"`
}

// Statement is the monthly tuition view of one class.
type Statement struct {
	ClassID int64          `json:"class_id"`
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Rows    []StatementRow `json:"rows"`
	Stats   StatementStats `json:"stats"`
}

// MonthlyStatement is the school-wide tuition view: one page of the student
// list merged with the month's payment records. Stats cover every student,
// not just the page on display.
type MonthlyStatement struct {
	Year       int            `json:"year"`
	Month      int            `json:"month"`
	Rows       []StatementRow `json:"rows"`
	Stats      StatementStats `json:"stats"`
	Pagination Pagination     `json:"pagination"`
}

// ToggleRequest flips one student's payment for the statement's month.
type ToggleRequest struct {
	StudentID int64      `json:"student_id" validate:"required"`
	Payment   PaymentRef `json:"payment"`
	Status    string     `json:"status" validate:"required,oneof=PAID PENDING LATE"`
	Amount    float64    `json:"amount"`
}

// BatchToggleRequest applies several toggles in one round.
type BatchToggleRequest struct {
	Toggles []ToggleRequest `json:"toggles" validate:"required,min=1,dive"`
}
