package models

// Payment status values accepted by the school API.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentLate    = "LATE"
)

// Payment is one monthly tuition row. At most one row is expected per
// (student, month, year); the upstream owns that constraint. PaidAt is an
// ISO date string or nil.
type Payment struct {
	ID        int64   `json:"id"`
	StudentID int64   `json:"student_id"`
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	PaidAt    *string `json:"paid_at"`
}

// PaymentWrite is the payload for creating a payment row.
type PaymentWrite struct {
	StudentID int64   `json:"student_id"`
	Month     int     `json:"month" validate:"min=1,max=12"`
	Year      int     `json:"year" validate:"required"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	PaidAt    *string `json:"paid_at"`
}
