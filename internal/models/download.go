package models

import "time"

// Report download states.
const (
	DownloadPending = "PENDING"
	DownloadReady   = "READY"
	DownloadFailed  = "FAILED"
)

// Report kinds offered for download.
const (
	ReportKindSession = "session"
	ReportKindStudent = "student"
)

// Download tracks one report fetched from the school API in the background.
type Download struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DownloadTicket is the answer to a status poll once the file is ready.
type DownloadTicket struct {
	Download
	URL       string     `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// DownloadRequest asks for a report to be prepared.
type DownloadRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=session student"`
	TargetID int64  `json:"target_id" validate:"required"`
	Name     string `json:"name"`
}
