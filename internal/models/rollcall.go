package models

// SessionRef points an editor at either a new session (zero ID) or an
// existing one being edited.
type SessionRef struct {
	ID int64 `json:"id"`
}

// IsNew reports whether the ref targets a session not yet created.
func (r SessionRef) IsNew() bool { return r.ID == 0 }

// RollcallEntry is one editable roster line of the rollcall editor. Grade is
// kept as text so a cleared field round-trips to a null grade upstream.
type RollcallEntry struct {
	StudentID      int64  `json:"student_id"`
	StudentName    string `json:"student_name"`
	Status         string `json:"status"`
	EssayDelivered bool   `json:"essay_delivered"`
	Grade          string `json:"grade"`
	Observation    string `json:"observation"`
}

// RollcallEditor is the full editing state for one class session: header
// fields plus one entry per currently enrolled student.
type RollcallEditor struct {
	Session     SessionRef      `json:"session"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Entries     []RollcallEntry `json:"entries"`
}

// RollcallSave is the editor state submitted back for persistence.
type RollcallSave struct {
	Session     SessionRef      `json:"session"`
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description"`
	Entries     []RollcallEntry `json:"entries" validate:"dive"`
}

// HistoryEntry is one read-only log line of a past session, including logs
// of students no longer enrolled.
type HistoryEntry struct {
	StudentID      int64    `json:"student_id"`
	StudentName    string   `json:"student_name"`
	Enrolled       bool     `json:"enrolled"`
	Status         string   `json:"status"`
	EssayDelivered bool     `json:"essay_delivered"`
	Grade          *float64 `json:"grade"`
	Observation    string   `json:"observation"`
}

// SessionHistory is the read-only view of a recorded session.
type SessionHistory struct {
	Session AttendanceSession `json:"session"`
	Entries []HistoryEntry    `json:"entries"`
}
