package models

// Attendance status values accepted by the school API.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// AttendanceSession is one recorded class meeting. Dates travel as ISO
// strings ("2006-01-02") exactly as the upstream serialises them.
type AttendanceSession struct {
	ID           int64  `json:"id"`
	ClassID      int64  `json:"class_id,omitempty"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	LessonNumber int    `json:"lesson_number"`
}

// AttendanceLog is one student's record within a session. Grade is nullable:
// it only carries meaning when the essay was delivered.
type AttendanceLog struct {
	ID             int64       `json:"id"`
	SessionID      int64       `json:"session_id,omitempty"`
	StudentID      int64       `json:"student_id"`
	Status         string      `json:"status"`
	EssayDelivered bool        `json:"essay_delivered"`
	Grade          *float64    `json:"grade"`
	Observation    string      `json:"observation,omitempty"`
	Student        *StudentRef `json:"student,omitempty"`
}

// StudentRef is the nested name the upstream may embed in history payloads.
type StudentRef struct {
	Name string `json:"name"`
}

// SessionDetail is a session together with its logs, as returned by the
// session detail endpoint.
type SessionDetail struct {
	AttendanceSession
	Logs []AttendanceLog `json:"logs"`
}

// SessionWrite is the write payload for creating or updating a session.
type SessionWrite struct {
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Logs        []LogWrite `json:"logs"`
}

// LogWrite is one log entry inside a session write.
type LogWrite struct {
	StudentID      int64    `json:"student_id"`
	Status         string   `json:"status"`
	EssayDelivered bool     `json:"essay_delivered"`
	Grade          *float64 `json:"grade"`
	Observation    string   `json:"observation"`
}
