package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

// RemovedStudentName labels history rows of students no longer enrolled.
const RemovedStudentName = "Aluno Removido"

type rollcallAPI interface {
	ClassStudents(ctx context.Context, token string, classID int64) ([]models.Student, error)
	ListSessions(ctx context.Context, token string, classID int64) ([]models.AttendanceSession, error)
	GetSession(ctx context.Context, token string, sessionID int64) (models.SessionDetail, error)
	CreateSession(ctx context.Context, token string, classID int64, write models.SessionWrite) (models.SessionDetail, error)
	UpdateSession(ctx context.Context, token string, classID, sessionID int64, write models.SessionWrite) (models.SessionDetail, error)
	DeleteSession(ctx context.Context, token string, classID, sessionID int64) error
}

// RollcallService assembles and persists the attendance editor of a class.
// The editor always reflects the current roster: one entry per enrolled
// student, no matter which logs the stored session carries.
type RollcallService struct {
	api       rollcallAPI
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRollcallService constructs a RollcallService instance.
func NewRollcallService(api rollcallAPI, validate *validator.Validate, logger *zap.Logger) *RollcallService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RollcallService{api: api, validator: validate, logger: logger, now: time.Now}
}

// Editor returns the editing state for a class session. A zero session ref
// opens a blank rollcall dated today with a suggested description; an
// existing ref overlays the stored logs onto the current roster.
func (s *RollcallService) Editor(ctx context.Context, token string, classID int64, ref models.SessionRef) (*models.RollcallEditor, error) {
	roster, err := s.api.ClassStudents(ctx, token, classID)
	if err != nil {
		return nil, err
	}

	editor := &models.RollcallEditor{
		Session: ref,
		Entries: seedEntries(roster),
	}

	if ref.IsNew() {
		sessions, err := s.api.ListSessions(ctx, token, classID)
		if err != nil {
			return nil, err
		}
		editor.Date = s.now().Format("2006-01-02")
		editor.Description = SuggestDescription(sessions)
		return editor, nil
	}

	detail, err := s.api.GetSession(ctx, token, ref.ID)
	if err != nil {
		return nil, err
	}
	editor.Date = detail.Date
	editor.Description = detail.Description
	overlayEntries(editor.Entries, detail.Logs)
	return editor, nil
}

// History returns the read-only view of a stored session. Logs of students
// who left the class stay visible with a removed-student label.
func (s *RollcallService) History(ctx context.Context, token string, classID, sessionID int64) (*models.SessionHistory, error) {
	detail, err := s.api.GetSession(ctx, token, sessionID)
	if err != nil {
		return nil, err
	}

	roster, err := s.api.ClassStudents(ctx, token, classID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[int64]string, len(roster))
	for _, student := range roster {
		enrolled[student.ID] = student.Name
	}

	history := &models.SessionHistory{
		Session: detail.AttendanceSession,
		Entries: make([]models.HistoryEntry, 0, len(detail.Logs)),
	}
	for _, log := range detail.Logs {
		name, onRoster := enrolled[log.StudentID]
		if !onRoster {
			name = RemovedStudentName
			if log.Student != nil && log.Student.Name != "" {
				name = log.Student.Name
			}
		}
		history.Entries = append(history.Entries, models.HistoryEntry{
			StudentID:      log.StudentID,
			StudentName:    name,
			Enrolled:       onRoster,
			Status:         log.Status,
			EssayDelivered: log.EssayDelivered,
			Grade:          log.Grade,
			Observation:    log.Observation,
		})
	}
	return history, nil
}

// Sessions lists the recorded sessions of a class.
func (s *RollcallService) Sessions(ctx context.Context, token string, classID int64) ([]models.AttendanceSession, error) {
	return s.api.ListSessions(ctx, token, classID)
}

// Save persists the editor state, creating or replacing the session
// depending on the ref.
func (s *RollcallService) Save(ctx context.Context, token string, classID int64, save models.RollcallSave) (*models.SessionDetail, error) {
	if err := s.validator.Struct(save); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rollcall payload")
	}

	write := models.SessionWrite{
		Date:        save.Date,
		Description: strings.TrimSpace(save.Description),
		Logs:        make([]models.LogWrite, 0, len(save.Entries)),
	}
	for _, entry := range save.Entries {
		grade, err := gradeValue(entry.Grade)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid grade %q for student %d", entry.Grade, entry.StudentID))
		}
		status := entry.Status
		if status == "" {
			status = models.StatusPresent
		}
		write.Logs = append(write.Logs, models.LogWrite{
			StudentID:      entry.StudentID,
			Status:         status,
			EssayDelivered: entry.EssayDelivered,
			Grade:          grade,
			Observation:    entry.Observation,
		})
	}

	var (
		detail models.SessionDetail
		err    error
	)
	if save.Session.IsNew() {
		detail, err = s.api.CreateSession(ctx, token, classID, write)
	} else {
		detail, err = s.api.UpdateSession(ctx, token, classID, save.Session.ID, write)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("rollcall saved",
		zap.Int64("class_id", classID),
		zap.Int64("session_id", detail.ID),
		zap.Bool("created", save.Session.IsNew()),
	)
	return &detail, nil
}

// Delete removes a session and its logs.
func (s *RollcallService) Delete(ctx context.Context, token string, classID, sessionID int64) error {
	return s.api.DeleteSession(ctx, token, classID, sessionID)
}

// SuggestDescription proposes the next lesson title, "Aula 01" for a class
// with no sessions yet.
func SuggestDescription(sessions []models.AttendanceSession) string {
	highest := 0
	for _, session := range sessions {
		if session.LessonNumber > highest {
			highest = session.LessonNumber
		}
	}
	return fmt.Sprintf("Aula %02d", highest+1)
}

func seedEntries(roster []models.Student) []models.RollcallEntry {
	entries := make([]models.RollcallEntry, 0, len(roster))
	for _, student := range roster {
		entries = append(entries, models.RollcallEntry{
			StudentID:   student.ID,
			StudentName: student.Name,
			Status:      models.StatusPresent,
		})
	}
	return entries
}

// overlayEntries copies stored log values onto the seeded roster entries.
// Logs of students no longer enrolled are left out of the editable set.
func overlayEntries(entries []models.RollcallEntry, logs []models.AttendanceLog) {
	byStudent := make(map[int64]models.AttendanceLog, len(logs))
	for _, log := range logs {
		byStudent[log.StudentID] = log
	}
	for i := range entries {
		log, ok := byStudent[entries[i].StudentID]
		if !ok {
			continue
		}
		entries[i].Status = log.Status
		entries[i].EssayDelivered = log.EssayDelivered
		entries[i].Grade = gradeText(log.Grade)
		entries[i].Observation = log.Observation
	}
}

// gradeValue parses an editor grade field. An empty field means no grade, a
// comma decimal separator is accepted.
func gradeValue(text string) (*float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func gradeText(grade *float64) string {
	if grade == nil {
		return ""
	}
	return strconv.FormatFloat(*grade, 'f', -1, 64)
}
