package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

type mockRollcallAPI struct {
	roster   []models.Student
	sessions []models.AttendanceSession
	detail   models.SessionDetail

	createdWith *models.SessionWrite
	updatedWith *models.SessionWrite
	updatedID   int64
	deletedID   int64
	saveErr     error
}

func (m *mockRollcallAPI) ClassStudents(ctx context.Context, token string, classID int64) ([]models.Student, error) {
	return m.roster, nil
}

func (m *mockRollcallAPI) ListSessions(ctx context.Context, token string, classID int64) ([]models.AttendanceSession, error) {
	return m.sessions, nil
}

func (m *mockRollcallAPI) GetSession(ctx context.Context, token string, sessionID int64) (models.SessionDetail, error) {
	return m.detail, nil
}

func (m *mockRollcallAPI) CreateSession(ctx context.Context, token string, classID int64, write models.SessionWrite) (models.SessionDetail, error) {
	if m.saveErr != nil {
		return models.SessionDetail{}, m.saveErr
	}
	m.createdWith = &write
	return models.SessionDetail{AttendanceSession: models.AttendanceSession{ID: 100, Date: write.Date}}, nil
}

func (m *mockRollcallAPI) UpdateSession(ctx context.Context, token string, classID, sessionID int64, write models.SessionWrite) (models.SessionDetail, error) {
	if m.saveErr != nil {
		return models.SessionDetail{}, m.saveErr
	}
	m.updatedWith = &write
	m.updatedID = sessionID
	return models.SessionDetail{AttendanceSession: models.AttendanceSession{ID: sessionID, Date: write.Date}}, nil
}

func (m *mockRollcallAPI) DeleteSession(ctx context.Context, token string, classID, sessionID int64) error {
	m.deletedID = sessionID
	return nil
}

func newRollcallService(api *mockRollcallAPI) *RollcallService {
	svc := NewRollcallService(api, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	return svc
}

func TestEditorSeedsRosterWithDefaults(t *testing.T) {
	api := &mockRollcallAPI{
		roster: []models.Student{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bruno"}},
	}
	svc := newRollcallService(api)

	editor, err := svc.Editor(context.Background(), "tok", 5, models.SessionRef{})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", editor.Date)
	assert.Equal(t, "Aula 01", editor.Description)
	require.Len(t, editor.Entries, 2)
	for _, entry := range editor.Entries {
		assert.Equal(t, models.StatusPresent, entry.Status)
		assert.False(t, entry.EssayDelivered)
		assert.Empty(t, entry.Grade)
		assert.Empty(t, entry.Observation)
	}
}

func TestEditorSuggestsNextLessonNumber(t *testing.T) {
	api := &mockRollcallAPI{
		sessions: []models.AttendanceSession{
			{ID: 1, LessonNumber: 3},
			{ID: 2, LessonNumber: 7},
			{ID: 3, LessonNumber: 5},
		},
	}
	svc := newRollcallService(api)

	editor, err := svc.Editor(context.Background(), "tok", 5, models.SessionRef{})
	require.NoError(t, err)
	assert.Equal(t, "Aula 08", editor.Description)
}

func TestEditorOverlaysStoredLogs(t *testing.T) {
	grade := 8.5
	api := &mockRollcallAPI{
		roster: []models.Student{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bruno"}, {ID: 3, Name: "Carla"}},
		detail: models.SessionDetail{
			AttendanceSession: models.AttendanceSession{ID: 40, Date: "2026-02-01", Description: "Aula 04"},
			Logs: []models.AttendanceLog{
				{StudentID: 1, Status: models.StatusAbsent, Observation: "avisou"},
				{StudentID: 2, Status: models.StatusPresent, EssayDelivered: true, Grade: &grade},
				// student 9 left the class; their log must not enter the editor
				{StudentID: 9, Status: models.StatusPresent},
			},
		},
	}
	svc := newRollcallService(api)

	editor, err := svc.Editor(context.Background(), "tok", 5, models.SessionRef{ID: 40})
	require.NoError(t, err)

	assert.Equal(t, "2026-02-01", editor.Date)
	assert.Equal(t, "Aula 04", editor.Description)
	require.Len(t, editor.Entries, 3)

	assert.Equal(t, models.StatusAbsent, editor.Entries[0].Status)
	assert.Equal(t, "avisou", editor.Entries[0].Observation)

	assert.True(t, editor.Entries[1].EssayDelivered)
	assert.Equal(t, "8.5", editor.Entries[1].Grade)

	// Carla has no stored log and keeps the seeded defaults.
	assert.Equal(t, models.StatusPresent, editor.Entries[2].Status)
	assert.Empty(t, editor.Entries[2].Grade)
}

func TestHistoryKeepsRemovedStudents(t *testing.T) {
	api := &mockRollcallAPI{
		roster: []models.Student{{ID: 1, Name: "Ana"}},
		detail: models.SessionDetail{
			AttendanceSession: models.AttendanceSession{ID: 40},
			Logs: []models.AttendanceLog{
				{StudentID: 1, Status: models.StatusPresent},
				{StudentID: 9, Status: models.StatusAbsent},
				{StudentID: 10, Status: models.StatusAbsent, Student: &models.StudentRef{Name: "Davi"}},
			},
		},
	}
	svc := newRollcallService(api)

	history, err := svc.History(context.Background(), "tok", 5, 40)
	require.NoError(t, err)
	require.Len(t, history.Entries, 3)

	assert.Equal(t, "Ana", history.Entries[0].StudentName)
	assert.True(t, history.Entries[0].Enrolled)

	assert.Equal(t, RemovedStudentName, history.Entries[1].StudentName)
	assert.False(t, history.Entries[1].Enrolled)

	// A name embedded by the upstream wins over the fallback label.
	assert.Equal(t, "Davi", history.Entries[2].StudentName)
	assert.False(t, history.Entries[2].Enrolled)
}

func TestSaveCreatesNewSession(t *testing.T) {
	api := &mockRollcallAPI{}
	svc := newRollcallService(api)

	detail, err := svc.Save(context.Background(), "tok", 5, models.RollcallSave{
		Date: "2026-03-10",
		Entries: []models.RollcallEntry{
			{StudentID: 1, Status: models.StatusPresent, Grade: "7,5"},
			{StudentID: 2, Status: models.StatusAbsent, Grade: ""},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), detail.ID)

	require.NotNil(t, api.createdWith)
	require.Len(t, api.createdWith.Logs, 2)
	require.NotNil(t, api.createdWith.Logs[0].Grade)
	assert.InDelta(t, 7.5, *api.createdWith.Logs[0].Grade, 0.001)
	assert.Nil(t, api.createdWith.Logs[1].Grade)
}

func TestSaveUpdatesExistingSession(t *testing.T) {
	api := &mockRollcallAPI{}
	svc := newRollcallService(api)

	_, err := svc.Save(context.Background(), "tok", 5, models.RollcallSave{
		Session: models.SessionRef{ID: 40},
		Date:    "2026-03-10",
		Entries: []models.RollcallEntry{{StudentID: 1}},
	})
	require.NoError(t, err)

	assert.Nil(t, api.createdWith)
	require.NotNil(t, api.updatedWith)
	assert.Equal(t, int64(40), api.updatedID)
	// a blank status falls back to present
	assert.Equal(t, models.StatusPresent, api.updatedWith.Logs[0].Status)
}

func TestSaveRejectsBadGrade(t *testing.T) {
	svc := newRollcallService(&mockRollcallAPI{})

	_, err := svc.Save(context.Background(), "tok", 5, models.RollcallSave{
		Date:    "2026-03-10",
		Entries: []models.RollcallEntry{{StudentID: 1, Grade: "abc"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSavePropagatesDuplicateDateConflict(t *testing.T) {
	api := &mockRollcallAPI{saveErr: appErrors.Clone(appErrors.ErrConflict, "session already exists for this date")}
	svc := newRollcallService(api)

	_, err := svc.Save(context.Background(), "tok", 5, models.RollcallSave{Date: "2026-03-10"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSuggestDescriptionEmptyHistory(t *testing.T) {
	assert.Equal(t, "Aula 01", SuggestDescription(nil))
}
