package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/middleware"
	"github.com/turma-apps/turma-web/internal/models"
	"github.com/turma-apps/turma-web/internal/service"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/response"
)

type fakeRollcallAPI struct {
	roster   []models.Student
	sessions []models.AttendanceSession
	detail   models.SessionDetail
	saveErr  error
}

func (f *fakeRollcallAPI) ClassStudents(context.Context, string, int64) ([]models.Student, error) {
	return f.roster, nil
}

func (f *fakeRollcallAPI) ListSessions(context.Context, string, int64) ([]models.AttendanceSession, error) {
	return f.sessions, nil
}

func (f *fakeRollcallAPI) GetSession(context.Context, string, int64) (models.SessionDetail, error) {
	return f.detail, nil
}

func (f *fakeRollcallAPI) CreateSession(ctx context.Context, token string, classID int64, write models.SessionWrite) (models.SessionDetail, error) {
	if f.saveErr != nil {
		return models.SessionDetail{}, f.saveErr
	}
	return models.SessionDetail{AttendanceSession: models.AttendanceSession{ID: 100, Date: write.Date}}, nil
}

func (f *fakeRollcallAPI) UpdateSession(ctx context.Context, token string, classID, sessionID int64, write models.SessionWrite) (models.SessionDetail, error) {
	return models.SessionDetail{AttendanceSession: models.AttendanceSession{ID: sessionID}}, nil
}

func (f *fakeRollcallAPI) DeleteSession(context.Context, string, int64, int64) error {
	return nil
}

func newRollcallTestContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Set(middleware.ContextSessionKey, &models.Session{UpstreamToken: "tok"})
	return c, rec
}

func TestRollcallEditorNewSession(t *testing.T) {
	api := &fakeRollcallAPI{
		roster: []models.Student{{ID: 1, Name: "Ana"}},
	}
	handler := NewRollcallHandler(service.NewRollcallService(api, nil, zap.NewNop()))

	c, rec := newRollcallTestContext(t, http.MethodGet, "/classes/5/rollcall", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	handler.Editor(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var editor models.RollcallEditor
	require.NoError(t, json.Unmarshal(data, &editor))

	assert.Equal(t, "Aula 01", editor.Description)
	require.Len(t, editor.Entries, 1)
	assert.Equal(t, models.StatusPresent, editor.Entries[0].Status)
}

func TestRollcallEditorRejectsBadSessionID(t *testing.T) {
	handler := NewRollcallHandler(service.NewRollcallService(&fakeRollcallAPI{}, nil, zap.NewNop()))

	c, rec := newRollcallTestContext(t, http.MethodGet, "/classes/5/rollcall?session=abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	handler.Editor(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRollcallSaveCreated(t *testing.T) {
	handler := NewRollcallHandler(service.NewRollcallService(&fakeRollcallAPI{}, nil, zap.NewNop()))

	c, rec := newRollcallTestContext(t, http.MethodPost, "/classes/5/rollcall", models.RollcallSave{
		Date:    "2026-03-10",
		Entries: []models.RollcallEntry{{StudentID: 1, Status: models.StatusPresent}},
	})
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	handler.Save(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRollcallSaveConflictSurfaces(t *testing.T) {
	api := &fakeRollcallAPI{saveErr: appErrors.Clone(appErrors.ErrConflict, "session already exists for this date")}
	handler := NewRollcallHandler(service.NewRollcallService(api, nil, zap.NewNop()))

	c, rec := newRollcallTestContext(t, http.MethodPost, "/classes/5/rollcall", models.RollcallSave{
		Date: "2026-03-10",
	})
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	handler.Save(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "already exists")
}
