package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/jobs"
	"github.com/turma-apps/turma-web/pkg/storage"
)

type mockReportAPI struct {
	sessionBody   string
	sessionErr    error
	sessionStream io.ReadCloser
	studentBody   string
	studentErr    error
	calls         int
}

func (m *mockReportAPI) SessionReport(_ context.Context, _ string, _ int64) (io.ReadCloser, string, error) {
	m.calls++
	if m.sessionErr != nil {
		return nil, "", m.sessionErr
	}
	if m.sessionStream != nil {
		return m.sessionStream, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	}
	return io.NopCloser(strings.NewReader(m.sessionBody)), "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
}

func (m *mockReportAPI) StudentReport(_ context.Context, _ string, _ int64) (io.ReadCloser, string, error) {
	m.calls++
	if m.studentErr != nil {
		return nil, "", m.studentErr
	}
	return io.NopCloser(strings.NewReader(m.studentBody)), "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
}

func newReportTestService(t *testing.T, api *mockReportAPI) *ReportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSigner("test-secret", 10*time.Minute)
	return NewReportService(api, store, signer, nil, zap.NewNop(), ReportConfig{Workers: 1, MaxRetries: 3})
}

func reportTestSession() *models.Session {
	return &models.Session{ID: "sess-1", UpstreamToken: "token", User: models.User{ID: 1, Email: "noah@school.dev"}}
}

func TestRequestRejectsUnknownKind(t *testing.T) {
	svc := newReportTestService(t, &mockReportAPI{})

	_, err := svc.Request(context.Background(), reportTestSession(), models.DownloadRequest{Kind: "pdf", TargetID: 10})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestRequestFailsWhenQueueNotStarted(t *testing.T) {
	svc := newReportTestService(t, &mockReportAPI{})

	_, err := svc.Request(context.Background(), reportTestSession(), models.DownloadRequest{
		Kind:     models.ReportKindSession,
		TargetID: 10,
		Name:     "Turma A",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Status, appErrors.FromError(err).Status)
}

func TestProcessStoresReportAndSignsTicket(t *testing.T) {
	api := &mockReportAPI{sessionBody: "docx bytes"}
	svc := newReportTestService(t, api)

	download := &models.Download{
		ID:       "dl-1",
		Kind:     models.ReportKindSession,
		Filename: "Chamada_Turma_A_abcd1234.docx",
		Status:   models.DownloadPending,
	}
	svc.downloads[download.ID] = download

	err := svc.process(context.Background(), jobs.Job{
		ID:   download.ID,
		Type: download.Kind,
		Payload: reportJob{
			downloadID: download.ID,
			token:      "token",
			kind:       download.Kind,
			targetID:   42,
			filename:   download.Filename,
		},
	})
	require.NoError(t, err)

	ticket, err := svc.Status(download.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DownloadReady, ticket.Status)
	require.NotEmpty(t, ticket.URL)
	require.NotNil(t, ticket.ExpiresAt)

	file, relPath, err := svc.Open(ticket.URL)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, download.Filename, relPath)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "docx bytes", string(content))
}

func TestProcessFailsClientErrorsWithoutRetry(t *testing.T) {
	api := &mockReportAPI{sessionErr: appErrors.Clone(appErrors.ErrNotFound, "session not found")}
	svc := newReportTestService(t, api)
	svc.downloads["dl-2"] = &models.Download{ID: "dl-2", Kind: models.ReportKindSession, Status: models.DownloadPending}

	err := svc.process(context.Background(), jobs.Job{
		Payload: reportJob{downloadID: "dl-2", kind: models.ReportKindSession, targetID: 42},
	})

	require.NoError(t, err)
	ticket, err := svc.Status("dl-2")
	require.NoError(t, err)
	assert.Equal(t, models.DownloadFailed, ticket.Status)
	assert.Equal(t, "session not found", ticket.Error)
	assert.Equal(t, 1, api.calls)
}

func TestProcessRetriesServerErrorsUntilBudgetSpent(t *testing.T) {
	api := &mockReportAPI{studentErr: appErrors.Clone(appErrors.ErrUpstream, "render timeout")}
	svc := newReportTestService(t, api)
	svc.downloads["dl-3"] = &models.Download{ID: "dl-3", Kind: models.ReportKindStudent, Status: models.DownloadPending}

	payload := reportJob{downloadID: "dl-3", kind: models.ReportKindStudent, targetID: 7}

	err := svc.process(context.Background(), jobs.Job{Attempt: 0, Payload: payload})
	require.Error(t, err)

	ticket, err := svc.Status("dl-3")
	require.NoError(t, err)
	assert.Equal(t, models.DownloadPending, ticket.Status)

	err = svc.process(context.Background(), jobs.Job{Attempt: 3, Payload: payload})
	require.NoError(t, err)

	ticket, err = svc.Status("dl-3")
	require.NoError(t, err)
	assert.Equal(t, models.DownloadFailed, ticket.Status)
	assert.Equal(t, "render timeout", ticket.Error)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestProcessFailsWhenStoringKeepsErroring(t *testing.T) {
	api := &mockReportAPI{sessionStream: io.NopCloser(brokenReader{})}
	svc := newReportTestService(t, api)
	svc.downloads["dl-4"] = &models.Download{ID: "dl-4", Kind: models.ReportKindSession, Status: models.DownloadPending}

	payload := reportJob{downloadID: "dl-4", kind: models.ReportKindSession, targetID: 42, filename: "Chamada_X_aaaa1111.docx"}

	err := svc.process(context.Background(), jobs.Job{Attempt: 0, Payload: payload})
	require.Error(t, err)

	ticket, err := svc.Status("dl-4")
	require.NoError(t, err)
	assert.Equal(t, models.DownloadPending, ticket.Status)

	err = svc.process(context.Background(), jobs.Job{Attempt: 3, Payload: payload})
	require.NoError(t, err)

	ticket, err = svc.Status("dl-4")
	require.NoError(t, err)
	assert.Equal(t, models.DownloadFailed, ticket.Status)
	assert.Equal(t, "failed to store report file", ticket.Error)
}

func TestStatusUnknownDownload(t *testing.T) {
	svc := newReportTestService(t, &mockReportAPI{})

	_, err := svc.Status("missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestOpenRejectsBadToken(t *testing.T) {
	svc := newReportTestService(t, &mockReportAPI{})

	_, _, err := svc.Open("not-a-token")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
}

func TestReportFilename(t *testing.T) {
	name := reportFilename(models.ReportKindSession, "Turma A - Noite")
	assert.True(t, strings.HasPrefix(name, "Chamada_Turma_A_-_Noite_"), name)
	assert.True(t, strings.HasSuffix(name, ".docx"), name)

	name = reportFilename(models.ReportKindStudent, "")
	assert.True(t, strings.HasPrefix(name, "Relatorio_Documento_"), name)

	name = reportFilename(models.ReportKindStudent, "../../etc/passwd")
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
}
