package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/jobs"
	"github.com/turma-apps/turma-web/pkg/storage"
)

type reportAPI interface {
	SessionReport(ctx context.Context, token string, sessionID int64) (io.ReadCloser, string, error)
	StudentReport(ctx context.Context, token string, studentID int64) (io.ReadCloser, string, error)
}

type reportJob struct {
	downloadID string
	token      string
	kind       string
	targetID   int64
	filename   string
}

// ReportService prepares DOCX reports in the background. The upstream can
// take a while to render one, so the browser enqueues, polls, and follows a
// signed URL once the file landed on disk.
type ReportService struct {
	api       reportAPI
	store     *storage.LocalStorage
	signer    *storage.Signer
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger

	maxRetries int

	mu        sync.RWMutex
	downloads map[string]*models.Download
}

// ReportConfig tunes the report worker pool.
type ReportConfig struct {
	Workers    int
	MaxRetries int
}

// NewReportService constructs a ReportService instance. Start must be called
// before requests are accepted.
func NewReportService(api reportAPI, store *storage.LocalStorage, signer *storage.Signer, validate *validator.Validate, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	s := &ReportService{
		api:        api,
		store:      store,
		signer:     signer,
		validator:  validate,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		downloads:  make(map[string]*models.Download),
	}
	s.queue = jobs.NewQueue("report-downloads", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the download workers and the cleanup loop.
func (s *ReportService) Start(ctx context.Context, cleanupInterval, fileTTL time.Duration) {
	s.queue.Start(ctx)
	if cleanupInterval > 0 && fileTTL > 0 {
		go s.cleanupLoop(ctx, cleanupInterval, fileTTL)
	}
}

// Stop drains the workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Request enqueues a report fetch and returns the tracking record.
func (s *ReportService) Request(ctx context.Context, session *models.Session, req models.DownloadRequest) (*models.Download, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download request")
	}

	download := &models.Download{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Filename:  reportFilename(req.Kind, req.Name),
		Status:    models.DownloadPending,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.downloads[download.ID] = download
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{
		ID:   download.ID,
		Type: req.Kind,
		Payload: reportJob{
			downloadID: download.ID,
			token:      session.UpstreamToken,
			kind:       req.Kind,
			targetID:   req.TargetID,
			filename:   download.Filename,
		},
	})
	if err != nil {
		s.setStatus(download.ID, models.DownloadFailed, "download queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report download")
	}

	copied := *download
	return &copied, nil
}

// Status reports a download's state, attaching a signed URL once ready.
func (s *ReportService) Status(downloadID string) (*models.DownloadTicket, error) {
	s.mu.RLock()
	download, ok := s.downloads[downloadID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download not found")
	}

	ticket := &models.DownloadTicket{Download: *download}
	if download.Status == models.DownloadReady {
		url, expiresAt, err := s.signer.Sign(download.ID, download.Filename)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		ticket.URL = url
		ticket.ExpiresAt = &expiresAt
	}
	return ticket, nil
}

// Open validates a signed token and opens the stored file for streaming.
func (s *ReportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Verify(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "download no longer available")
	}
	return file, relPath, nil
}

func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reportJob)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	var (
		body io.ReadCloser
		err  error
	)
	switch payload.kind {
	case models.ReportKindSession:
		body, _, err = s.api.SessionReport(ctx, payload.token, payload.targetID)
	case models.ReportKindStudent:
		body, _, err = s.api.StudentReport(ctx, payload.token, payload.targetID)
	default:
		s.setStatus(payload.downloadID, models.DownloadFailed, "unknown report kind")
		return nil
	}
	if err != nil {
		// Client errors never succeed on retry, so fail the download now.
		// Server errors fail once the attempt budget is spent.
		if appErrors.FromError(err).Status < 500 || job.Attempt+1 > s.maxRetries {
			s.setStatus(payload.downloadID, models.DownloadFailed, appErrors.FromError(err).Message)
			return nil
		}
		return err
	}
	defer body.Close() //nolint:errcheck

	if _, err := s.store.SaveStream(payload.filename, body); err != nil {
		if job.Attempt+1 > s.maxRetries {
			s.setStatus(payload.downloadID, models.DownloadFailed, "failed to store report file")
			return nil
		}
		return err
	}
	s.setStatus(payload.downloadID, models.DownloadReady, "")
	s.logger.Info("report ready",
		zap.String("download_id", payload.downloadID),
		zap.String("filename", payload.filename),
	)
	return nil
}

func (s *ReportService) setStatus(downloadID, status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if download, ok := s.downloads[downloadID]; ok {
		download.Status = status
		download.Error = errMsg
	}
}

func (s *ReportService) cleanupLoop(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.CleanupOlderThan(ttl)
			if err != nil {
				s.logger.Warn("download cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired downloads removed", zap.Int("count", len(deleted)))
				s.dropRecords(deleted)
			}
		}
	}
}

// dropRecords forgets tracking entries whose files were cleaned up.
func (s *ReportService) dropRecords(filenames []string) {
	gone := make(map[string]bool, len(filenames))
	for _, name := range filenames {
		gone[name] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, download := range s.downloads {
		if gone[download.Filename] {
			delete(s.downloads, id)
		}
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// reportFilename builds "<Prefix>_<sanitized name>.docx", unique enough via
// the caller-supplied name plus a short random suffix to avoid clobbering.
func reportFilename(kind, name string) string {
	prefix := "Relatorio"
	if kind == models.ReportKindSession {
		prefix = "Chamada"
	}
	cleaned := unsafeFilename.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = "Documento"
	}
	return fmt.Sprintf("%s_%s_%s.docx", prefix, cleaned, uuid.NewString()[:8])
}
