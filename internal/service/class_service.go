package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

const classListKey = "classes"

type classAPI interface {
	ListClasses(ctx context.Context, token string) ([]models.Class, error)
	GetClass(ctx context.Context, token string, id int64) (models.Class, error)
	CreateClass(ctx context.Context, token string, input models.ClassInput) (models.Class, error)
	UpdateClass(ctx context.Context, token string, id int64, input models.ClassInput) (models.Class, error)
	DeleteClass(ctx context.Context, token string, id int64) error
	ClassStudents(ctx context.Context, token string, classID int64) ([]models.Student, error)
	Enroll(ctx context.Context, token string, classID, studentID int64) error
}

// ClassService serves the dashboard class list and class management.
type ClassService struct {
	api       classAPI
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(api classAPI, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{api: api, cache: cache, validator: validate, logger: logger}
}

// List returns every class. The dashboard hits this on each visit, so the
// result is cached briefly with stale refreshes discarded.
func (s *ClassService) List(ctx context.Context, token string) ([]models.Class, error) {
	var cached []models.Class
	if err := s.cache.Get(ctx, classListKey, &cached); err == nil {
		return cached, nil
	}

	seq, _ := s.cache.Next(ctx, classListKey)
	classes, err := s.api.ListClasses(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.cache.SetIfCurrent(ctx, classListKey, seq, classes); err != nil {
		s.logger.Warn("failed to cache class list", zap.Error(err))
	}
	return classes, nil
}

func (s *ClassService) Get(ctx context.Context, token string, id int64) (models.Class, error) {
	return s.api.GetClass(ctx, token, id)
}

func (s *ClassService) Create(ctx context.Context, token string, input models.ClassInput) (models.Class, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.Class{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.api.CreateClass(ctx, token, input)
	if err != nil {
		return models.Class{}, err
	}
	s.cache.Invalidate(ctx, classListKey)
	return class, nil
}

func (s *ClassService) Update(ctx context.Context, token string, id int64, input models.ClassInput) (models.Class, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.Class{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.api.UpdateClass(ctx, token, id, input)
	if err != nil {
		return models.Class{}, err
	}
	s.cache.Invalidate(ctx, classListKey)
	return class, nil
}

func (s *ClassService) Delete(ctx context.Context, token string, id int64) error {
	if err := s.api.DeleteClass(ctx, token, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, classListKey)
	return nil
}

// Roster returns the students enrolled in a class with display-ready
// phone numbers.
func (s *ClassService) Roster(ctx context.Context, token string, classID int64) ([]models.StudentView, error) {
	roster, err := s.api.ClassStudents(ctx, token, classID)
	if err != nil {
		return nil, err
	}
	return studentViews(roster), nil
}

func (s *ClassService) Enroll(ctx context.Context, token string, classID, studentID int64) error {
	return s.api.Enroll(ctx, token, classID, studentID)
}
