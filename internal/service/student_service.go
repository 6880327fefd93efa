package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
	"github.com/turma-apps/turma-web/pkg/mask"
)

const studentGroup = "students"

type studentAPI interface {
	ListStudents(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error)
	CreateStudent(ctx context.Context, token string, input models.StudentInput) (models.Student, error)
	UpdateStudent(ctx context.Context, token string, id int64, input models.StudentInput) (models.Student, error)
	DeleteStudent(ctx context.Context, token string, id int64) error
}

// StudentService serves the searchable student list and student management.
// Search-as-you-type fires a refresh per keystroke; the sequence guard on
// the cache commit keeps a slow older search from clobbering a newer one.
type StudentService struct {
	api       studentAPI
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(api studentAPI, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{api: api, cache: cache, validator: validate, logger: logger}
}

// List returns one page of students matching the filter.
func (s *StudentService) List(ctx context.Context, token string, filter models.StudentFilter) (*models.StudentPage, error) {
	key := s.pageKey(ctx, filter)

	var cached models.StudentPage
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	seq, _ := s.cache.Next(ctx, key)
	students, err := s.api.ListStudents(ctx, token, filter)
	if err != nil {
		return nil, err
	}

	page := &models.StudentPage{
		Items: studentViews(students),
		Pagination: models.Pagination{
			Page:       max(filter.Page, 1),
			PageSize:   filter.Limit(),
			TotalCount: -1,
			HasMore:    len(students) == filter.Limit(),
		},
	}
	if _, err := s.cache.SetIfCurrent(ctx, key, seq, page); err != nil {
		s.logger.Warn("failed to cache student page", zap.Error(err))
	}
	return page, nil
}

func (s *StudentService) Create(ctx context.Context, token string, input models.StudentInput) (models.StudentView, error) {
	normalized, err := s.normalize(input)
	if err != nil {
		return models.StudentView{}, err
	}
	student, err := s.api.CreateStudent(ctx, token, normalized)
	if err != nil {
		return models.StudentView{}, err
	}
	s.cache.BumpGeneration(ctx, studentGroup)
	return studentView(student), nil
}

func (s *StudentService) Update(ctx context.Context, token string, id int64, input models.StudentInput) (models.StudentView, error) {
	normalized, err := s.normalize(input)
	if err != nil {
		return models.StudentView{}, err
	}
	student, err := s.api.UpdateStudent(ctx, token, id, normalized)
	if err != nil {
		return models.StudentView{}, err
	}
	s.cache.BumpGeneration(ctx, studentGroup)
	return studentView(student), nil
}

func (s *StudentService) Delete(ctx context.Context, token string, id int64) error {
	if err := s.api.DeleteStudent(ctx, token, id); err != nil {
		return err
	}
	s.cache.BumpGeneration(ctx, studentGroup)
	return nil
}

// normalize validates the payload and strips phone masks so the upstream
// stores bare digits.
func (s *StudentService) normalize(input models.StudentInput) (models.StudentInput, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.StudentInput{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	input.Phone = mask.PhoneDigits(input.Phone)
	input.ParentPhone = mask.PhoneDigits(input.ParentPhone)
	return input, nil
}

func (s *StudentService) pageKey(ctx context.Context, filter models.StudentFilter) string {
	gen := s.cache.Generation(ctx, studentGroup)
	return fmt.Sprintf("students:g%d:q=%s:p%d:s%d", gen, filter.Search, max(filter.Page, 1), filter.Limit())
}

func studentView(student models.Student) models.StudentView {
	return models.StudentView{
		Student:           student,
		PhoneMasked:       mask.Phone(student.Phone),
		ParentPhoneMasked: mask.Phone(student.ParentPhone),
	}
}

func studentViews(students []models.Student) []models.StudentView {
	views := make([]models.StudentView, 0, len(students))
	for _, student := range students {
		views = append(views, studentView(student))
	}
	return views
}
