package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

type mockStudentAPI struct {
	students   []models.Student
	lastFilter models.StudentFilter
	created    *models.StudentInput
	updated    *models.StudentInput
	deletedID  int64
}

func (m *mockStudentAPI) ListStudents(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error) {
	m.lastFilter = filter
	return m.students, nil
}

func (m *mockStudentAPI) CreateStudent(ctx context.Context, token string, input models.StudentInput) (models.Student, error) {
	m.created = &input
	return models.Student{ID: 1, Name: input.Name, Phone: input.Phone, ParentPhone: input.ParentPhone}, nil
}

func (m *mockStudentAPI) UpdateStudent(ctx context.Context, token string, id int64, input models.StudentInput) (models.Student, error) {
	m.updated = &input
	return models.Student{ID: id, Name: input.Name, Phone: input.Phone}, nil
}

func (m *mockStudentAPI) DeleteStudent(ctx context.Context, token string, id int64) error {
	m.deletedID = id
	return nil
}

func newStudentService(api *mockStudentAPI) *StudentService {
	cache := NewCacheService(nil, 0, false, zap.NewNop())
	return NewStudentService(api, cache, validator.New(), zap.NewNop())
}

func TestStudentListMasksPhones(t *testing.T) {
	api := &mockStudentAPI{
		students: []models.Student{
			{ID: 1, Name: "Ana", Phone: "21994152560", ParentPhone: "1133224455"},
		},
	}
	svc := newStudentService(api)

	page, err := svc.List(context.Background(), "tok", models.StudentFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "(21) 99415-2560", page.Items[0].PhoneMasked)
	assert.Equal(t, "(11) 3322-4455", page.Items[0].ParentPhoneMasked)
}

func TestStudentListPagination(t *testing.T) {
	full := make([]models.Student, 10)
	api := &mockStudentAPI{students: full}
	svc := newStudentService(api)

	page, err := svc.List(context.Background(), "tok", models.StudentFilter{Search: "ma", Page: 2, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 10, api.lastFilter.Skip())
	assert.Equal(t, "ma", api.lastFilter.Search)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, -1, page.Pagination.TotalCount)
	// a full page means another one may exist
	assert.True(t, page.Pagination.HasMore)

	api.students = full[:3]
	page, err = svc.List(context.Background(), "tok", models.StudentFilter{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.False(t, page.Pagination.HasMore)
}

func TestStudentCreateStripsPhoneMask(t *testing.T) {
	api := &mockStudentAPI{}
	svc := newStudentService(api)

	view, err := svc.Create(context.Background(), "tok", models.StudentInput{
		Name:        "Ana",
		Phone:       "(21) 99415-2560",
		ParentPhone: "(11) 98888-7777",
	})
	require.NoError(t, err)

	require.NotNil(t, api.created)
	assert.Equal(t, "21994152560", api.created.Phone)
	assert.Equal(t, "11988887777", api.created.ParentPhone)
	assert.Equal(t, "(21) 99415-2560", view.PhoneMasked)
}

func TestStudentCreateRequiresName(t *testing.T) {
	svc := newStudentService(&mockStudentAPI{})

	_, err := svc.Create(context.Background(), "tok", models.StudentInput{Phone: "21994152560"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentDelete(t *testing.T) {
	api := &mockStudentAPI{}
	svc := newStudentService(api)

	require.NoError(t, svc.Delete(context.Background(), "tok", 9))
	assert.Equal(t, int64(9), api.deletedID)
}
