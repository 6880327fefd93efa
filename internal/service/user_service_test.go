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

type mockUserAPI struct {
	users     []models.User
	created   *models.Credentials
	deletedID int64
	password  string
}

func (m *mockUserAPI) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	return m.users, nil
}

func (m *mockUserAPI) CreateUser(ctx context.Context, token string, creds models.Credentials) (models.User, error) {
	m.created = &creds
	return models.User{ID: 50, Email: creds.Email, IsActive: true}, nil
}

func (m *mockUserAPI) DeleteUser(ctx context.Context, token string, id int64) error {
	m.deletedID = id
	return nil
}

func (m *mockUserAPI) SetUserPassword(ctx context.Context, token string, id int64, password string) error {
	m.password = password
	return nil
}

var (
	adminSession   = &models.Session{UpstreamToken: "tok", User: models.User{ID: 1, IsAdmin: true}}
	teacherSession = &models.Session{UpstreamToken: "tok", User: models.User{ID: 2}}
)

func TestUserListRequiresAdmin(t *testing.T) {
	svc := NewUserService(&mockUserAPI{}, validator.New(), zap.NewNop())

	_, err := svc.List(context.Background(), teacherSession)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.List(context.Background(), adminSession)
	require.NoError(t, err)
}

func TestUserCreate(t *testing.T) {
	api := &mockUserAPI{}
	svc := NewUserService(api, validator.New(), zap.NewNop())

	user, err := svc.Create(context.Background(), adminSession, models.Credentials{
		Email:    "novo@escola.com",
		Password: "segredo",
	})
	require.NoError(t, err)
	assert.Equal(t, "novo@escola.com", user.Email)
	require.NotNil(t, api.created)

	_, err = svc.Create(context.Background(), adminSession, models.Credentials{Email: "invalido"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserDeleteGuards(t *testing.T) {
	api := &mockUserAPI{}
	svc := NewUserService(api, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), adminSession, adminSession.User.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), adminSession, 9))
	assert.Equal(t, int64(9), api.deletedID)
}

func TestUserSetPassword(t *testing.T) {
	api := &mockUserAPI{}
	svc := NewUserService(api, validator.New(), zap.NewNop())

	err := svc.SetPassword(context.Background(), adminSession, 9, models.PasswordChange{Password: "nova-senha"})
	require.NoError(t, err)
	assert.Equal(t, "nova-senha", api.password)

	err = svc.SetPassword(context.Background(), teacherSession, 9, models.PasswordChange{Password: "nova-senha"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
