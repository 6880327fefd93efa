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

type mockAuthAPI struct {
	token        string
	tokenErr     error
	user         models.User
	passwordSet  string
	passwordWith string
}

func (m *mockAuthAPI) Token(ctx context.Context, email, password string) (string, error) {
	if m.tokenErr != nil {
		return "", m.tokenErr
	}
	return m.token, nil
}

func (m *mockAuthAPI) Me(ctx context.Context, token string) (models.User, error) {
	return m.user, nil
}

func (m *mockAuthAPI) SetOwnPassword(ctx context.Context, token, password string) error {
	m.passwordSet = password
	m.passwordWith = token
	return nil
}

func newAuthService(api *mockAuthAPI) *AuthService {
	return NewAuthService(api, nil, validator.New(), zap.NewNop(), SessionConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "turma-web",
	})
}

func TestLoginRejectsBadPayload(t *testing.T) {
	svc := newAuthService(&mockAuthAPI{})

	_, err := svc.Login(context.Background(), models.Credentials{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginPropagatesInvalidCredentials(t *testing.T) {
	svc := newAuthService(&mockAuthAPI{tokenErr: appErrors.ErrInvalidCredentials})

	_, err := svc.Login(context.Background(), models.Credentials{Email: "ana@escola.com", Password: "errada"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newAuthService(&mockAuthAPI{})

	session := models.Session{
		ID:            "sess-1",
		UpstreamToken: "upstream-tok",
		User:          models.User{ID: 7, Email: "ana@escola.com"},
	}
	signed, err := svc.signToken(session)
	require.NoError(t, err)

	claims, err := svc.parseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "ana@escola.com", claims.Email)
	assert.Equal(t, "turma-web", claims.Issuer)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	svc := newAuthService(&mockAuthAPI{})
	other := NewAuthService(&mockAuthAPI{}, nil, validator.New(), zap.NewNop(), SessionConfig{
		Secret:     "another-secret",
		Expiration: time.Hour,
	})

	signed, err := other.signToken(models.Session{ID: "sess-1"})
	require.NoError(t, err)

	_, err = svc.parseToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&mockAuthAPI{})
	_, err := svc.parseToken("not.a.jwt")
	require.Error(t, err)
}

func TestChangeOwnPassword(t *testing.T) {
	api := &mockAuthAPI{}
	svc := newAuthService(api)
	session := &models.Session{UpstreamToken: "upstream-tok"}

	err := svc.ChangeOwnPassword(context.Background(), session, models.PasswordChange{Password: "nova-senha"})
	require.NoError(t, err)
	assert.Equal(t, "nova-senha", api.passwordSet)
	assert.Equal(t, "upstream-tok", api.passwordWith)

	err = svc.ChangeOwnPassword(context.Background(), session, models.PasswordChange{Password: "123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
