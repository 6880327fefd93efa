package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

type userAPI interface {
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	CreateUser(ctx context.Context, token string, creds models.Credentials) (models.User, error)
	DeleteUser(ctx context.Context, token string, id int64) error
	SetUserPassword(ctx context.Context, token string, id int64, password string) error
}

// UserService is the admin account management surface. Authorisation is
// enforced both here and upstream; the upstream check is authoritative.
type UserService struct {
	api       userAPI
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(api userAPI, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{api: api, validator: validate, logger: logger}
}

func (s *UserService) List(ctx context.Context, session *models.Session) ([]models.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.api.ListUsers(ctx, session.UpstreamToken)
}

func (s *UserService) Create(ctx context.Context, session *models.Session, creds models.Credentials) (models.User, error) {
	if err := requireAdmin(session); err != nil {
		return models.User{}, err
	}
	if err := s.validator.Struct(creds); err != nil {
		return models.User{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	user, err := s.api.CreateUser(ctx, session.UpstreamToken, creds)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.Int64("by", session.User.ID))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, session *models.Session, id int64) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if id == session.User.ID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot delete your own account")
	}
	if err := s.api.DeleteUser(ctx, session.UpstreamToken, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id), zap.Int64("by", session.User.ID))
	return nil
}

func (s *UserService) SetPassword(ctx context.Context, session *models.Session, id int64, change models.PasswordChange) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := s.validator.Struct(change); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	return s.api.SetUserPassword(ctx, session.UpstreamToken, id, change.Password)
}

func requireAdmin(session *models.Session) error {
	if session == nil || !session.User.IsAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	return nil
}
