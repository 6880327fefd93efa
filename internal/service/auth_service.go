package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

type authAPI interface {
	Token(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (models.User, error)
	SetOwnPassword(ctx context.Context, token, password string) error
}

// SessionConfig defines the gateway's own token and session lifetime.
type SessionConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService exchanges credentials for an upstream token and wraps it in a
// server-side session so the browser only ever holds a gateway JWT.
type AuthService struct {
	api       authAPI
	redis     *redis.Client
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(api authAPI, redisClient *redis.Client, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{api: api, redis: redisClient, validator: validate, logger: logger, config: config}
}

// Login authenticates against the school API and opens a session.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	if err := s.validator.Struct(creds); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	token, err := s.api.Token(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is inactive")
	}

	session := models.Session{
		ID:            uuid.NewString(),
		UpstreamToken: token,
		User:          user,
	}
	if err := s.storeSession(ctx, session); err != nil {
		return nil, err
	}

	signed, err := s.signToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	s.logger.Info("session opened", zap.String("session_id", session.ID), zap.Int64("user_id", user.ID))

	return &models.LoginResponse{
		Token:     signed,
		ExpiresIn: int64(s.config.Expiration.Seconds()),
		User:      user,
	}, nil
}

// Authenticate resolves a gateway JWT into its stored session.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Session, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	raw, err := s.redis.Get(ctx, sessionKey(claims.SessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode session")
	}
	return &session, nil
}

// Logout closes the session behind a gateway JWT. An already missing session
// is not an error.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return err
	}
	if err := s.redis.Del(ctx, sessionKey(claims.SessionID)).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.logger.Info("session closed", zap.String("session_id", claims.SessionID))
	return nil
}

// ChangeOwnPassword updates the password of the session's account upstream.
func (s *AuthService) ChangeOwnPassword(ctx context.Context, session *models.Session, change models.PasswordChange) error {
	if err := s.validator.Struct(change); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	return s.api.SetOwnPassword(ctx, session.UpstreamToken, change.Password)
}

func (s *AuthService) storeSession(ctx context.Context, session models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode session")
	}
	if err := s.redis.Set(ctx, sessionKey(session.ID), payload, s.config.Expiration).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	return nil
}

func (s *AuthService) signToken(session models.Session) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.SessionClaims{
		SessionID: session.ID,
		Email:     session.User.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", session.User.ID),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}

func (s *AuthService) parseToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func sessionKey(id string) string {
	return "session:" + id
}
