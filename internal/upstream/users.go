package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/turma-apps/turma-web/internal/models"
)

// ListUsers returns every account. Admin only upstream.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, token, http.MethodGet, "/users/", nil, nil, &users)
	return users, err
}

func (c *Client) CreateUser(ctx context.Context, token string, creds models.Credentials) (models.User, error) {
	var user models.User
	err := c.do(ctx, token, http.MethodPost, "/users/", nil, creds, &user)
	return user, err
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
}

type passwordBody struct {
	Password string `json:"password"`
}

// SetUserPassword resets another account's password. Admin only upstream.
func (c *Client) SetUserPassword(ctx context.Context, token string, id int64, password string) error {
	return c.do(ctx, token, http.MethodPut, fmt.Sprintf("/users/%d/password", id), nil, passwordBody{Password: password}, nil)
}

// SetOwnPassword changes the password of the token's own account.
func (c *Client) SetOwnPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, token, http.MethodPut, "/users/me/password", nil, passwordBody{Password: password}, nil)
}
