package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/turma-apps/turma-web/internal/models"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token exchanges credentials for an access token. The upstream expects the
// OAuth2 password form with the email in the username field.
func (c *Client) Token(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := c.newRequest(ctx, "", http.MethodPost, "/token", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", appErrors.ErrInvalidCredentials
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", c.asError(resp)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode token response")
	}
	if body.AccessToken == "" {
		return "", appErrors.Clone(appErrors.ErrUpstream, "token response missing access token")
	}
	return body.AccessToken, nil
}

// Me returns the account behind the given token.
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	var user models.User
	err := c.do(ctx, token, http.MethodGet, "/users/me", nil, nil, &user)
	return user, err
}
