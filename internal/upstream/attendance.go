package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/turma-apps/turma-web/internal/models"
)

// ListSessions returns every attendance session of a class, newest first.
func (c *Client) ListSessions(ctx context.Context, token string, classID int64) ([]models.AttendanceSession, error) {
	var sessions []models.AttendanceSession
	err := c.do(ctx, token, http.MethodGet, fmt.Sprintf("/classes/%d/attendance", classID), nil, nil, &sessions)
	return sessions, err
}

// GetSession returns one session with its per-student logs.
func (c *Client) GetSession(ctx context.Context, token string, sessionID int64) (models.SessionDetail, error) {
	var detail models.SessionDetail
	err := c.do(ctx, token, http.MethodGet, fmt.Sprintf("/attendance-sessions/%d", sessionID), nil, nil, &detail)
	return detail, err
}

// CreateSession records a new session. The upstream assigns the lesson
// number and falls back to "Aula NN" when the description is blank.
func (c *Client) CreateSession(ctx context.Context, token string, classID int64, write models.SessionWrite) (models.SessionDetail, error) {
	var detail models.SessionDetail
	err := c.do(ctx, token, http.MethodPost, fmt.Sprintf("/classes/%d/attendance", classID), nil, write, &detail)
	return detail, err
}

// UpdateSession replaces a session's date, description and full log set.
func (c *Client) UpdateSession(ctx context.Context, token string, classID, sessionID int64, write models.SessionWrite) (models.SessionDetail, error) {
	var detail models.SessionDetail
	err := c.do(ctx, token, http.MethodPut, fmt.Sprintf("/classes/%d/attendance/%d", classID, sessionID), nil, write, &detail)
	return detail, err
}

func (c *Client) DeleteSession(ctx context.Context, token string, classID, sessionID int64) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/classes/%d/attendance/%d", classID, sessionID), nil, nil, nil)
}
