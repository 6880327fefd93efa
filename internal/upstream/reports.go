package upstream

import (
	"context"
	"fmt"
	"io"
)

// SessionReport streams the DOCX rollcall report of one attendance session.
func (c *Client) SessionReport(ctx context.Context, token string, sessionID int64) (io.ReadCloser, string, error) {
	return c.download(ctx, token, fmt.Sprintf("/attendance-sessions/%d/report/docx", sessionID))
}

// StudentReport streams the DOCX history report of one student.
func (c *Client) StudentReport(ctx context.Context, token string, studentID int64) (io.ReadCloser, string, error) {
	return c.download(ctx, token, fmt.Sprintf("/students/%d/report/docx", studentID))
}
