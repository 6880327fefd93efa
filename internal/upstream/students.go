package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/turma-apps/turma-web/internal/models"
)

// ListStudents returns a page of students, optionally filtered by a search
// term matched upstream against student and parent names.
func (c *Client) ListStudents(ctx context.Context, token string, filter models.StudentFilter) ([]models.Student, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(filter.Skip()))
	query.Set("limit", strconv.Itoa(filter.Limit()))
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var students []models.Student
	err := c.do(ctx, token, http.MethodGet, "/students/", query, nil, &students)
	return students, err
}

func (c *Client) CreateStudent(ctx context.Context, token string, input models.StudentInput) (models.Student, error) {
	var student models.Student
	err := c.do(ctx, token, http.MethodPost, "/students/", nil, input, &student)
	return student, err
}

func (c *Client) UpdateStudent(ctx context.Context, token string, id int64, input models.StudentInput) (models.Student, error) {
	var student models.Student
	err := c.do(ctx, token, http.MethodPut, fmt.Sprintf("/students/%d", id), nil, input, &student)
	return student, err
}

func (c *Client) DeleteStudent(ctx context.Context, token string, id int64) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/students/%d", id), nil, nil, nil)
}
