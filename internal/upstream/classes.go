package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/turma-apps/turma-web/internal/models"
)

// ListClasses returns every class visible to the token's account.
func (c *Client) ListClasses(ctx context.Context, token string) ([]models.Class, error) {
	var classes []models.Class
	err := c.do(ctx, token, http.MethodGet, "/classes/", nil, nil, &classes)
	return classes, err
}

func (c *Client) GetClass(ctx context.Context, token string, id int64) (models.Class, error) {
	var class models.Class
	err := c.do(ctx, token, http.MethodGet, fmt.Sprintf("/classes/%d", id), nil, nil, &class)
	return class, err
}

func (c *Client) CreateClass(ctx context.Context, token string, input models.ClassInput) (models.Class, error) {
	var class models.Class
	err := c.do(ctx, token, http.MethodPost, "/classes/", nil, input, &class)
	return class, err
}

func (c *Client) UpdateClass(ctx context.Context, token string, id int64, input models.ClassInput) (models.Class, error) {
	var class models.Class
	err := c.do(ctx, token, http.MethodPut, fmt.Sprintf("/classes/%d", id), nil, input, &class)
	return class, err
}

func (c *Client) DeleteClass(ctx context.Context, token string, id int64) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/classes/%d", id), nil, nil, nil)
}

// ClassStudents returns the roster of a class.
func (c *Client) ClassStudents(ctx context.Context, token string, classID int64) ([]models.Student, error) {
	var students []models.Student
	err := c.do(ctx, token, http.MethodGet, fmt.Sprintf("/classes/%d/students", classID), nil, nil, &students)
	return students, err
}

// Enroll adds a student to a class roster.
func (c *Client) Enroll(ctx context.Context, token string, classID, studentID int64) error {
	return c.do(ctx, token, http.MethodPost, fmt.Sprintf("/classes/%d/enroll/%d", classID, studentID), nil, nil, nil)
}
