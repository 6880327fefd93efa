package models

// Class represents a class group (turma) with its weekly schedule text.
type Class struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

// ClassInput is the payload for creating or updating a class.
type ClassInput struct {
	Name     string `json:"name" validate:"required"`
	Schedule string `json:"schedule" validate:"required"`
}
