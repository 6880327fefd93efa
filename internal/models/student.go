package models

// Student mirrors the school API's student resource. Parent fields are
// optional contact data shown on payment and roster views.
type Student struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	ParentName  string `json:"parent_name,omitempty"`
	ParentPhone string `json:"parent_phone,omitempty"`
	ParentEmail string `json:"parent_email,omitempty"`
}

// StudentInput is the payload for creating or updating a student.
type StudentInput struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone"`
	ParentName  string `json:"parent_name"`
	ParentPhone string `json:"parent_phone"`
	ParentEmail string `json:"parent_email"`
}

// StudentView decorates a student with display-ready masked phone numbers.
type StudentView struct {
	Student
	PhoneMasked       string `json:"phone_masked,omitempty"`
	ParentPhoneMasked string `json:"parent_phone_masked,omitempty"`
}

// StudentPage is one page of the searchable student list.
type StudentPage struct {
	Items      []StudentView `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// StudentFilter captures the list view's server-side search and paging.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}

// Skip converts the page/size pair into the upstream skip offset.
func (f StudentFilter) Skip() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return (page - 1) * size
}

// Limit returns the effective page size.
func (f StudentFilter) Limit() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return f.PageSize
}
