package models

// DefaultPageSize matches the page size the student list renders with.
const DefaultPageSize = 10

// Pagination contains pagination metadata returned in list responses. The
// upstream API does not report totals, so TotalCount is -1 when unknown and
// HasMore signals whether another page likely exists.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	HasMore    bool `json:"has_more"`
}
