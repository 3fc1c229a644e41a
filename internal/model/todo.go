package model

import "time"

const (
	StatusBacklog    = "BACKLOG"
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"

	// StatusAll is the sentinel query value meaning "no status filter".
	StatusAll = "ALL"
)

// IsValidStatus reports whether s is one of the four todo statuses.
// The sentinel ALL is not a storable status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusBacklog, StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Todo represents a single task item
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"` // Pointer for optional field
	Status      string     `json:"status"`
	DueTime     *time.Time `json:"dueTime,omitempty"`
	Duration    *float64   `json:"duration,omitempty"` // In hours
	OwnerID     string     `json:"owner"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTodoRequest is the body for POST /todos. Title is the only
// required field; validation messages are produced by the service layer.
type CreateTodoRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	DueTime     *string  `json:"dueTime"`
	Duration    *float64 `json:"duration"`
}

// UpdateTodoRequest is the body for PATCH/PUT /todos/:id. Every field is
// tri-state: absent keys leave the stored value untouched, null clears
// where clearing is allowed, and a value overwrites.
type UpdateTodoRequest struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[string]  `json:"description"`
	Status      Optional[string]  `json:"status"`
	DueTime     Optional[string]  `json:"dueTime"`
	Duration    Optional[float64] `json:"duration"`
}

// ListTodosQuery carries the raw query-string parameters of GET /todos.
// All values are untrusted text; the service validates and scopes them.
type ListTodosQuery struct {
	UserID    string
	Status    string
	Title     string
	StartDate string
	EndDate   string
	Page      string
	Limit     string
	OrderBy   string
	Order     string
}

// TodoFilters is the validated, scoped filter handed to the repository.
// OrderColumn is always one of the whitelisted column names.
type TodoFilters struct {
	OwnerID     *string
	Status      *string
	Title       *string
	StartDate   *time.Time
	EndDate     *time.Time
	OrderColumn string
	Descending  bool
	Limit       int
	Offset      int
}

// TodoPage is the response body of GET /todos. Total counts the filtered
// set before pagination.
type TodoPage struct {
	Items []Todo `json:"items"`
	Total int    `json:"total"`
}
