package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// sortableFields maps the public orderBy names onto column names. Sorting
// by anything else is rejected; the column name ends up in a dynamic
// ORDER BY, so this whitelist is a hard requirement, not a convenience.
var sortableFields = map[string]string{
	"title":       "title",
	"description": "description",
	"status":      "status",
	"dueTime":     "due_time",
	"duration":    "duration",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

const (
	defaultPage  = 0
	defaultLimit = 10
)

// TodoService defines operations for todos
type TodoService interface {
	CreateTodo(ctx context.Context, principal model.Principal, req model.CreateTodoRequest) (*model.Todo, error)
	GetTodoByID(ctx context.Context, principal model.Principal, todoID string) (*model.Todo, error)
	ListTodos(ctx context.Context, principal model.Principal, query model.ListTodosQuery) (*model.TodoPage, error)
	UpdateTodo(ctx context.Context, principal model.Principal, todoID string, req model.UpdateTodoRequest) (*model.Todo, error)
	DeleteTodo(ctx context.Context, principal model.Principal, todoID string) error
}

type todoService struct {
	todoRepo repository.TodoRepository
	userRepo repository.UserRepository
}

// NewTodoService creates a new TodoService
func NewTodoService(todoRepo repository.TodoRepository, userRepo repository.UserRepository) TodoService {
	return &todoService{todoRepo: todoRepo, userRepo: userRepo}
}

// parseDate accepts RFC3339 timestamps or plain dates.
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date: %q", value)
}

// endOfDay pushes a timestamp to the last instant of its calendar day, so
// a date-only endDate includes the whole day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// ownerScope returns the owner constraint for single-item lookups: admins
// see everything, everyone else only their own rows.
func ownerScope(principal model.Principal) *string {
	if principal.IsAdmin() {
		return nil
	}
	ownerID := principal.UserID
	return &ownerID
}

// buildFilters validates the raw query parameters and assembles the scoped
// repository filter. Invalid dates, pagination numbers and sort fields
// abort the whole request; an unknown status is ignored rather than
// rejected, and a userId supplied by a non-admin is silently dropped in
// favor of the caller's own scope.
func buildFilters(principal model.Principal, q model.ListTodosQuery) (model.TodoFilters, error) {
	var f model.TodoFilters

	if principal.IsAdmin() {
		if q.UserID != "" {
			userID := q.UserID
			f.OwnerID = &userID
		}
	} else {
		ownerID := principal.UserID
		f.OwnerID = &ownerID
	}

	if q.Status != "" && q.Status != model.StatusAll && model.IsValidStatus(q.Status) {
		status := q.Status
		f.Status = &status
	}

	if q.Title != "" {
		title := q.Title
		f.Title = &title
	}

	if q.StartDate != "" {
		start, err := parseDate(q.StartDate)
		if err != nil {
			return f, validationError("Invalid startDate format")
		}
		f.StartDate = &start
	}
	if q.EndDate != "" {
		end, err := parseDate(q.EndDate)
		if err != nil {
			return f, validationError("Invalid endDate format")
		}
		end = endOfDay(end)
		f.EndDate = &end
	}

	page := defaultPage
	if q.Page != "" {
		v, err := strconv.Atoi(q.Page)
		if err != nil || v < 0 {
			return f, validationError("Invalid page parameter")
		}
		page = v
	}
	limit := defaultLimit
	if q.Limit != "" {
		v, err := strconv.Atoi(q.Limit)
		if err != nil || v < 0 {
			return f, validationError("Invalid limit parameter")
		}
		limit = v
	}
	f.Limit = limit
	f.Offset = page * limit

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "createdAt"
	}
	column, ok := sortableFields[orderBy]
	if !ok {
		return f, validationError("Invalid orderBy field")
	}
	f.OrderColumn = column
	f.Descending = q.Order == "desc"

	return f, nil
}

func (s *todoService) ListTodos(ctx context.Context, principal model.Principal, query model.ListTodosQuery) (*model.TodoPage, error) {
	filters, err := buildFilters(principal, query)
	if err != nil {
		return nil, err
	}

	items, total, err := s.todoRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return &model.TodoPage{Items: items, Total: total}, nil
}

func (s *todoService) CreateTodo(ctx context.Context, principal model.Principal, req model.CreateTodoRequest) (*model.Todo, error) {
	if req.Title == "" {
		return nil, validationError("Title is required")
	}

	// A valid token should always map to an existing user; a miss here is
	// a consistency-repair signal, surfaced as 404.
	owner, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve todo owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	todo := &model.Todo{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Status:    model.StatusBacklog,
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.Description != nil {
		todo.Description = req.Description
	}
	if req.Status != nil {
		if !model.IsValidStatus(*req.Status) {
			return nil, validationError("Invalid status value")
		}
		todo.Status = *req.Status
	}
	if req.DueTime != nil && *req.DueTime != "" {
		due, err := parseDate(*req.DueTime)
		if err != nil {
			return nil, validationError("Invalid dueTime format")
		}
		todo.DueTime = &due
	}
	if req.Duration != nil {
		if *req.Duration < 0 {
			return nil, validationError("Duration cannot be negative")
		}
		todo.Duration = req.Duration
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo in repo: %w", err)
	}
	return todo, nil
}

func (s *todoService) GetTodoByID(ctx context.Context, principal model.Principal, todoID string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindScoped(ctx, todoID, ownerScope(principal))
	if err != nil {
		return nil, fmt.Errorf("failed to find todo by ID: %w", err)
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, principal model.Principal, todoID string, req model.UpdateTodoRequest) (*model.Todo, error) {
	// The lookup is ownership-scoped, so a non-owner gets a 404 and never
	// learns the item exists. Not-found wins over body validation.
	todo, err := s.todoRepo.FindScoped(ctx, todoID, ownerScope(principal))
	if err != nil {
		return nil, fmt.Errorf("failed to find todo for update: %w", err)
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}

	// Validate everything before touching the fetched row; a request that
	// fails on a later field must not apply the earlier ones.
	if req.Title.Set && (req.Title.Null || req.Title.Value == "") {
		return nil, validationError("Title cannot be empty")
	}
	if req.Status.Set {
		if req.Status.Null || !model.IsValidStatus(req.Status.Value) {
			return nil, validationError("Invalid status value")
		}
	}
	var due *time.Time
	if req.DueTime.HasValue() && req.DueTime.Value != "" {
		parsed, err := parseDate(req.DueTime.Value)
		if err != nil {
			return nil, validationError("Invalid dueTime format")
		}
		due = &parsed
	}
	if req.Duration.HasValue() && req.Duration.Value < 0 {
		return nil, validationError("Duration cannot be negative")
	}

	if req.Title.Set {
		todo.Title = req.Title.Value
	}
	if req.Description.Set {
		if req.Description.Null {
			todo.Description = nil
		} else {
			desc := req.Description.Value
			todo.Description = &desc
		}
	}
	if req.Status.Set {
		todo.Status = req.Status.Value
	}
	if req.DueTime.Set {
		// present-but-empty clears, present-with-value sets
		todo.DueTime = due
	}
	if req.Duration.Set {
		if req.Duration.Null {
			todo.Duration = nil
		} else {
			d := req.Duration.Value
			todo.Duration = &d
		}
	}
	todo.UpdatedAt = time.Now()

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound // lost a race against a concurrent delete
		}
		return nil, fmt.Errorf("failed to update todo in repo: %w", err)
	}
	return todo, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, principal model.Principal, todoID string) error {
	err := s.todoRepo.DeleteScoped(ctx, todoID, ownerScope(principal))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to delete todo in repo: %w", err)
	}
	return nil
}
