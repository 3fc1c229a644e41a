package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/model"

	"github.com/jackc/pgx/v5"
)

// TodoRepository defines operations for todo data
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	// FindScoped retrieves a todo by id. When ownerID is non-nil the lookup
	// is additionally constrained to that owner, so an invisible row looks
	// identical to a missing one.
	FindScoped(ctx context.Context, id string, ownerID *string) (*model.Todo, error)
	List(ctx context.Context, filters model.TodoFilters) ([]model.Todo, int, error)
	Update(ctx context.Context, todo *model.Todo) error
	DeleteScoped(ctx context.Context, id string, ownerID *string) error
	DeleteAll(ctx context.Context) error
}

type todoRepository struct {
	db Querier
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db Querier) TodoRepository {
	return &todoRepository{db: db}
}

const todoColumns = `id, title, description, status, due_time, duration, owner_id, created_at, updated_at`

// likeEscaper neutralizes ILIKE metacharacters in user-supplied search text
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Create inserts a new todo into the database
func (r *todoRepository) Create(ctx context.Context, t *model.Todo) error {
	sql := `INSERT INTO todos (id, title, description, status, due_time, duration, owner_id, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, t.ID, t.Title, t.Description, t.Status, t.DueTime, t.Duration, t.OwnerID, t.CreatedAt, t.UpdatedAt).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// FindScoped retrieves a todo by ID, optionally constrained to an owner
func (r *todoRepository) FindScoped(ctx context.Context, id string, ownerID *string) (*model.Todo, error) {
	t := &model.Todo{}
	sql := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	args := []interface{}{id}
	if ownerID != nil {
		sql += ` AND owner_id = $2`
		args = append(args, *ownerID)
	}
	err := r.db.QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.DueTime, &t.Duration,
		&t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found (or not visible to this owner)
		}
		return nil, fmt.Errorf("failed to find todo by ID: %w", err)
	}
	return t, nil
}

// buildWhere assembles the WHERE clause and args shared by List's count
// and page queries.
func buildWhere(f model.TodoFilters) (string, []interface{}) {
	var conditions []string
	args := []interface{}{}
	argCount := 1

	if f.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argCount))
		args = append(args, *f.OwnerID)
		argCount++
	}
	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *f.Status)
		argCount++
	}
	if f.Title != nil {
		conditions = append(conditions, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, argCount))
		args = append(args, "%"+likeEscaper.Replace(*f.Title)+"%")
		argCount++
	}
	if f.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("due_time >= $%d", argCount))
		args = append(args, *f.StartDate)
		argCount++
	}
	if f.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("due_time <= $%d", argCount))
		args = append(args, *f.EndDate)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List retrieves a page of todos matching the filters, plus the total count
// of the filtered set before pagination.
func (r *todoRepository) List(ctx context.Context, f model.TodoFilters) ([]model.Todo, int, error) {
	whereClause, args := buildWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM todos` + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}

	// OrderColumn has already been checked against the sortable-field
	// whitelist; it is never raw user input.
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + todoColumns + ` FROM todos`)
	queryBuilder.WriteString(whereClause)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s", f.OrderColumn, direction))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	pageArgs := append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.DueTime, &t.Duration,
			&t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating todo rows: %w", err)
	}
	return todos, total, nil
}

// Update persists all mutable fields of a previously fetched todo
func (r *todoRepository) Update(ctx context.Context, t *model.Todo) error {
	sql := `UPDATE todos
            SET title = $1, description = $2, status = $3, due_time = $4, duration = $5, updated_at = NOW()
            WHERE id = $6 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, t.Title, t.Description, t.Status, t.DueTime, t.Duration, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		// pgx.ErrNoRows here means the row vanished between fetch and write
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// DeleteScoped removes a todo, constrained to an owner unless ownerID is nil.
// Returns pgx.ErrNoRows when nothing visible matched.
func (r *todoRepository) DeleteScoped(ctx context.Context, id string, ownerID *string) error {
	sql := `DELETE FROM todos WHERE id = $1`
	args := []interface{}{id}
	if ownerID != nil {
		sql += ` AND owner_id = $2`
		args = append(args, *ownerID)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteAll wipes the todos table. Only the seeding flow uses this.
func (r *todoRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM todos`); err != nil {
		return fmt.Errorf("failed to delete todos: %w", err)
	}
	return nil
}
