package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"habitsync/internal/models"
)

type todoRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	Priority    string         `db:"priority"`
	Status      string         `db:"status"`
	DueDate     sql.NullString `db:"due_date"`
	CompletedAt sql.NullString `db:"completed_at"`
	CreatedAt   string         `db:"created_at"`
}

const todoColumns = `id, user_id, title, priority, status, due_date, completed_at, created_at`

func (r todoRow) model() (models.Todo, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.Todo{}, err
	}
	due, err := parseNullTime(r.DueDate)
	if err != nil {
		return models.Todo{}, err
	}
	completed, err := parseNullTime(r.CompletedAt)
	if err != nil {
		return models.Todo{}, err
	}
	return models.Todo{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Priority:    models.Priority(r.Priority),
		Status:      models.TodoStatus(r.Status),
		DueDate:     due,
		CompletedAt: completed,
		CreatedAt:   created,
	}, nil
}

func (c conn) InsertTodo(ctx context.Context, t *models.Todo) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	_, err := c.exec(ctx, `INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, string(t.Priority), string(t.Status), nullTime(t.DueDate), nullTime(t.CompletedAt), formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (c conn) GetTodo(ctx context.Context, userID, id string) (models.Todo, error) {
	var r todoRow
	if err := c.get(ctx, &r, `SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return models.Todo{}, notFound(err)
	}
	return r.model()
}

func (t *Tx) GetTodoForUpdate(ctx context.Context, userID, id string) (models.Todo, error) {
	var r todoRow
	if err := t.get(ctx, &r, `SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`+t.forUpdate(), id, userID); err != nil {
		return models.Todo{}, notFound(err)
	}
	return r.model()
}

// ListTodos returns the user's todos, newest first.
func (c conn) ListTodos(ctx context.Context, userID string) ([]models.Todo, error) {
	var rows []todoRow
	if err := c.selectAll(ctx, &rows, `SELECT `+todoColumns+` FROM todos WHERE user_id = ? ORDER BY created_at DESC, id`, userID); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	out := make([]models.Todo, 0, len(rows))
	for _, r := range rows {
		t, err := r.model()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (c conn) UpdateTodoDetails(ctx context.Context, t models.Todo) error {
	return c.execOne(ctx, `UPDATE todos SET title = ?, priority = ?, due_date = ? WHERE id = ? AND user_id = ?`,
		t.Title, string(t.Priority), nullTime(t.DueDate), t.ID, t.UserID)
}

func (c conn) SaveTodoStatus(ctx context.Context, t models.Todo) error {
	return c.execOne(ctx, `UPDATE todos SET status = ?, completed_at = ? WHERE id = ? AND user_id = ?`,
		string(t.Status), nullTime(t.CompletedAt), t.ID, t.UserID)
}

func (c conn) DeleteTodo(ctx context.Context, userID, id string) error {
	return c.execOne(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
}

func (c conn) ClearTodos(ctx context.Context, userID string) error {
	_, err := c.exec(ctx, `DELETE FROM todos WHERE user_id = ?`, userID)
	return err
}
