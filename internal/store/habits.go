package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"habitsync/internal/models"
)

type habitRow struct {
	ID                string         `db:"id"`
	UserID            string         `db:"user_id"`
	Name              string         `db:"name"`
	Icon              string         `db:"icon"`
	Color             string         `db:"color"`
	Category          string         `db:"category"`
	Streak            int            `db:"streak"`
	Completed         bool           `db:"completed"`
	LastCompletedDate sql.NullString `db:"last_completed_date"`
	CreatedAt         string         `db:"created_at"`
}

const habitColumns = `id, user_id, name, icon, color, category, streak, completed, last_completed_date, created_at`

func (r habitRow) model() (models.Habit, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	return models.Habit{
		ID:                r.ID,
		UserID:            r.UserID,
		Name:              r.Name,
		Icon:              r.Icon,
		Color:             models.Color(r.Color),
		Category:          models.Category(r.Category),
		Streak:            r.Streak,
		Completed:         r.Completed,
		LastCompletedDate: stringPtr(r.LastCompletedDate),
		CreatedAt:         created,
	}, nil
}

func (c conn) InsertHabit(ctx context.Context, h *models.Habit) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	_, err := c.exec(ctx, `INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Icon, string(h.Color), string(h.Category), h.Streak, h.Completed,
		nullString(h.LastCompletedDate), formatTime(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	return nil
}

func (c conn) GetHabit(ctx context.Context, userID, id string) (models.Habit, error) {
	var r habitRow
	if err := c.get(ctx, &r, `SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return models.Habit{}, notFound(err)
	}
	return r.model()
}

// GetHabitForUpdate reads a habit and locks its row until the transaction ends.
func (t *Tx) GetHabitForUpdate(ctx context.Context, userID, id string) (models.Habit, error) {
	var r habitRow
	if err := t.get(ctx, &r, `SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`+t.forUpdate(), id, userID); err != nil {
		return models.Habit{}, notFound(err)
	}
	return r.model()
}

// ListHabits returns the user's habits, newest first.
func (c conn) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	var rows []habitRow
	if err := c.selectAll(ctx, &rows, `SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY created_at DESC, id`, userID); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	out := make([]models.Habit, 0, len(rows))
	for _, r := range rows {
		h, err := r.model()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// UpdateHabitDetails writes the user-editable fields: name, icon, color and category.
func (c conn) UpdateHabitDetails(ctx context.Context, h models.Habit) error {
	return c.execOne(ctx, `UPDATE habits SET name = ?, icon = ?, color = ?, category = ? WHERE id = ? AND user_id = ?`,
		h.Name, h.Icon, string(h.Color), string(h.Category), h.ID, h.UserID)
}

// SaveHabitState writes the streak fields together.
func (c conn) SaveHabitState(ctx context.Context, h models.Habit) error {
	return c.execOne(ctx, `UPDATE habits SET streak = ?, completed = ?, last_completed_date = ? WHERE id = ? AND user_id = ?`,
		h.Streak, h.Completed, nullString(h.LastCompletedDate), h.ID, h.UserID)
}

func (c conn) DeleteHabit(ctx context.Context, userID, id string) error {
	return c.execOne(ctx, `DELETE FROM habits WHERE id = ? AND user_id = ?`, id, userID)
}

// ClearHabits removes every habit the user owns. Completion history is kept.
func (c conn) ClearHabits(ctx context.Context, userID string) error {
	_, err := c.exec(ctx, `DELETE FROM habits WHERE user_id = ?`, userID)
	return err
}
