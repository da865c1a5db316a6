package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"habitsync/internal/models"
)

type completionRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	HabitID     string         `db:"habit_id"`
	HabitName   string         `db:"habit_name"`
	Category    string         `db:"category"`
	CompletedAt string         `db:"completed_at"`
	Hour        int            `db:"hour"`
	Date        string         `db:"date"`
	Note        sql.NullString `db:"note"`
}

const completionColumns = `id, user_id, habit_id, habit_name, category, completed_at, hour, date, note`

// InsertCompletion appends a completion event. Events are never updated or deleted.
func (c conn) InsertCompletion(ctx context.Context, e *models.CompletionEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := c.exec(ctx, `INSERT INTO habit_completions (`+completionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.HabitID, e.HabitName, string(e.Category), formatTime(e.CompletedAt), e.Hour, e.Date, nullString(e.Note))
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

// ListCompletions returns the user's events dated on or after sinceDate (YYYY-MM-DD),
// oldest first. An empty sinceDate returns the whole history.
func (c conn) ListCompletions(ctx context.Context, userID, sinceDate string) ([]models.CompletionEvent, error) {
	var rows []completionRow
	if err := c.selectAll(ctx, &rows, `SELECT `+completionColumns+` FROM habit_completions WHERE user_id = ? AND date >= ? ORDER BY completed_at`, userID, sinceDate); err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	out := make([]models.CompletionEvent, 0, len(rows))
	for _, r := range rows {
		at, err := parseTime(r.CompletedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CompletionEvent{
			ID:          r.ID,
			UserID:      r.UserID,
			HabitID:     r.HabitID,
			HabitName:   r.HabitName,
			Category:    models.Category(r.Category),
			CompletedAt: at,
			Hour:        r.Hour,
			Date:        r.Date,
			Note:        stringPtr(r.Note),
		})
	}
	return out, nil
}

type noteRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	HabitID   string `db:"habit_id"`
	HabitName string `db:"habit_name"`
	Note      string `db:"note"`
	CreatedAt string `db:"created_at"`
	Date      string `db:"date"`
}

const noteColumns = `id, user_id, habit_id, habit_name, note, created_at, date`

func (c conn) InsertNote(ctx context.Context, n *models.HabitNote) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := c.exec(ctx, `INSERT INTO habit_notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.HabitID, n.HabitName, n.Note, formatTime(n.CreatedAt), n.Date)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// ListNotes returns notes newest first, optionally restricted to one habit.
func (c conn) ListNotes(ctx context.Context, userID, habitID string, limit, offset int) ([]models.HabitNote, error) {
	query := `SELECT ` + noteColumns + ` FROM habit_notes WHERE user_id = ?`
	args := []any{userID}
	if habitID != "" {
		query += ` AND habit_id = ?`
		args = append(args, habitID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []noteRow
	if err := c.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	out := make([]models.HabitNote, 0, len(rows))
	for _, r := range rows {
		at, err := parseTime(r.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, models.HabitNote{
			ID:        r.ID,
			UserID:    r.UserID,
			HabitID:   r.HabitID,
			HabitName: r.HabitName,
			Note:      r.Note,
			CreatedAt: at,
			Date:      r.Date,
		})
	}
	return out, nil
}

type dailyStatRow struct {
	UserID          string `db:"user_id"`
	Date            string `db:"date"`
	TotalHabits     int    `db:"total_habits"`
	CompletedHabits int    `db:"completed_habits"`
	CompletionRate  int    `db:"completion_rate"`
	RecordedAt      string `db:"recorded_at"`
}

// UpsertDailyStat writes the (user, date) row, replacing any earlier write for the same day.
func (c conn) UpsertDailyStat(ctx context.Context, d models.DailyStat) error {
	_, err := c.exec(ctx, `INSERT INTO daily_stats (user_id, date, total_habits, completed_habits, completion_rate, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date)
		DO UPDATE SET
			total_habits = EXCLUDED.total_habits,
			completed_habits = EXCLUDED.completed_habits,
			completion_rate = EXCLUDED.completion_rate,
			recorded_at = EXCLUDED.recorded_at`,
		d.UserID, d.Date, d.TotalHabits, d.CompletedHabits, d.CompletionRate, formatTime(d.RecordedAt))
	if err != nil {
		return fmt.Errorf("upsert daily stat: %w", err)
	}
	return nil
}

func (c conn) ListDailyStats(ctx context.Context, userID, sinceDate string) ([]models.DailyStat, error) {
	var rows []dailyStatRow
	if err := c.selectAll(ctx, &rows, `SELECT user_id, date, total_habits, completed_habits, completion_rate, recorded_at FROM daily_stats WHERE user_id = ? AND date >= ? ORDER BY date`, userID, sinceDate); err != nil {
		return nil, fmt.Errorf("list daily stats: %w", err)
	}
	out := make([]models.DailyStat, 0, len(rows))
	for _, r := range rows {
		at, err := parseTime(r.RecordedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, models.DailyStat{
			UserID:          r.UserID,
			Date:            r.Date,
			TotalHabits:     r.TotalHabits,
			CompletedHabits: r.CompletedHabits,
			CompletionRate:  r.CompletionRate,
			RecordedAt:      at,
		})
	}
	return out, nil
}

func (c conn) CountCompletions(ctx context.Context, userID string) (int, error) {
	var n int
	if err := c.get(ctx, &n, `SELECT COUNT(*) FROM habit_completions WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}
