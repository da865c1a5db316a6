package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitsync/internal/models"
)

type userRow struct {
	ID              string         `db:"id"`
	Email           string         `db:"email"`
	EmailBlindIndex string         `db:"email_blind_index"`
	PasswordHash    string         `db:"password_hash"`
	DisplayName     sql.NullString `db:"display_name"`
	XP              int            `db:"xp"`
	LastResetDate   sql.NullString `db:"last_reset_date"`
	Timezone        string         `db:"timezone"`
	DailyGoal       sql.NullInt64  `db:"daily_goal"`
	MonthlyGoal     sql.NullInt64  `db:"monthly_goal"`
	IsAdmin         bool           `db:"is_admin"`
	CreatedAt       string         `db:"created_at"`
}

const userColumns = `id, email, email_blind_index, password_hash, display_name, xp, last_reset_date, timezone, daily_goal, monthly_goal, is_admin, created_at`

func (r userRow) model() (models.User, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:              r.ID,
		Email:           r.Email,
		EmailBlindIndex: r.EmailBlindIndex,
		PasswordHash:    r.PasswordHash,
		DisplayName:     stringPtr(r.DisplayName),
		XP:              r.XP,
		LastResetDate:   stringPtr(r.LastResetDate),
		Timezone:        r.Timezone,
		DailyGoal:       intPtr(r.DailyGoal),
		MonthlyGoal:     intPtr(r.MonthlyGoal),
		IsAdmin:         r.IsAdmin,
		CreatedAt:       created,
	}, nil
}

// CreateUser inserts u, assigning an id and creation time when they are unset.
func (c conn) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	_, err := c.exec(ctx, `INSERT INTO users (id, email, email_blind_index, password_hash, display_name, xp, timezone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.EmailBlindIndex, u.PasswordHash, nullString(u.DisplayName), u.XP, u.Timezone, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (c conn) GetUser(ctx context.Context, id string) (models.User, error) {
	var r userRow
	if err := c.get(ctx, &r, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return models.User{}, notFound(err)
	}
	return r.model()
}

func (c conn) GetUserByBlindIndex(ctx context.Context, blindIndex string) (models.User, error) {
	var r userRow
	if err := c.get(ctx, &r, `SELECT `+userColumns+` FROM users WHERE email_blind_index = ?`, blindIndex); err != nil {
		return models.User{}, notFound(err)
	}
	return r.model()
}

// GetUserForUpdate reads the user row and locks it until the transaction ends.
func (t *Tx) GetUserForUpdate(ctx context.Context, id string) (models.User, error) {
	var r userRow
	if err := t.get(ctx, &r, `SELECT `+userColumns+` FROM users WHERE id = ?`+t.forUpdate(), id); err != nil {
		return models.User{}, notFound(err)
	}
	return r.model()
}

// ProfileUpdate lists the user fields a client may change; nil fields are left alone.
// A goal of 0 or less clears the goal.
type ProfileUpdate struct {
	DisplayName *string
	Timezone    *string
	DailyGoal   *int
	MonthlyGoal *int
}

func goalValue(g *int) sql.NullInt64 {
	if *g <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*g), Valid: true}
}

func (c conn) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error {
	setClauses := []string{}
	args := []any{}
	if p.DisplayName != nil {
		setClauses = append(setClauses, "display_name = ?")
		args = append(args, *p.DisplayName)
	}
	if p.Timezone != nil {
		setClauses = append(setClauses, "timezone = ?")
		args = append(args, *p.Timezone)
	}
	if p.DailyGoal != nil {
		setClauses = append(setClauses, "daily_goal = ?")
		args = append(args, goalValue(p.DailyGoal))
	}
	if p.MonthlyGoal != nil {
		setClauses = append(setClauses, "monthly_goal = ?")
		args = append(args, goalValue(p.MonthlyGoal))
	}
	if len(setClauses) == 0 {
		return nil
	}
	args = append(args, id)
	return c.execOne(ctx, "UPDATE users SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", args...)
}

func (c conn) SetLastResetDate(ctx context.Context, id, date string) error {
	return c.execOne(ctx, `UPDATE users SET last_reset_date = ? WHERE id = ?`, date, id)
}

// ApplyXPDelta adds delta to the user's XP, flooring the total at zero, and returns the new total.
func (c conn) ApplyXPDelta(ctx context.Context, id string, delta int) (int, error) {
	var xp int
	err := c.get(ctx, &xp, `UPDATE users SET xp = CASE WHEN xp + ? < 0 THEN 0 ELSE xp + ? END WHERE id = ? RETURNING xp`, delta, delta, id)
	if err != nil {
		return 0, notFound(err)
	}
	return xp, nil
}

// SetXP overwrites the XP total. Negative values are stored as zero.
func (c conn) SetXP(ctx context.Context, id string, xp int) error {
	if xp < 0 {
		xp = 0
	}
	return c.execOne(ctx, `UPDATE users SET xp = ? WHERE id = ?`, xp, id)
}

func (c conn) SetAdmin(ctx context.Context, id string, admin bool) error {
	return c.execOne(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, admin, id)
}

type Overview struct {
	TotalUsers       int `db:"total_users" json:"total_users"`
	TotalHabits      int `db:"total_habits" json:"total_habits"`
	TotalTodos       int `db:"total_todos" json:"total_todos"`
	CompletionsSince int `db:"completions_since" json:"completions_since"`
	ActiveUsersSince int `db:"active_users_since" json:"active_users_since"`
	TotalNotes       int `db:"total_notes" json:"total_notes"`
}

// Overview aggregates instance-wide totals; completions and active users count from sinceDate (YYYY-MM-DD).
func (c conn) Overview(ctx context.Context, sinceDate string) (Overview, error) {
	var o Overview
	err := c.get(ctx, &o, `SELECT
		(SELECT COUNT(*) FROM users) AS total_users,
		(SELECT COUNT(*) FROM habits) AS total_habits,
		(SELECT COUNT(*) FROM todos) AS total_todos,
		(SELECT COUNT(*) FROM habit_completions WHERE date >= ?) AS completions_since,
		(SELECT COUNT(DISTINCT user_id) FROM habit_completions WHERE date >= ?) AS active_users_since,
		(SELECT COUNT(*) FROM habit_notes) AS total_notes`, sinceDate, sinceDate)
	return o, err
}
