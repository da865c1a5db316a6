package services

import (
	"context"
	"time"

	"habitsync/internal/clock"
	"habitsync/internal/models"
	"habitsync/internal/store"
)

type ExportService struct {
	store  *store.Store
	clock  *clock.Clock
	notes  *NoteService
	enc    *EncryptionService
	habits *HabitService
}

func NewExportService(st *store.Store, clk *clock.Clock, notes *NoteService, enc *EncryptionService, habits *HabitService) *ExportService {
	return &ExportService{store: st, clock: clk, notes: notes, enc: enc, habits: habits}
}

// Export is a portable copy of a user's data. Import restores the habits, todos,
// XP and profile settings; completions, notes and daily stats are exported for
// reference only.
type Export struct {
	ExportedAt  time.Time                `json:"exported_at"`
	DisplayName *string                  `json:"display_name,omitempty"`
	Timezone    string                   `json:"timezone"`
	XP          int                      `json:"xp"`
	DailyGoal   *int                     `json:"daily_goal,omitempty"`
	MonthlyGoal *int                     `json:"monthly_goal,omitempty"`
	Habits      []models.Habit           `json:"habits"`
	Todos       []models.Todo            `json:"todos"`
	Completions []models.CompletionEvent `json:"completions,omitempty"`
	Notes       []models.HabitNote       `json:"notes,omitempty"`
	DailyStats  []models.DailyStat       `json:"daily_stats,omitempty"`
}

func (s *ExportService) Export(ctx context.Context, userID string) (Export, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Export{}, err
	}
	out := Export{
		ExportedAt:  s.clock.Now().UTC(),
		DisplayName: u.DisplayName,
		Timezone:    u.Timezone,
		XP:          u.XP,
		DailyGoal:   u.DailyGoal,
		MonthlyGoal: u.MonthlyGoal,
	}
	if out.Habits, err = s.store.ListHabits(ctx, userID); err != nil {
		return Export{}, err
	}
	if out.Todos, err = s.store.ListTodos(ctx, userID); err != nil {
		return Export{}, err
	}
	if out.Completions, err = s.store.ListCompletions(ctx, userID, ""); err != nil {
		return Export{}, err
	}
	for i := range out.Completions {
		if out.Completions[i].Note, err = s.enc.DecryptText(out.Completions[i].Note); err != nil {
			return Export{}, err
		}
	}
	if out.Notes, err = s.notes.All(ctx, userID); err != nil {
		return Export{}, err
	}
	if out.DailyStats, err = s.store.ListDailyStats(ctx, userID, ""); err != nil {
		return Export{}, err
	}
	return out, nil
}

type ImportResult struct {
	Habits int `json:"habits"`
	Todos  int `json:"todos"`
}

// Import replaces the user's habits and todos with the exported ones. Every
// imported row gets a fresh id. A done todo without a completion time is stamped
// with the import time.
func (s *ExportService) Import(ctx context.Context, userID string, data Export) (ImportResult, error) {
	for _, h := range data.Habits {
		if !h.Color.Valid() || !h.Category.Valid() || h.Name == "" || h.Streak < 0 {
			return ImportResult{}, invalid("habit %q is not valid", h.Name)
		}
	}
	for _, t := range data.Todos {
		if !t.Priority.Valid() || !t.Status.Valid() || t.Title == "" {
			return ImportResult{}, invalid("todo %q is not valid", t.Title)
		}
	}
	in := ProfileInput{DisplayName: data.DisplayName, DailyGoal: data.DailyGoal, MonthlyGoal: data.MonthlyGoal}
	if data.Timezone != "" {
		in.Timezone = &data.Timezone
	}
	profile, err := in.validate()
	if err != nil {
		return ImportResult{}, err
	}

	now := s.clock.Now().UTC()
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.ClearHabits(ctx, userID); err != nil {
			return err
		}
		if err := tx.ClearTodos(ctx, userID); err != nil {
			return err
		}
		for _, h := range data.Habits {
			h.ID = ""
			h.UserID = userID
			if h.CreatedAt.IsZero() {
				h.CreatedAt = now
			}
			if err := tx.InsertHabit(ctx, &h); err != nil {
				return err
			}
		}
		for _, t := range data.Todos {
			t.ID = ""
			t.UserID = userID
			if t.CreatedAt.IsZero() {
				t.CreatedAt = now
			}
			switch {
			case t.Status != models.StatusDone:
				t.CompletedAt = nil
			case t.CompletedAt == nil:
				done := now
				t.CompletedAt = &done
			}
			if err := tx.InsertTodo(ctx, &t); err != nil {
				return err
			}
		}
		if err := tx.SetXP(ctx, userID, data.XP); err != nil {
			return err
		}
		return tx.UpdateProfile(ctx, userID, profile)
	})
	if err != nil {
		return ImportResult{}, err
	}

	_, loc, err := userLocation(ctx, s.store, userID)
	if err == nil {
		s.habits.afterChange(ctx, userID, loc)
	}
	return ImportResult{Habits: len(data.Habits), Todos: len(data.Todos)}, nil
}
