package services

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"habitsync/internal/clock"
	"habitsync/internal/feed"
	"habitsync/internal/models"
	"habitsync/internal/monitoring"
	"habitsync/internal/stats"
	"habitsync/internal/store"
	"habitsync/internal/streak"
)

const (
	defaultHabitName = "New Habit"
	defaultHabitIcon = "☀️"
	maxHabitName     = 100
	maxHabitIcon     = 16
)

type HabitService struct {
	store    *store.Store
	clock    *clock.Clock
	recorder *Recorder
	notes    *NoteService
	feed     *feed.Broker
	log      *zap.Logger
}

func NewHabitService(st *store.Store, clk *clock.Clock, rec *Recorder, notes *NoteService, broker *feed.Broker, log *zap.Logger) *HabitService {
	return &HabitService{store: st, clock: clk, recorder: rec, notes: notes, feed: broker, log: log}
}

// HabitInput carries the user-editable habit fields. Nil fields are left unchanged
// on update and take their defaults on create.
type HabitInput struct {
	Name     *string          `json:"name"`
	Icon     *string          `json:"icon"`
	Color    *models.Color    `json:"color"`
	Category *models.Category `json:"category"`
}

func (in HabitInput) apply(h *models.Habit) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return invalid("name is required")
		}
		if utf8.RuneCountInString(name) > maxHabitName {
			return invalid("name must be at most %d characters", maxHabitName)
		}
		h.Name = name
	}
	if in.Icon != nil {
		icon := strings.TrimSpace(*in.Icon)
		if icon == "" || utf8.RuneCountInString(icon) > maxHabitIcon {
			return invalid("icon must be a short glyph")
		}
		h.Icon = icon
	}
	if in.Color != nil {
		if !in.Color.Valid() {
			return invalid("unknown color %q", *in.Color)
		}
		h.Color = *in.Color
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return invalid("unknown category %q", *in.Category)
		}
		h.Category = *in.Category
	}
	return nil
}

func (s *HabitService) List(ctx context.Context, userID string) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, userID)
}

func (s *HabitService) Create(ctx context.Context, userID string, in HabitInput) (models.Habit, error) {
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return models.Habit{}, err
	}
	h := models.Habit{
		UserID:    userID,
		Name:      defaultHabitName,
		Icon:      defaultHabitIcon,
		Color:     models.ColorBlue,
		Category:  models.CategoryOther,
		CreatedAt: s.clock.Now().UTC(),
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		in.Name = nil
	}
	if err := in.apply(&h); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.InsertHabit(ctx, &h); err != nil {
		return models.Habit{}, err
	}
	s.afterChange(ctx, userID, loc)
	return h, nil
}

func (s *HabitService) Update(ctx context.Context, userID, id string, in HabitInput) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, userID, id)
	if err != nil {
		return models.Habit{}, err
	}
	if err := in.apply(&h); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.UpdateHabitDetails(ctx, h); err != nil {
		return models.Habit{}, err
	}
	s.publish(ctx, userID)
	return h, nil
}

// Delete removes the habit. Its completion events and notes stay in the history.
func (s *HabitService) Delete(ctx context.Context, userID, id string) error {
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteHabit(ctx, userID, id); err != nil {
		return err
	}
	s.afterChange(ctx, userID, loc)
	return nil
}

type ToggleInput struct {
	Completed *bool   `json:"completed"`
	Note      *string `json:"note"`
}

type ToggleResult struct {
	Habit   models.Habit `json:"habit"`
	XP      int          `json:"xp"`
	Changed bool         `json:"changed"`
}

// Toggle flips the habit's completed flag, or moves it to in.Completed when given.
// The streak fields and the owner's XP change in one transaction. The completion
// event, note and daily stat are written afterwards and may fail without undoing it.
func (s *HabitService) Toggle(ctx context.Context, userID, id string, in ToggleInput) (ToggleResult, error) {
	// A blank note is no note; the event and the journal get the same trimmed text.
	var note *string
	if in.Note != nil && strings.TrimSpace(*in.Note) != "" {
		text, err := cleanNote(*in.Note)
		if err != nil {
			return ToggleResult{}, err
		}
		note = &text
	}

	var res ToggleResult
	var loc *time.Location
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		loc = clock.Location(u.Timezone)
		res.XP = u.XP

		h, err := tx.GetHabitForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		target := !h.Completed
		if in.Completed != nil {
			target = *in.Completed
		}
		today := clock.DateString(s.clock.Today(loc))
		delta := streak.Toggle(&h, target, today)
		res.Habit = h
		if delta == 0 {
			return nil
		}
		if err := tx.SaveHabitState(ctx, h); err != nil {
			return err
		}
		xp, err := tx.ApplyXPDelta(ctx, userID, delta)
		if err != nil {
			return err
		}
		res.XP = xp
		res.Changed = true
		return nil
	})
	if err != nil {
		return ToggleResult{}, err
	}
	if !res.Changed {
		return res, nil
	}

	monitoring.HabitToggles.WithLabelValues(strconv.FormatBool(res.Habit.Completed)).Inc()
	if res.Habit.Completed {
		s.recorder.Record(ctx, loc, res.Habit, note)
		if note != nil && s.notes != nil {
			_, err := s.notes.add(ctx, res.Habit, loc, *note)
			bestEffort(s.log, "save completion note", err, zap.String("habit_id", id))
		}
	}
	s.afterChange(ctx, userID, loc)
	return res, nil
}

// afterChange records today's completion rate and pushes the new habit list to
// live subscribers.
func (s *HabitService) afterChange(ctx context.Context, userID string, loc *time.Location) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		bestEffort(s.log, "load habits after change", err, zap.String("user_id", userID))
		return
	}
	completed := 0
	for _, h := range habits {
		if h.Completed {
			completed++
		}
	}
	err = s.store.UpsertDailyStat(ctx, models.DailyStat{
		UserID:          userID,
		Date:            clock.DateString(s.clock.Today(loc)),
		TotalHabits:     len(habits),
		CompletedHabits: completed,
		CompletionRate:  stats.CompletionRate(habits),
		RecordedAt:      s.clock.Now().UTC(),
	})
	bestEffort(s.log, "record daily stat", err, zap.String("user_id", userID))
	s.feed.Publish(userID, habits)
}

func (s *HabitService) publish(ctx context.Context, userID string) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		bestEffort(s.log, "load habits for feed", err, zap.String("user_id", userID))
		return
	}
	s.feed.Publish(userID, habits)
}
