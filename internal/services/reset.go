package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"habitsync/internal/clock"
	"habitsync/internal/monitoring"
	"habitsync/internal/store"
	"habitsync/internal/streak"
)

// Scheduler runs the day-rollover sweep lazily, the first time a user shows up on
// a new local day.
type Scheduler struct {
	store  *store.Store
	clock  *clock.Clock
	habits *HabitService
	log    *zap.Logger
}

func NewScheduler(st *store.Store, clk *clock.Clock, habits *HabitService, log *zap.Logger) *Scheduler {
	return &Scheduler{store: st, clock: clk, habits: habits, log: log}
}

type ResetResult struct {
	Swept         bool      `json:"swept"`
	Decayed       int       `json:"decayed"`
	LastResetDate string    `json:"last_reset_date"`
	NextReset     time.Time `json:"next_reset"`
}

// CheckAndReset compares the user's last reset date with today. A user who has
// never been reset only gets today's date recorded. An older date triggers one
// sweep over every habit, however many days were missed. Today's date is a no-op.
// The user row stays locked for the whole check, so concurrent sessions sweep once.
func (s *Scheduler) CheckAndReset(ctx context.Context, userID string) (ResetResult, error) {
	var res ResetResult
	var loc *time.Location
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		u, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		loc = clock.Location(u.Timezone)
		today := clock.DateString(s.clock.Today(loc))
		res.LastResetDate = today

		if u.LastResetDate == nil {
			return tx.SetLastResetDate(ctx, userID, today)
		}
		if *u.LastResetDate >= today {
			res.LastResetDate = *u.LastResetDate
			return nil
		}

		yesterday := clock.DateString(s.clock.Yesterday(loc))
		habits, err := tx.ListHabits(ctx, userID)
		if err != nil {
			return err
		}
		for i := range habits {
			before, lost := streak.StateOf(habits[i]), habits[i].Streak
			if !streak.Sweep(&habits[i], yesterday) {
				continue
			}
			if err := tx.SaveHabitState(ctx, habits[i]); err != nil {
				return err
			}
			if after := streak.StateOf(habits[i]); before == streak.Active && after != streak.Active {
				res.Decayed++
				s.log.Debug("streak decayed",
					zap.String("habit_id", habits[i].ID),
					zap.Stringer("state", after),
					zap.Int("lost", lost),
				)
			}
		}
		res.Swept = true
		return tx.SetLastResetDate(ctx, userID, today)
	})
	if err != nil {
		return ResetResult{}, err
	}
	res.NextReset = s.clock.NextReset(loc)

	if res.Swept {
		monitoring.ResetSweeps.Inc()
		monitoring.StreaksDecayed.Add(float64(res.Decayed))
		s.log.Info("reset sweep",
			zap.String("user_id", userID),
			zap.String("date", res.LastResetDate),
			zap.Int("decayed", res.Decayed),
		)
		s.habits.afterChange(ctx, userID, loc)
	}
	return res, nil
}
