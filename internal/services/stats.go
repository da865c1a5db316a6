package services

import (
	"context"
	"time"

	"habitsync/internal/clock"
	"habitsync/internal/stats"
	"habitsync/internal/store"
)

const (
	maxStatDays   = 365
	maxStatMonths = 24
	weekDays      = 7
)

// StatsService loads a user's collections and hands them to the pure functions in
// package stats. Every "now" is taken in the user's zone.
type StatsService struct {
	store *store.Store
	clock *clock.Clock
}

func NewStatsService(st *store.Store, clk *clock.Clock) *StatsService {
	return &StatsService{store: st, clock: clk}
}

func clampRange(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

type Summary struct {
	TotalHabits      int               `json:"total_habits"`
	CompletedToday   int               `json:"completed_today"`
	CompletionRate   int               `json:"completion_rate"`
	BestStreak       int               `json:"best_streak"`
	ActiveStreaks    int               `json:"active_streaks"`
	XP               int               `json:"xp"`
	Level            int               `json:"level"`
	XPInLevel        int               `json:"xp_in_level"`
	TotalCompletions int               `json:"total_completions"`
	WeeklyRates      []stats.DailyRate `json:"weekly_rates"`
}

func (s *StatsService) Summary(ctx context.Context, userID string) (Summary, error) {
	u, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return Summary{}, err
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	total, err := s.store.CountCompletions(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	weekly, err := s.daily(ctx, userID, loc, weekDays)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		TotalHabits:      len(habits),
		CompletionRate:   stats.CompletionRate(habits),
		BestStreak:       stats.BestStreak(habits),
		ActiveStreaks:    stats.ActiveStreakCount(habits),
		XP:               u.XP,
		Level:            stats.Level(u.XP),
		XPInLevel:        stats.XPInLevel(u.XP),
		TotalCompletions: total,
		WeeklyRates:      weekly,
	}
	for _, h := range habits {
		if h.Completed {
			out.CompletedToday++
		}
	}
	return out, nil
}

// Daily returns the recorded completion rate for each of the last days, zero-filled.
func (s *StatsService) Daily(ctx context.Context, userID string, days int) ([]stats.DailyRate, error) {
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	return s.daily(ctx, userID, loc, clampRange(days, weekDays, maxStatDays))
}

func (s *StatsService) daily(ctx context.Context, userID string, loc *time.Location, days int) ([]stats.DailyRate, error) {
	today := s.clock.Today(loc)
	rows, err := s.store.ListDailyStats(ctx, userID, clock.DateString(today.AddDate(0, 0, -(days-1))))
	if err != nil {
		return nil, err
	}
	return stats.DailyCompletionRates(rows, days, today), nil
}

type Analytics struct {
	Days                int                  `json:"days"`
	Months              int                  `json:"months"`
	TimeOfDay           []stats.HourCount    `json:"time_of_day"`
	CategoryPerformance []stats.CategoryStat `json:"category_performance"`
	ProductivityScore   int                  `json:"productivity_score"`
	MonthlyTrends       []stats.MonthTrend   `json:"monthly_trends"`
	DailyGoal           *stats.GoalProgress  `json:"daily_goal"`
	MonthlyGoal         *stats.GoalProgress  `json:"monthly_goal"`
}

func (s *StatsService) Analytics(ctx context.Context, userID string, days, months int) (Analytics, error) {
	u, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return Analytics{}, err
	}
	days = clampRange(days, 30, maxStatDays)
	months = clampRange(months, 6, maxStatMonths)

	now := s.clock.Now().In(loc)
	today := clock.StartOfDay(now)
	from := today.AddDate(0, 0, -days)
	if monthStart := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, loc); monthStart.Before(from) {
		from = monthStart
	}
	// One day of slack: event dates are local to whatever zone the user had when recording.
	events, err := s.store.ListCompletions(ctx, userID, clock.DateString(from.AddDate(0, 0, -1)))
	if err != nil {
		return Analytics{}, err
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return Analytics{}, err
	}

	return Analytics{
		Days:                days,
		Months:              months,
		TimeOfDay:           stats.TimeOfDayHistogram(events, days, now),
		CategoryPerformance: stats.CategoryPerformance(events, habits, days, now),
		ProductivityScore:   stats.ProductivityScore(events, habits, days, now),
		MonthlyTrends:       stats.MonthlyTrends(events, months, now),
		DailyGoal:           stats.ComputeGoalProgress(u.DailyGoal, events, stats.GoalDaily, now),
		MonthlyGoal:         stats.ComputeGoalProgress(u.MonthlyGoal, events, stats.GoalMonthly, now),
	}, nil
}

// Calendar lays out month ("YYYY-MM", empty for the current month) in the user's zone.
func (s *StatsService) Calendar(ctx context.Context, userID, month string) (stats.CalendarMonth, error) {
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return stats.CalendarMonth{}, err
	}
	m := s.clock.Today(loc)
	if month != "" {
		m, err = time.ParseInLocation("2006-01", month, loc)
		if err != nil {
			return stats.CalendarMonth{}, invalid("month must be YYYY-MM")
		}
	}
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return stats.CalendarMonth{}, err
	}
	todos, err := s.store.ListTodos(ctx, userID)
	if err != nil {
		return stats.CalendarMonth{}, err
	}
	return stats.Calendar(habits, todos, m), nil
}

// Overview reports instance-wide totals, counting recent activity over the last week.
func (s *StatsService) Overview(ctx context.Context) (store.Overview, error) {
	since := clock.DateString(s.clock.Today(time.UTC).AddDate(0, 0, -weekDays))
	return s.store.Overview(ctx, since)
}
