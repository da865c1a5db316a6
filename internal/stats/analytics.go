package stats

import (
	"math"
	"sort"
	"time"

	"habitsync/internal/clock"
	"habitsync/internal/models"
)

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type CategoryStat struct {
	Category   models.Category `json:"category"`
	Completed  int             `json:"completed"`
	Total      int             `json:"total"`
	Percentage int             `json:"percentage"`
}

type MonthTrend struct {
	Month     string `json:"month"`
	Completed int    `json:"completed"`
	TotalDays int    `json:"total_days"`
}

type GoalType string

const (
	GoalDaily   GoalType = "daily"
	GoalMonthly GoalType = "monthly"
)

type GoalProgress struct {
	Goal       int `json:"goal"`
	Current    int `json:"current"`
	Percentage int `json:"percentage"`
}

// since keeps the events completed at or after now minus the given number of days.
func since(events []models.CompletionEvent, now time.Time, days int) []models.CompletionEvent {
	cutoff := now.AddDate(0, 0, -days)
	out := make([]models.CompletionEvent, 0, len(events))
	for _, e := range events {
		if !e.CompletedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

func eventHour(e models.CompletionEvent) int {
	if e.Hour >= 0 && e.Hour < 24 {
		return e.Hour
	}
	return e.CompletedAt.Hour()
}

// TimeOfDayHistogram buckets the trailing window's events into 24 hourly bins by their stored hour.
func TimeOfDayHistogram(events []models.CompletionEvent, days int, now time.Time) []HourCount {
	out := make([]HourCount, 24)
	for h := range out {
		out[h].Hour = h
	}
	if days <= 0 {
		return out
	}
	for _, e := range since(events, now, days) {
		out[eventHour(e)].Count++
	}
	return out
}

// CategoryPerformance compares completions per category against an ideal of every
// habit in that category being completed every day of the window. Only categories
// with at least one completion in the window are reported.
func CategoryPerformance(events []models.CompletionEvent, habits []models.Habit, days int, now time.Time) []CategoryStat {
	if days <= 0 {
		return []CategoryStat{}
	}
	completed := map[models.Category]int{}
	for _, e := range since(events, now, days) {
		c := e.Category
		if c == "" {
			c = models.CategoryOther
		}
		completed[c]++
	}
	habitsIn := map[models.Category]int{}
	for _, h := range habits {
		c := h.Category
		if c == "" {
			c = models.CategoryOther
		}
		habitsIn[c]++
	}

	keys := make([]models.Category, 0, len(completed))
	for c := range completed {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		return categoryRank(keys[i]) < categoryRank(keys[j]) || (categoryRank(keys[i]) == categoryRank(keys[j]) && keys[i] < keys[j])
	})

	out := make([]CategoryStat, 0, len(keys))
	for _, c := range keys {
		expected := habitsIn[c] * days
		pct := RateOf(completed[c], expected)
		if pct > 100 {
			pct = 100
		}
		out = append(out, CategoryStat{Category: c, Completed: completed[c], Total: expected, Percentage: pct})
	}
	return out
}

func categoryRank(c models.Category) int {
	for i, k := range models.Categories {
		if k == c {
			return i
		}
	}
	return len(models.Categories)
}

const (
	weightConsistency  = 0.40
	weightCompletion   = 0.30
	weightStreak       = 0.20
	weightDistribution = 0.10
)

// ProductivityScore is a 0-100 composite of consistency (days with any completion),
// completion rate (average daily completions per habit), streak strength (average
// streak over best streak) and time-of-day balance (low hourly variance). With no
// completions in the window the balance term contributes nothing.
func ProductivityScore(events []models.CompletionEvent, habits []models.Habit, days int, now time.Time) int {
	if days <= 0 {
		return 0
	}
	window := since(events, now, days)

	activeDays := map[string]struct{}{}
	for _, e := range window {
		d := e.Date
		if d == "" {
			d = clock.DateString(e.CompletedAt)
		}
		activeDays[d] = struct{}{}
	}
	consistency := math.Min(100, float64(len(activeDays))/float64(days)*100)

	completion := 0.0
	if len(habits) > 0 {
		avgDaily := float64(len(window)) / float64(days)
		completion = math.Min(100, avgDaily/float64(len(habits))*100)
	}

	streakScore := 0.0
	if best := BestStreak(habits); best > 0 {
		sum := 0
		for _, h := range habits {
			sum += h.Streak
		}
		avg := float64(sum) / float64(len(habits))
		streakScore = math.Min(100, avg/float64(best)*100)
	}

	distribution := 0.0
	if len(window) > 0 {
		hist := TimeOfDayHistogram(window, days, now)
		counts := make([]float64, len(hist))
		for i, h := range hist {
			counts[i] = float64(h.Count)
		}
		distribution = math.Max(0, 100-variance(counts)/10)
	}

	score := int(math.Round(consistency*weightConsistency +
		completion*weightCompletion +
		streakScore*weightStreak +
		distribution*weightDistribution))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sq := 0.0
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return sq / float64(len(values))
}

// MonthlyTrends counts events in each of the trailing calendar months, oldest first.
// Month bounds are taken in now's location and are inclusive.
func MonthlyTrends(events []models.CompletionEvent, months int, now time.Time) []MonthTrend {
	if months <= 0 {
		return []MonthTrend{}
	}
	loc := now.Location()
	out := make([]MonthTrend, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
		n := 0
		for _, e := range events {
			if !e.CompletedAt.Before(start) && !e.CompletedAt.After(end) {
				n++
			}
		}
		out = append(out, MonthTrend{
			Month:     start.Format("Jan 2006"),
			Completed: n,
			TotalDays: end.Day(),
		})
	}
	return out
}

// ComputeGoalProgress measures events against a daily or monthly goal. A missing or
// non-positive goal means no goal and yields nil. For daily goals the current count is
// capped at the goal.
func ComputeGoalProgress(goal *int, events []models.CompletionEvent, kind GoalType, now time.Time) *GoalProgress {
	if goal == nil || *goal <= 0 {
		return nil
	}
	var start time.Time
	switch kind {
	case GoalDaily:
		start = clock.StartOfDay(now)
	case GoalMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return nil
	}
	current := 0
	for _, e := range events {
		if !e.CompletedAt.Before(start) {
			current++
		}
	}
	pct := RateOf(current, *goal)
	if pct > 100 {
		pct = 100
	}
	if kind == GoalDaily && current > *goal {
		current = *goal
	}
	return &GoalProgress{Goal: *goal, Current: current, Percentage: pct}
}
