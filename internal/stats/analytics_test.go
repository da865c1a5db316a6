package stats

import (
	"testing"
	"time"

	"habitsync/internal/models"
)

var now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func event(at time.Time, cat models.Category) models.CompletionEvent {
	return models.CompletionEvent{
		HabitID:     "h1",
		Category:    cat,
		CompletedAt: at,
		Hour:        at.Hour(),
		Date:        at.Format("2006-01-02"),
	}
}

func TestTimeOfDayHistogram(t *testing.T) {
	events := []models.CompletionEvent{
		event(now.Add(-2*time.Hour), models.CategoryHealth),  // 10:00
		event(now.Add(-26*time.Hour), models.CategoryHealth), // 10:00 the day before
		event(now.Add(-1*time.Hour), models.CategoryHealth),  // 11:00
		event(now.AddDate(0, 0, -40), models.CategoryHealth), // outside window
	}
	hist := TimeOfDayHistogram(events, 30, now)
	if len(hist) != 24 {
		t.Fatalf("expected 24 bins, got %d", len(hist))
	}
	if hist[10].Count != 2 || hist[11].Count != 1 {
		t.Errorf("unexpected bins: 10=%d 11=%d", hist[10].Count, hist[11].Count)
	}
	total := 0
	for i, b := range hist {
		if b.Hour != i {
			t.Errorf("bin %d labelled %d", i, b.Hour)
		}
		total += b.Count
	}
	if total != 3 {
		t.Errorf("expected 3 events in window, got %d", total)
	}
}

func TestCategoryPerformanceCapsAt100(t *testing.T) {
	habits := []models.Habit{
		{ID: "a", Category: models.CategoryHealth},
		{ID: "b", Category: models.CategoryHealth},
	}
	var events []models.CompletionEvent
	for i := 0; i < 25; i++ {
		events = append(events, event(now.Add(-time.Duration(i)*time.Hour), models.CategoryHealth))
	}
	got := CategoryPerformance(events, habits, 10, now)
	if len(got) != 1 {
		t.Fatalf("expected one category, got %d", len(got))
	}
	if got[0].Percentage != 100 {
		t.Errorf("percentage = %d, want 100 (capped)", got[0].Percentage)
	}
	if got[0].Total != 20 || got[0].Completed != 25 {
		t.Errorf("unexpected totals: %+v", got[0])
	}
}

func TestCategoryPerformanceOrdering(t *testing.T) {
	habits := []models.Habit{{Category: models.CategoryLearning}, {Category: models.CategoryHealth}}
	events := []models.CompletionEvent{
		event(now.Add(-time.Hour), models.CategoryLearning),
		event(now.Add(-time.Hour), models.CategoryHealth),
		event(now.Add(-time.Hour), ""),
	}
	got := CategoryPerformance(events, habits, 10, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(got))
	}
	if got[0].Category != models.CategoryHealth || got[1].Category != models.CategoryLearning || got[2].Category != models.CategoryOther {
		t.Errorf("unexpected order: %v %v %v", got[0].Category, got[1].Category, got[2].Category)
	}
	if got[2].Percentage != 0 {
		t.Errorf("category without habits should report 0%%, got %d", got[2].Percentage)
	}
	if got[0].Percentage != 10 {
		t.Errorf("expected 10%% for one completion of one habit over 10 days, got %d", got[0].Percentage)
	}
}

func TestProductivityScoreEmpty(t *testing.T) {
	if got := ProductivityScore(nil, nil, 30, now); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if got := ProductivityScore(nil, nil, 0, now); got != 0 {
		t.Errorf("zero-day window: got %d, want 0", got)
	}
}

func TestProductivityScorePerfectConsistency(t *testing.T) {
	habits := []models.Habit{{Streak: 10, Category: models.CategoryHealth}}
	var events []models.CompletionEvent
	for d := 0; d < 10; d++ {
		// One completion per day at a different hour each day keeps variance low.
		at := time.Date(2024, 1, 15-d, 8+d, 0, 0, 0, time.UTC)
		events = append(events, event(at, models.CategoryHealth))
	}
	got := ProductivityScore(events, habits, 10, now)
	// consistency 100, completion 100, streak 100, distribution ~100
	if got < 99 || got > 100 {
		t.Errorf("expected score near 100, got %d", got)
	}
}

func TestProductivityScoreStreakOnly(t *testing.T) {
	habits := []models.Habit{{Streak: 4}, {Streak: 0}}
	// avg 2 / max 4 = 50 streak strength, weighted 20% => 10
	if got := ProductivityScore(nil, habits, 30, now); got != 10 {
		t.Errorf("got %d, want 10", got)
	}
}

func TestMonthlyTrends(t *testing.T) {
	events := []models.CompletionEvent{
		event(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ""),
		event(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), ""),
		event(time.Date(2023, 12, 15, 9, 0, 0, 0, time.UTC), ""),
		event(time.Date(2023, 10, 1, 9, 0, 0, 0, time.UTC), ""),
	}
	got := MonthlyTrends(events, 3, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 months, got %d", len(got))
	}
	want := []MonthTrend{
		{Month: "Nov 2023", Completed: 0, TotalDays: 30},
		{Month: "Dec 2023", Completed: 1, TotalDays: 31},
		{Month: "Jan 2024", Completed: 2, TotalDays: 31},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(MonthlyTrends(events, 0, now)) != 0 {
		t.Error("expected empty result for zero months")
	}
}

func TestGoalProgress(t *testing.T) {
	if got := ComputeGoalProgress(nil, nil, GoalDaily, now); got != nil {
		t.Errorf("no goal: got %+v, want nil", got)
	}
	zero := 0
	if got := ComputeGoalProgress(&zero, nil, GoalDaily, now); got != nil {
		t.Errorf("zero goal: got %+v, want nil", got)
	}

	events := []models.CompletionEvent{
		event(now.Add(-time.Hour), ""),
		event(now.Add(-2*time.Hour), ""),
		event(now.Add(-3*time.Hour), ""),
		event(now.AddDate(0, 0, -3), ""),
	}
	goal := 2
	daily := ComputeGoalProgress(&goal, events, GoalDaily, now)
	if daily == nil || daily.Current != 2 || daily.Percentage != 100 {
		t.Errorf("daily: got %+v, want current 2 (capped), 100%%", daily)
	}

	monthlyGoal := 8
	monthly := ComputeGoalProgress(&monthlyGoal, events, GoalMonthly, now)
	if monthly == nil || monthly.Current != 4 || monthly.Percentage != 50 {
		t.Errorf("monthly: got %+v, want current 4, 50%%", monthly)
	}
}

func TestDailyCompletionRates(t *testing.T) {
	rows := []models.DailyStat{
		{Date: "2024-01-15", CompletionRate: 80},
		{Date: "2024-01-13", CompletionRate: 40},
	}
	got := DailyCompletionRates(rows, 3, now)
	want := []DailyRate{{"2024-01-13", 40}, {"2024-01-14", 0}, {"2024-01-15", 80}}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCalendar(t *testing.T) {
	d := "2024-02-10"
	done := time.Date(2024, 2, 11, 1, 0, 0, 0, time.UTC)
	habits := []models.Habit{{Name: "Read", LastCompletedDate: &d}, {Name: "Run"}}
	todos := []models.Todo{
		{Title: "Taxes", Status: models.StatusDone, CompletedAt: &done},
		{Title: "Laundry", Status: models.StatusTodo},
	}
	cal := Calendar(habits, todos, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))
	if cal.Month != "2024-02" || len(cal.Days) != 29 {
		t.Fatalf("unexpected month layout: %s with %d days", cal.Month, len(cal.Days))
	}
	if cal.Days[9].HabitsCompleted != 1 || cal.Days[9].Habits[0] != "Read" {
		t.Errorf("expected Read on Feb 10, got %+v", cal.Days[9])
	}
	if cal.Days[10].TodosCompleted != 1 || cal.Days[10].Todos[0] != "Taxes" {
		t.Errorf("expected Taxes on Feb 11, got %+v", cal.Days[10])
	}
	if cal.HabitsTotal != 2 || cal.TodosTotal != 2 {
		t.Errorf("unexpected totals: %+v", cal)
	}
}
