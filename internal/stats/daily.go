package stats

import (
	"time"

	"habitsync/internal/clock"
	"habitsync/internal/models"
)

type DailyRate struct {
	Date           string `json:"date"`
	CompletionRate int    `json:"completion_rate"`
}

// DailyCompletionRates returns one entry per day for the trailing days ending at
// today, oldest first. Days without a recorded stat read as 0.
func DailyCompletionRates(rows []models.DailyStat, days int, today time.Time) []DailyRate {
	if days <= 0 {
		return []DailyRate{}
	}
	byDate := make(map[string]int, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r.CompletionRate
	}
	out := make([]DailyRate, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := clock.DateString(today.AddDate(0, 0, -i))
		out = append(out, DailyRate{Date: d, CompletionRate: byDate[d]})
	}
	return out
}

type CalendarDay struct {
	Date            string   `json:"date"`
	Habits          []string `json:"habits"`
	Todos           []string `json:"todos"`
	HabitsCompleted int      `json:"habits_completed"`
	TodosCompleted  int      `json:"todos_completed"`
}

type CalendarMonth struct {
	Month       string        `json:"month"`
	Days        []CalendarDay `json:"days"`
	HabitsTotal int           `json:"habits_total"`
	TodosTotal  int           `json:"todos_total"`
}

// Calendar lays out one month day by day. A habit appears on the day of its last
// completion; a todo appears on the local day it was marked done.
func Calendar(habits []models.Habit, todos []models.Todo, month time.Time) CalendarMonth {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)

	habitsOn := map[string][]string{}
	for _, h := range habits {
		if h.LastCompletedDate != nil {
			habitsOn[*h.LastCompletedDate] = append(habitsOn[*h.LastCompletedDate], h.Name)
		}
	}
	todosOn := map[string][]string{}
	for _, t := range todos {
		if t.Status == models.StatusDone && t.CompletedAt != nil {
			d := clock.DateString(t.CompletedAt.In(loc))
			todosOn[d] = append(todosOn[d], t.Title)
		}
	}

	out := CalendarMonth{
		Month:       first.Format("2006-01"),
		HabitsTotal: len(habits),
		TodosTotal:  len(todos),
	}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		key := clock.DateString(d)
		day := CalendarDay{Date: key, Habits: habitsOn[key], Todos: todosOn[key]}
		if day.Habits == nil {
			day.Habits = []string{}
		}
		if day.Todos == nil {
			day.Todos = []string{}
		}
		day.HabitsCompleted = len(day.Habits)
		day.TodosCompleted = len(day.Todos)
		out.Days = append(out.Days, day)
	}
	return out
}
