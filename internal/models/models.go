package models

import "time"

type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
)

func (c Color) Valid() bool {
	switch c {
	case ColorBlue, ColorGreen, ColorPurple, ColorOrange, ColorPink:
		return true
	}
	return false
}

type Category string

const (
	CategoryHealth       Category = "Health"
	CategoryProductivity Category = "Productivity"
	CategoryLearning     Category = "Learning"
	CategoryLifestyle    Category = "Lifestyle"
	CategoryOther        Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryHealth, CategoryProductivity, CategoryLearning, CategoryLifestyle, CategoryOther}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities High < Medium < Low for sorting.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func (p Priority) Valid() bool { return p.Rank() < 3 }

type TodoStatus string

const (
	StatusTodo       TodoStatus = "todo"
	StatusInProgress TodoStatus = "inProgress"
	StatusDone       TodoStatus = "done"
)

func (s TodoStatus) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"` // Encrypted in DB
	EmailBlindIndex string    `json:"-"`     // HMAC hash for searching
	PasswordHash    string    `json:"-"`
	DisplayName     *string   `json:"display_name,omitempty"`
	XP              int       `json:"xp"`
	LastResetDate   *string   `json:"last_reset_date,omitempty"` // YYYY-MM-DD, user's local day
	Timezone        string    `json:"timezone"`
	DailyGoal       *int      `json:"daily_goal,omitempty"`
	MonthlyGoal     *int      `json:"monthly_goal,omitempty"`
	IsAdmin         bool      `json:"is_admin"`
	CreatedAt       time.Time `json:"created_at"`
}

type Habit struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"name"`
	Icon              string    `json:"icon"`
	Color             Color     `json:"color"`
	Category          Category  `json:"category"`
	Streak            int       `json:"streak"`
	Completed         bool      `json:"completed"`
	LastCompletedDate *string   `json:"last_completed_date,omitempty"` // YYYY-MM-DD, user's local day
	CreatedAt         time.Time `json:"created_at"`
}

type Todo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Priority    Priority   `json:"priority"`
	Status      TodoStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CompletionEvent is an append-only record written each time a habit is marked done.
// HabitName and Category are copied from the habit at write time.
type CompletionEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HabitID     string    `json:"habit_id"`
	HabitName   string    `json:"habit_name"`
	Category    Category  `json:"category"`
	CompletedAt time.Time `json:"completed_at"`
	Hour        int       `json:"hour"`
	Date        string    `json:"date"`
	Note        *string   `json:"note,omitempty"`
}

type DailyStat struct {
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"`
	TotalHabits     int       `json:"total_habits"`
	CompletedHabits int       `json:"completed_habits"`
	CompletionRate  int       `json:"completion_rate"`
	RecordedAt      time.Time `json:"recorded_at"`
}

type HabitNote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	HabitID   string    `json:"habit_id"`
	HabitName string    `json:"habit_name"`
	Note      string    `json:"note"` // Encrypted in DB
	CreatedAt time.Time `json:"created_at"`
	Date      string    `json:"date"`
}
