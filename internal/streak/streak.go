// Package streak holds the per-habit streak transitions: the day-rollover sweep and
// the user's complete / undo toggle. The functions mutate the habit in place and do
// no I/O; persisting the result is the caller's job.
package streak

import "habitsync/internal/models"

// XPPerCompletion is the XP awarded for completing a habit or todo, and taken back on undo.
const XPPerCompletion = 10

type State int

const (
	NeverCompleted State = iota
	Active
	Broken
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Broken:
		return "broken"
	}
	return "never_completed"
}

func StateOf(h models.Habit) State {
	if h.Streak > 0 {
		return Active
	}
	if h.LastCompletedDate == nil {
		return NeverCompleted
	}
	return Broken
}

// Sweep applies the day-rollover transition. yesterday is the user's previous local
// day as YYYY-MM-DD. The streak survives only when the habit was last completed
// exactly yesterday; a two-day gap and a two-hundred-day gap decay the same way.
// Completed is always cleared. Reports whether any field changed.
func Sweep(h *models.Habit, yesterday string) bool {
	changed := h.Completed
	h.Completed = false

	if h.Streak > 0 {
		if h.LastCompletedDate == nil || *h.LastCompletedDate != yesterday {
			h.Streak = 0
			changed = true
		}
	}
	if h.Streak < 0 {
		h.Streak = 0
		changed = true
	}
	return changed
}

// Complete marks the habit done for today and extends its streak.
func Complete(h *models.Habit, today string) {
	h.Streak++
	h.Completed = true
	d := today
	h.LastCompletedDate = &d
}

// Uncomplete undoes a completion. LastCompletedDate is left as it was.
func Uncomplete(h *models.Habit) {
	h.Streak--
	if h.Streak < 0 {
		h.Streak = 0
	}
	h.Completed = false
}

// Toggle moves the habit to the target completion state and returns the XP delta
// to apply to its owner. Asking for the state the habit is already in is a no-op
// and returns 0.
func Toggle(h *models.Habit, completed bool, today string) int {
	if h.Completed == completed {
		return 0
	}
	if completed {
		Complete(h, today)
		return XPPerCompletion
	}
	Uncomplete(h)
	return -XPPerCompletion
}
