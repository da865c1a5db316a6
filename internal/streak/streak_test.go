package streak

import (
	"testing"

	"habitsync/internal/models"
)

func date(s string) *string { return &s }

func TestSweep(t *testing.T) {
	tests := []struct {
		name        string
		habit       models.Habit
		yesterday   string
		wantStreak  int
		wantChanged bool
	}{
		{
			name:        "completed two days ago decays",
			habit:       models.Habit{Streak: 5, LastCompletedDate: date("2024-01-10")},
			yesterday:   "2024-01-11",
			wantStreak:  0,
			wantChanged: true,
		},
		{
			name:        "completed yesterday keeps streak",
			habit:       models.Habit{Streak: 5, Completed: true, LastCompletedDate: date("2024-01-10")},
			yesterday:   "2024-01-10",
			wantStreak:  5,
			wantChanged: true,
		},
		{
			name:        "long gap decays the same as short gap",
			habit:       models.Habit{Streak: 42, LastCompletedDate: date("2023-06-01")},
			yesterday:   "2024-01-11",
			wantStreak:  0,
			wantChanged: true,
		},
		{
			name:        "streak without last completion is corrected",
			habit:       models.Habit{Streak: 3},
			yesterday:   "2024-01-11",
			wantStreak:  0,
			wantChanged: true,
		},
		{
			name:        "zero streak and not completed is untouched",
			habit:       models.Habit{Streak: 0, LastCompletedDate: date("2024-01-01")},
			yesterday:   "2024-01-11",
			wantStreak:  0,
			wantChanged: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.habit
			changed := Sweep(&h, tt.yesterday)
			if h.Streak != tt.wantStreak {
				t.Errorf("streak = %d, want %d", h.Streak, tt.wantStreak)
			}
			if h.Completed {
				t.Error("completed must be cleared by a sweep")
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func TestToggleRoundTrip(t *testing.T) {
	h := models.Habit{Streak: 4, LastCompletedDate: date("2024-01-10")}

	if xp := Toggle(&h, true, "2024-01-11"); xp != XPPerCompletion {
		t.Errorf("expected +%d xp, got %d", XPPerCompletion, xp)
	}
	if h.Streak != 5 || !h.Completed || *h.LastCompletedDate != "2024-01-11" {
		t.Fatalf("unexpected habit after complete: %+v", h)
	}

	if xp := Toggle(&h, false, "2024-01-11"); xp != -XPPerCompletion {
		t.Errorf("expected -%d xp, got %d", XPPerCompletion, xp)
	}
	if h.Streak != 4 || h.Completed {
		t.Errorf("expected streak restored to 4, got %+v", h)
	}
	if *h.LastCompletedDate != "2024-01-11" {
		t.Errorf("undo must not roll back last completed date, got %s", *h.LastCompletedDate)
	}
}

func TestToggleSameStateIsNoop(t *testing.T) {
	h := models.Habit{Streak: 2, Completed: true, LastCompletedDate: date("2024-01-11")}
	if xp := Toggle(&h, true, "2024-01-11"); xp != 0 {
		t.Errorf("expected no xp change, got %d", xp)
	}
	if h.Streak != 2 {
		t.Errorf("expected streak unchanged, got %d", h.Streak)
	}
}

func TestUncompleteFloorsAtZero(t *testing.T) {
	h := models.Habit{Streak: 0, Completed: true}
	Uncomplete(&h)
	if h.Streak != 0 {
		t.Errorf("streak went negative: %d", h.Streak)
	}
}

func TestStateOf(t *testing.T) {
	if s := StateOf(models.Habit{}); s != NeverCompleted {
		t.Errorf("expected never_completed, got %s", s)
	}
	if s := StateOf(models.Habit{Streak: 1, LastCompletedDate: date("2024-01-01")}); s != Active {
		t.Errorf("expected active, got %s", s)
	}
	if s := StateOf(models.Habit{LastCompletedDate: date("2024-01-01")}); s != Broken {
		t.Errorf("expected broken, got %s", s)
	}
}
