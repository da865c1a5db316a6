package stats

import (
	"testing"

	"habitsync/internal/models"
)

func TestCompletionRate(t *testing.T) {
	if got := CompletionRate(nil); got != 0 {
		t.Errorf("empty: got %d, want 0", got)
	}
	habits := []models.Habit{{Completed: true}, {Completed: false}}
	if got := CompletionRate(habits); got != 50 {
		t.Errorf("got %d, want 50", got)
	}
	habits = append(habits, models.Habit{Completed: false})
	if got := CompletionRate(habits); got != 33 {
		t.Errorf("got %d, want 33", got)
	}
}

func TestBestStreak(t *testing.T) {
	if got := BestStreak(nil); got != 0 {
		t.Errorf("empty: got %d, want 0", got)
	}
	habits := []models.Habit{{Streak: 3}, {Streak: 7}, {Streak: 0}}
	if got := BestStreak(habits); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
	if got := ActiveStreakCount(habits); got != 2 {
		t.Errorf("active streaks: got %d, want 2", got)
	}
}

func TestLevel(t *testing.T) {
	if Level(0) != 1 {
		t.Errorf("level(0) = %d, want 1", Level(0))
	}
	if Level(-50) != 1 {
		t.Errorf("negative xp must floor at level 1")
	}
	prev := Level(0)
	for xp := 1; xp <= 1000; xp++ {
		l := Level(xp)
		if l < prev {
			t.Fatalf("level decreased at xp=%d: %d < %d", xp, l, prev)
		}
		prev = l
	}
	if Level(99) != 1 || Level(100) != 2 || Level(250) != 3 {
		t.Errorf("unexpected level boundaries: %d %d %d", Level(99), Level(100), Level(250))
	}
	if XPInLevel(250) != 50 {
		t.Errorf("xp in level: got %d, want 50", XPInLevel(250))
	}
}

func TestGardenFor(t *testing.T) {
	g := GardenFor(0)
	if g.Stage.Name != "Seed" || g.Next == nil || g.Next.Name != "Sprout" || g.Progress != 0 {
		t.Errorf("unexpected garden at 0 xp: %+v", g)
	}
	g = GardenFor(450)
	if g.Stage.Name != "Young Plant" || g.Progress != 50 {
		t.Errorf("unexpected garden at 450 xp: %+v", g)
	}
	g = GardenFor(5000)
	if g.Stage.Name != "Blooming Tree" || g.Next != nil || g.Progress != 100 {
		t.Errorf("unexpected garden at 5000 xp: %+v", g)
	}
}
