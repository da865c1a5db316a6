package store

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"habitsync/internal/db"
	"habitsync/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.RunMigrations(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(conn)
}

func createUser(t *testing.T, s *Store, index string) models.User {
	t.Helper()
	u := models.User{Email: "enc:" + index, EmailBlindIndex: index, PasswordHash: "hash"}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func strPtr(s string) *string { return &s }

func TestUserLookupAndProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-1")

	got, err := s.GetUserByBlindIndex(ctx, "idx-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != u.ID || got.Timezone != "UTC" || got.LastResetDate != nil {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := s.GetUserByBlindIndex(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	goal, clear := 5, 0
	if err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{DisplayName: strPtr("Sam"), DailyGoal: &goal, MonthlyGoal: &clear}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	got, _ = s.GetUser(ctx, u.ID)
	if got.DisplayName == nil || *got.DisplayName != "Sam" {
		t.Errorf("display name not saved: %+v", got.DisplayName)
	}
	if got.DailyGoal == nil || *got.DailyGoal != 5 {
		t.Errorf("daily goal not saved: %+v", got.DailyGoal)
	}
	if got.MonthlyGoal != nil {
		t.Errorf("monthly goal should be cleared, got %v", *got.MonthlyGoal)
	}
}

func TestApplyXPDeltaFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-xp")

	xp, err := s.ApplyXPDelta(ctx, u.ID, 10)
	if err != nil || xp != 10 {
		t.Fatalf("expected 10, got %d (%v)", xp, err)
	}
	xp, err = s.ApplyXPDelta(ctx, u.ID, -25)
	if err != nil || xp != 0 {
		t.Fatalf("expected floor at 0, got %d (%v)", xp, err)
	}
	if _, err := s.ApplyXPDelta(ctx, "nobody", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHabitStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-h")

	h := models.Habit{UserID: u.ID, Name: "Read", Icon: "📚", Color: models.ColorBlue, Category: models.CategoryLearning}
	if err := s.InsertHabit(ctx, &h); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := s.WithTx(ctx, func(tx *Tx) error {
		locked, err := tx.GetHabitForUpdate(ctx, u.ID, h.ID)
		if err != nil {
			return err
		}
		locked.Streak = 3
		locked.Completed = true
		locked.LastCompletedDate = strPtr("2024-03-10")
		return tx.SaveHabitState(ctx, locked)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, err := s.GetHabit(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Streak != 3 || !got.Completed || got.LastCompletedDate == nil || *got.LastCompletedDate != "2024-03-10" {
		t.Errorf("state not persisted: %+v", got)
	}

	if _, err := s.GetHabit(ctx, "someone-else", h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("habit must be scoped to its owner, got %v", err)
	}
	if err := s.DeleteHabit(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteHabit(ctx, u.ID, h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-tx")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ApplyXPDelta(ctx, u.ID, 50); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := s.GetUser(ctx, u.ID)
	if got.XP != 0 {
		t.Errorf("expected rollback to keep xp 0, got %d", got.XP)
	}
}

func TestCompletionsSince(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-c")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.AddDate(0, 0, i)
		e := models.CompletionEvent{
			UserID: u.ID, HabitID: "h", HabitName: "Run", Category: models.CategoryHealth,
			CompletedAt: at, Hour: at.Hour(), Date: at.Format("2006-01-02"),
		}
		if err := s.InsertCompletion(ctx, &e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := s.ListCompletions(ctx, u.ID, "")
	if err != nil || len(all) != 5 {
		t.Fatalf("expected 5 events, got %d (%v)", len(all), err)
	}
	recent, err := s.ListCompletions(ctx, u.ID, "2024-03-04")
	if err != nil || len(recent) != 2 {
		t.Fatalf("expected 2 events since 03-04, got %d (%v)", len(recent), err)
	}
	if !recent[0].CompletedAt.Equal(base.AddDate(0, 0, 3)) {
		t.Errorf("expected oldest first, got %v", recent[0].CompletedAt)
	}
}

func TestNotesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-n")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, habit := range []string{"a", "b", "a"} {
		n := models.HabitNote{UserID: u.ID, HabitID: habit, HabitName: habit, Note: "n", CreatedAt: base.Add(time.Duration(i) * time.Hour), Date: "2024-03-01"}
		if err := s.InsertNote(ctx, &n); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	notes, err := s.ListNotes(ctx, u.ID, "", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 || !notes[0].CreatedAt.After(notes[1].CreatedAt) {
		t.Errorf("expected two notes newest first, got %+v", notes)
	}
	onlyA, _ := s.ListNotes(ctx, u.ID, "a", 50, 0)
	if len(onlyA) != 2 {
		t.Errorf("expected 2 notes for habit a, got %d", len(onlyA))
	}
}

func TestUpsertDailyStatOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-d")

	for _, done := range []int{1, 3} {
		err := s.UpsertDailyStat(ctx, models.DailyStat{
			UserID: u.ID, Date: "2024-03-01", TotalHabits: 4, CompletedHabits: done,
			CompletionRate: done * 25, RecordedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	rows, err := s.ListDailyStats(ctx, u.ID, "2024-01-01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].CompletedHabits != 3 || rows[0].CompletionRate != 75 {
		t.Errorf("expected single overwritten row, got %+v", rows)
	}
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "idx-o")
	createUser(t, s, "idx-o2")

	e := models.CompletionEvent{UserID: u.ID, HabitID: "h", HabitName: "x", Category: models.CategoryOther, CompletedAt: time.Now(), Date: "2024-03-05"}
	if err := s.InsertCompletion(ctx, &e); err != nil {
		t.Fatal(err)
	}
	o, err := s.Overview(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if o.TotalUsers != 2 || o.CompletionsSince != 1 || o.ActiveUsersSince != 1 {
		t.Errorf("unexpected overview: %+v", o)
	}
}
