package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"habitsync/internal/clock"
	"habitsync/internal/models"
	"habitsync/internal/store"
	"habitsync/internal/streak"
)

const (
	maxTodoTitle     = 200
	defaultTodoLimit = 50
	maxTodoLimit     = 200
)

const (
	FilterAll      = "all"
	FilterHigh     = "high"
	FilterDueToday = "due_today"

	SortCreated  = "created"
	SortPriority = "priority"
	SortDueDate  = "due_date"
)

type TodoService struct {
	store *store.Store
	clock *clock.Clock
}

func NewTodoService(st *store.Store, clk *clock.Clock) *TodoService {
	return &TodoService{store: st, clock: clk}
}

// TodoInput carries the editable todo fields. DueDate accepts YYYY-MM-DD (midnight
// in the user's zone) or RFC3339; an empty string clears it.
type TodoInput struct {
	Title    *string          `json:"title"`
	Priority *models.Priority `json:"priority"`
	DueDate  *string          `json:"due_date"`
}

func parseDue(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := clock.ParseDate(s, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, invalid("due_date must be YYYY-MM-DD or RFC3339")
	}
	return &t, nil
}

func (in TodoInput) apply(t *models.Todo, loc *time.Location) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return invalid("title is required")
		}
		if utf8.RuneCountInString(title) > maxTodoTitle {
			return invalid("title must be at most %d characters", maxTodoTitle)
		}
		t.Title = title
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return invalid("unknown priority %q", *in.Priority)
		}
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		due, err := parseDue(*in.DueDate, loc)
		if err != nil {
			return err
		}
		t.DueDate = due
	}
	return nil
}

func (s *TodoService) Create(ctx context.Context, userID string, in TodoInput) (models.Todo, error) {
	if in.Title == nil {
		return models.Todo{}, invalid("title is required")
	}
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return models.Todo{}, err
	}
	t := models.Todo{
		UserID:    userID,
		Priority:  models.PriorityMedium,
		Status:    models.StatusTodo,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := in.apply(&t, loc); err != nil {
		return models.Todo{}, err
	}
	if err := s.store.InsertTodo(ctx, &t); err != nil {
		return models.Todo{}, err
	}
	return t, nil
}

func (s *TodoService) Update(ctx context.Context, userID, id string, in TodoInput) (models.Todo, error) {
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return models.Todo{}, err
	}
	t, err := s.store.GetTodo(ctx, userID, id)
	if err != nil {
		return models.Todo{}, err
	}
	if err := in.apply(&t, loc); err != nil {
		return models.Todo{}, err
	}
	if err := s.store.UpdateTodoDetails(ctx, t); err != nil {
		return models.Todo{}, err
	}
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteTodo(ctx, userID, id)
}

type TodoStatusResult struct {
	Todo    models.Todo `json:"todo"`
	XP      int         `json:"xp"`
	Changed bool        `json:"changed"`
}

// SetStatus moves a todo through todo / inProgress / done. Entering done stamps
// completed_at and awards XP; leaving done clears the stamp and takes the XP back.
func (s *TodoService) SetStatus(ctx context.Context, userID, id string, status models.TodoStatus) (TodoStatusResult, error) {
	if !status.Valid() {
		return TodoStatusResult{}, invalid("unknown status %q", status)
	}
	var res TodoStatusResult
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		res.XP = u.XP

		t, err := tx.GetTodoForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		res.Todo = t
		if t.Status == status {
			return nil
		}

		delta := 0
		switch {
		case status == models.StatusDone:
			now := s.clock.Now().UTC()
			t.CompletedAt = &now
			delta = streak.XPPerCompletion
		case t.Status == models.StatusDone:
			t.CompletedAt = nil
			delta = -streak.XPPerCompletion
		}
		t.Status = status
		if err := tx.SaveTodoStatus(ctx, t); err != nil {
			return err
		}
		if delta != 0 {
			xp, err := tx.ApplyXPDelta(ctx, userID, delta)
			if err != nil {
				return err
			}
			res.XP = xp
		}
		res.Todo = t
		res.Changed = true
		return nil
	})
	if err != nil {
		return TodoStatusResult{}, err
	}
	return res, nil
}

type TodoQuery struct {
	Filter string
	Sort   string
	Limit  int
	Offset int
}

type TodoPage struct {
	Todos []models.Todo `json:"todos"`
	Total int           `json:"total"`
}

// List filters and sorts the user's todos, then returns one page. Total counts the
// filtered set before paging.
func (s *TodoService) List(ctx context.Context, userID string, q TodoQuery) (TodoPage, error) {
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return TodoPage{}, err
	}
	todos, err := s.store.ListTodos(ctx, userID)
	if err != nil {
		return TodoPage{}, err
	}

	filtered := todos[:0]
	today := s.clock.Today(loc)
	for _, t := range todos {
		switch q.Filter {
		case "", FilterAll:
		case FilterHigh:
			if t.Priority != models.PriorityHigh {
				continue
			}
		case FilterDueToday:
			if t.DueDate == nil || !clock.IsSameDay(t.DueDate.In(loc), today) {
				continue
			}
		default:
			return TodoPage{}, invalid("unknown filter %q", q.Filter)
		}
		filtered = append(filtered, t)
	}

	switch q.Sort {
	case "", SortCreated:
	case SortPriority:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Priority.Rank() < filtered[j].Priority.Rank()
		})
	case SortDueDate:
		sort.SliceStable(filtered, func(i, j int) bool {
			a, b := filtered[i].DueDate, filtered[j].DueDate
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return a.Before(*b)
		})
	default:
		return TodoPage{}, invalid("unknown sort %q", q.Sort)
	}

	page := TodoPage{Total: len(filtered), Todos: []models.Todo{}}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return page, nil
	}
	end := offset + clampLimit(q.Limit, defaultTodoLimit, maxTodoLimit)
	if end > len(filtered) {
		end = len(filtered)
	}
	page.Todos = filtered[offset:end]
	return page, nil
}
