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
)

const (
	defaultNoteLimit = 50
	maxNoteLimit     = 200
	maxNoteLength    = 1000
)

// NoteService keeps the reflection journal. Note text is encrypted at rest.
type NoteService struct {
	store *store.Store
	clock *clock.Clock
	enc   *EncryptionService
}

func NewNoteService(st *store.Store, clk *clock.Clock, enc *EncryptionService) *NoteService {
	return &NoteService{store: st, clock: clk, enc: enc}
}

func (s *NoteService) Add(ctx context.Context, userID, habitID, text string) (models.HabitNote, error) {
	_, loc, err := userLocation(ctx, s.store, userID)
	if err != nil {
		return models.HabitNote{}, err
	}
	h, err := s.store.GetHabit(ctx, userID, habitID)
	if err != nil {
		return models.HabitNote{}, err
	}
	return s.add(ctx, h, loc, text)
}

// cleanNote trims text and enforces the note length limit.
func cleanNote(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid("note is required")
	}
	if utf8.RuneCountInString(text) > maxNoteLength {
		return "", invalid("note must be at most %d characters", maxNoteLength)
	}
	return text, nil
}

func (s *NoteService) add(ctx context.Context, h models.Habit, loc *time.Location, text string) (models.HabitNote, error) {
	text, err := cleanNote(text)
	if err != nil {
		return models.HabitNote{}, err
	}
	now := s.clock.Now()
	n := models.HabitNote{
		UserID:    h.UserID,
		HabitID:   h.ID,
		HabitName: h.Name,
		Note:      text,
		CreatedAt: now.UTC(),
		Date:      clock.DateString(now.In(loc)),
	}
	stored := n
	if err := s.enc.EncryptNote(&stored); err != nil {
		return models.HabitNote{}, err
	}
	if err := s.store.InsertNote(ctx, &stored); err != nil {
		return models.HabitNote{}, err
	}
	n.ID = stored.ID
	return n, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// List returns notes newest first. An empty habitID lists every habit's notes.
func (s *NoteService) List(ctx context.Context, userID, habitID string, limit, offset int) ([]models.HabitNote, error) {
	if offset < 0 {
		offset = 0
	}
	notes, err := s.store.ListNotes(ctx, userID, habitID, clampLimit(limit, defaultNoteLimit, maxNoteLimit), offset)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if err := s.enc.DecryptNote(&notes[i]); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// All returns every note of the user, newest first, paging through the store.
func (s *NoteService) All(ctx context.Context, userID string) ([]models.HabitNote, error) {
	all := []models.HabitNote{}
	for offset := 0; ; offset += maxNoteLimit {
		page, err := s.List(ctx, userID, "", maxNoteLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < maxNoteLimit {
			return all, nil
		}
	}
}

type NoteDay struct {
	Date  string             `json:"date"`
	Notes []models.HabitNote `json:"notes"`
}

// ByDate groups the most recent notes by their local date, newest day first.
func (s *NoteService) ByDate(ctx context.Context, userID string, limit int) ([]NoteDay, error) {
	notes, err := s.List(ctx, userID, "", limit, 0)
	if err != nil {
		return nil, err
	}
	days := []NoteDay{}
	index := map[string]int{}
	for _, n := range notes {
		i, ok := index[n.Date]
		if !ok {
			i = len(days)
			index[n.Date] = i
			days = append(days, NoteDay{Date: n.Date})
		}
		days[i].Notes = append(days[i].Notes, n)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days, nil
}
