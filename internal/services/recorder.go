package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"habitsync/internal/clock"
	"habitsync/internal/models"
)

type CompletionWriter interface {
	InsertCompletion(ctx context.Context, e *models.CompletionEvent) error
}

// TextSealer encrypts optional free text before it is stored.
type TextSealer interface {
	EncryptText(text *string) (*string, error)
}

// Recorder appends completion events. Writes are best-effort: a failure is logged
// and never reaches the caller.
type Recorder struct {
	events CompletionWriter
	clock  *clock.Clock
	enc    TextSealer
	log    *zap.Logger
}

func NewRecorder(events CompletionWriter, clk *clock.Clock, enc TextSealer, log *zap.Logger) *Recorder {
	return &Recorder{events: events, clock: clk, enc: enc, log: log}
}

// Record stamps the event with the current instant. Hour and date are taken in loc,
// the same zone the streak logic uses for the user's days. A note that cannot be
// encrypted is dropped; the event is still written.
func (r *Recorder) Record(ctx context.Context, loc *time.Location, h models.Habit, note *string) {
	now := r.clock.Now().In(loc)
	e := models.CompletionEvent{
		UserID:      h.UserID,
		HabitID:     h.ID,
		HabitName:   h.Name,
		Category:    h.Category,
		CompletedAt: now,
		Hour:        now.Hour(),
		Date:        clock.DateString(now),
	}
	if note != nil && *note != "" {
		enc, err := r.enc.EncryptText(note)
		if err != nil {
			bestEffort(r.log, "encrypt completion note", err, zap.String("habit_id", h.ID))
		} else {
			e.Note = enc
		}
	}
	err := r.events.InsertCompletion(ctx, &e)
	bestEffort(r.log, "record completion", err, zap.String("user_id", h.UserID), zap.String("habit_id", h.ID))
}
