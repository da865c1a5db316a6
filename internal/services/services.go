// Package services holds the habit lifecycle: the reset scheduler, the toggle
// transaction, completion recording, and the todo, note, profile and stats flows
// built around them.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"habitsync/internal/clock"
	"habitsync/internal/models"
	"habitsync/internal/monitoring"
	"habitsync/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// userLocation loads the user and the time zone their days are counted in.
func userLocation(ctx context.Context, st *store.Store, userID string) (models.User, *time.Location, error) {
	u, err := st.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, nil, err
	}
	return u, clock.Location(u.Timezone), nil
}

// bestEffort logs a failed side write and counts it. The caller carries on.
func bestEffort(log *zap.Logger, operation string, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	monitoring.BestEffortFailures.WithLabelValues(operation).Inc()
	log.Warn(operation+" failed", append(fields, zap.Error(err))...)
}
