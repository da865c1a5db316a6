// Package app wires the store, services and broker from a Config.
package app

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"habitsync/internal/clock"
	"habitsync/internal/config"
	"habitsync/internal/db"
	"habitsync/internal/feed"
	"habitsync/internal/services"
	"habitsync/internal/store"
)

type App struct {
	DB     *sqlx.DB
	Clock  *clock.Clock
	Broker *feed.Broker

	Users     *services.UserService
	Habits    *services.HabitService
	Scheduler *services.Scheduler
	Todos     *services.TodoService
	Notes     *services.NoteService
	Stats     *services.StatsService
	Export    *services.ExportService
}

// Open connects to the configured database, applies migrations and builds the services.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	conn, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	enc, err := services.NewEncryptionService(cfg.Crypto.EncryptionKey, cfg.Crypto.BlindIndexKey)
	if err != nil {
		conn.Close()
		return nil, err
	}

	st := store.New(conn)
	clk := clock.New()
	broker := feed.NewBroker()
	notes := services.NewNoteService(st, clk, enc)
	habits := services.NewHabitService(st, clk, services.NewRecorder(st, clk, enc, log), notes, broker, log)

	return &App{
		DB:        conn,
		Clock:     clk,
		Broker:    broker,
		Users:     services.NewUserService(st, enc, clk, cfg.DefaultTimezone),
		Habits:    habits,
		Scheduler: services.NewScheduler(st, clk, habits, log),
		Todos:     services.NewTodoService(st, clk),
		Notes:     notes,
		Stats:     services.NewStatsService(st, clk),
		Export:    services.NewExportService(st, clk, notes, enc, habits),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
