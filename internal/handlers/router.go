package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"habitsync/internal/feed"
	mw "habitsync/internal/middleware"
	"habitsync/internal/monitoring"
	"habitsync/internal/services"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps is everything the router needs to serve the API.
type Deps struct {
	DB          Pinger
	Logger      *zap.Logger
	Auth        *mw.AuthMiddleware
	RateLimiter *mw.RateLimiter
	CORSOrigins []string
	Broker      *feed.Broker

	Users     *services.UserService
	Habits    *services.HabitService
	Scheduler *services.Scheduler
	Todos     *services.TodoService
	Notes     *services.NoteService
	Stats     *services.StatsService
	Export    *services.ExportService
}

func NewRouter(d Deps) http.Handler {
	monitoring.Init()

	authHandler := NewAuthHandler(d.Users, d.Auth, d.Logger)
	userHandler := NewUserHandler(d.Users, d.Logger)
	migrateHandler := NewMigrateHandler(d.Export, d.Logger)
	habitHandler := NewHabitHandler(d.Habits, d.Scheduler, d.Broker, d.Logger)
	todoHandler := NewTodoHandler(d.Todos, d.Logger)
	journalHandler := NewJournalHandler(d.Notes, d.Logger)
	dashboardHandler := NewDashboardHandler(d.Stats, d.Logger)
	progressHandler := NewProgressHandler(d.Scheduler, d.Stats, d.Logger)
	adminHandler := NewAdminHandler(d.Stats, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.ZapRequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(monitoring.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", monitoring.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			pub.Use(d.RateLimiter.Middleware)
			pub.Post("/auth/signup", authHandler.Signup)
			pub.Post("/auth/login", authHandler.Login)
		})

		api.Group(func(pr chi.Router) {
			pr.Use(d.Auth.RequireAuth)
			pr.Use(d.RateLimiter.Middleware)

			pr.Get("/me", userHandler.GetMe)
			pr.Put("/me", userHandler.UpdateMe)
			pr.Get("/me/export", migrateHandler.Export)
			pr.Post("/me/import", migrateHandler.Import)

			pr.Post("/session/start", progressHandler.StartSession)

			pr.Route("/habits", func(hr chi.Router) {
				hr.Get("/", habitHandler.List)
				hr.Post("/", habitHandler.Create)
				hr.Get("/stream", habitHandler.Stream)
				hr.Put("/{id}", habitHandler.Update)
				hr.Delete("/{id}", habitHandler.Delete)
				hr.Post("/{id}/toggle", habitHandler.Toggle)
			})

			pr.Route("/todos", func(tr chi.Router) {
				tr.Get("/", todoHandler.List)
				tr.Post("/", todoHandler.Create)
				tr.Put("/{id}", todoHandler.Update)
				tr.Patch("/{id}/status", todoHandler.SetStatus)
				tr.Delete("/{id}", todoHandler.Delete)
			})

			pr.Post("/notes", journalHandler.AddNote)
			pr.Get("/notes", journalHandler.List)
			pr.Get("/notes/by-date", journalHandler.ByDate)

			pr.Get("/stats", dashboardHandler.Stats)
			pr.Get("/stats/daily", progressHandler.Daily)
			pr.Get("/analytics", dashboardHandler.Analytics)
			pr.Get("/calendar", dashboardHandler.Calendar)

			pr.With(mw.RequireAdmin(d.Users, d.Logger)).Get("/admin/overview", adminHandler.Overview)
		})
	})

	return r
}
