package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

type TodoHandler struct {
	todos *services.TodoService
	log   *zap.Logger
}

func NewTodoHandler(todos *services.TodoService, log *zap.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, log: log}
}

// List accepts filter (all, high, due_today), sort (created, priority, due_date),
// limit and offset.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.todos.List(r.Context(), mw.UserID(r.Context()), services.TodoQuery{
		Filter: q.Get("filter"),
		Sort:   q.Get("sort"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, h.log, err, "could not fetch todos")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.TodoInput
	if !decodeBody(w, r, &in, false) {
		return
	}
	todo, err := h.todos.Create(r.Context(), mw.UserID(r.Context()), in)
	if err != nil {
		writeError(w, h.log, err, "could not create todo")
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.TodoInput
	if !decodeBody(w, r, &in, false) {
		return
	}
	todo, err := h.todos.Update(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.log, err, "could not update todo")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body statusRequest
	if !decodeBody(w, r, &body, false) {
		return
	}
	res, err := h.todos.SetStatus(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, h.log, err, "could not update status")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.todos.Delete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err, "could not delete todo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
