package handlers

import (
	"habitsync/internal/models"
	"habitsync/internal/services"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type noteRequest struct {
	HabitID string `json:"habit_id"`
	Note    string `json:"note"`
}

type statusRequest struct {
	Status models.TodoStatus `json:"status"`
}

type habitListResponse struct {
	Habits []models.Habit       `json:"habits"`
	Reset  services.ResetResult `json:"reset"`
}
