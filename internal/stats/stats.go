// Package stats derives dashboard and analytics numbers from already-loaded habits,
// todos, completion events and daily stats. Every function is pure, deterministic for
// its inputs (the caller passes "now"), and returns a zero value on empty input.
package stats

import (
	"math"

	"habitsync/internal/models"
)

// RateOf returns round(100 * completed / total), or 0 when total is 0.
func RateOf(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// CompletionRate is the share of habits marked completed today, 0-100.
func CompletionRate(habits []models.Habit) int {
	completed := 0
	for _, h := range habits {
		if h.Completed {
			completed++
		}
	}
	return RateOf(completed, len(habits))
}

func BestStreak(habits []models.Habit) int {
	best := 0
	for _, h := range habits {
		if h.Streak > best {
			best = h.Streak
		}
	}
	return best
}

func ActiveStreakCount(habits []models.Habit) int {
	n := 0
	for _, h := range habits {
		if h.Streak > 0 {
			n++
		}
	}
	return n
}

// Level is floor(xp/100)+1, never below 1.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/100 + 1
}

// XPInLevel is the progress inside the current level, 0-99.
func XPInLevel(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % 100
}

type Stage struct {
	Emoji   string `json:"emoji"`
	Name    string `json:"name"`
	XP      int    `json:"xp"`
	Message string `json:"message"`
}

var stages = []Stage{
	{Emoji: "🌱", Name: "Seed", XP: 0, Message: "Just getting started!"},
	{Emoji: "🌿", Name: "Sprout", XP: 100, Message: "Your habits are taking root!"},
	{Emoji: "🪴", Name: "Young Plant", XP: 300, Message: "Growing strong!"},
	{Emoji: "🌳", Name: "Tree", XP: 600, Message: "Standing tall!"},
	{Emoji: "🌸🌳", Name: "Blooming Tree", XP: 1000, Message: "In full bloom!"},
}

type Garden struct {
	Stage    Stage  `json:"stage"`
	Next     *Stage `json:"next,omitempty"`
	Progress int    `json:"progress"`
}

// GardenFor maps XP onto the garden stages and the percentage travelled toward the next one.
func GardenFor(xp int) Garden {
	idx := 0
	for i := len(stages) - 1; i >= 0; i-- {
		if xp >= stages[i].XP {
			idx = i
			break
		}
	}
	g := Garden{Stage: stages[idx], Progress: 100}
	if idx < len(stages)-1 {
		next := stages[idx+1]
		g.Next = &next
		g.Progress = int(math.Round(float64(xp-g.Stage.XP) / float64(next.XP-g.Stage.XP) * 100))
	}
	return g
}
