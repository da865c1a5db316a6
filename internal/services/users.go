package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"habitsync/internal/clock"
	"habitsync/internal/models"
	"habitsync/internal/stats"
	"habitsync/internal/store"
)

const (
	minPasswordLength = 8
	maxDisplayName    = 50
)

type UserService struct {
	store           *store.Store
	enc             *EncryptionService
	clock           *clock.Clock
	defaultTimezone string
}

func NewUserService(st *store.Store, enc *EncryptionService, clk *clock.Clock, defaultTimezone string) *UserService {
	return &UserService{store: st, enc: enc, clock: clk, defaultTimezone: defaultTimezone}
}

func (s *UserService) Signup(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.User{}, invalid("email is not valid")
	}
	if len(password) < minPasswordLength {
		return models.User{}, invalid("password must be at least %d characters", minPasswordLength)
	}
	if _, err := s.store.GetUserByBlindIndex(ctx, s.enc.EmailBlindIndex(email)); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Timezone:     s.defaultTimezone,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.enc.EncryptUser(&u); err != nil {
		return models.User{}, err
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return models.User{}, err
	}
	u.Email = email
	return u, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.store.GetUserByBlindIndex(ctx, s.enc.EmailBlindIndex(email))
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := s.enc.DecryptUser(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if err := s.enc.DecryptUser(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Profile is the user as shown to themselves, with the derived level and garden.
type Profile struct {
	models.User
	Level     int          `json:"level"`
	XPInLevel int          `json:"xp_in_level"`
	Garden    stats.Garden `json:"garden"`
}

func (s *UserService) Profile(ctx context.Context, id string) (Profile, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		User:      u,
		Level:     stats.Level(u.XP),
		XPInLevel: stats.XPInLevel(u.XP),
		Garden:    stats.GardenFor(u.XP),
	}, nil
}

type ProfileInput struct {
	DisplayName *string `json:"display_name"`
	Timezone    *string `json:"timezone"`
	DailyGoal   *int    `json:"daily_goal"`
	MonthlyGoal *int    `json:"monthly_goal"`
}

func (in ProfileInput) validate() (store.ProfileUpdate, error) {
	p := store.ProfileUpdate{DailyGoal: in.DailyGoal, MonthlyGoal: in.MonthlyGoal}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if utf8.RuneCountInString(name) > maxDisplayName {
			return p, invalid("display_name must be at most %d characters", maxDisplayName)
		}
		p.DisplayName = &name
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil || *in.Timezone == "" {
			return p, invalid("unknown timezone %q", *in.Timezone)
		}
		p.Timezone = in.Timezone
	}
	if (in.DailyGoal != nil && *in.DailyGoal < 0) || (in.MonthlyGoal != nil && *in.MonthlyGoal < 0) {
		return p, invalid("goals cannot be negative")
	}
	return p, nil
}

// UpdateProfile writes the given fields. A goal of 0 removes it.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (Profile, error) {
	p, err := in.validate()
	if err != nil {
		return Profile{}, err
	}
	if err := s.store.UpdateProfile(ctx, id, p); err != nil {
		return Profile{}, err
	}
	return s.Profile(ctx, id)
}

// ApplyXPDelta adds delta to the user's XP, never letting the total drop below zero.
func (s *UserService) ApplyXPDelta(ctx context.Context, id string, delta int) (int, error) {
	return s.store.ApplyXPDelta(ctx, id, delta)
}

func (s *UserService) IsAdmin(ctx context.Context, id string) (bool, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

func (s *UserService) SetAdmin(ctx context.Context, email string, admin bool) error {
	u, err := s.store.GetUserByBlindIndex(ctx, s.enc.EmailBlindIndex(email))
	if err != nil {
		return err
	}
	return s.store.SetAdmin(ctx, u.ID, admin)
}
