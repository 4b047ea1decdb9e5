// Package userdb implements UserStore using BadgerHold. It manages
// accounts, per-user settings, and system-level KV in the internal area.
package userdb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"trademind/internal/common"
	"trademind/internal/models"
)

// ErrUserNotFound is returned when no account matches the lookup.
var ErrUserNotFound = fmt.Errorf("user not found")

// ErrSettingNotFound is returned when a setting key has no value.
var ErrSettingNotFound = fmt.Errorf("setting not found")

// systemUserID is the sentinel owner for system-level key-value pairs.
// The prefix cannot appear in a real user ID (IDs are UUIDs).
const systemUserID = "__system__"

// Store implements interfaces.UserStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (or creates) the internal area at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create user db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open user db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("UserDB opened")
	return &Store{db: db, logger: logger}, nil
}

// --- Accounts ---

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Get(userID, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var users []models.User
	if err := s.db.Find(&users, badgerhold.Where("Email").Eq(email)); err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	var existing models.User
	if err := s.db.Get(user.ID, &existing); err == nil {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if err := s.db.Upsert(user.ID, user); err != nil {
		return fmt.Errorf("failed to save user '%s': %w", user.ID, err)
	}
	s.logger.Debug().Str("user_id", user.ID).Msg("User saved")
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if err := s.db.Delete(userID, models.User{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	// Sweep the user's settings too
	var settings []models.UserSetting
	if err := s.db.Find(&settings, badgerhold.Where("UserID").Eq(userID)); err == nil {
		for _, st := range settings {
			_ = s.db.Delete(st.Key, models.UserSetting{})
		}
	}
	s.logger.Debug().Str("user_id", userID).Msg("User and settings deleted")
	return nil
}

// --- Per-user settings ---

func (s *Store) GetSetting(_ context.Context, userID, name string) (*models.UserSetting, error) {
	var setting models.UserSetting
	if err := s.db.Get(models.SettingKey(userID, name), &setting); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting '%s' for user '%s': %w", name, userID, err)
	}
	return &setting, nil
}

func (s *Store) SetSetting(_ context.Context, userID, name, value string) error {
	setting := &models.UserSetting{
		Key:       models.SettingKey(userID, name),
		UserID:    userID,
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	if err := s.db.Upsert(setting.Key, setting); err != nil {
		return fmt.Errorf("failed to set setting '%s' for user '%s': %w", name, userID, err)
	}
	return nil
}

func (s *Store) DeleteSetting(_ context.Context, userID, name string) error {
	err := s.db.Delete(models.SettingKey(userID, name), models.UserSetting{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete setting '%s' for user '%s': %w", name, userID, err)
	}
	return nil
}

func (s *Store) ListSettings(_ context.Context, userID string) ([]*models.UserSetting, error) {
	var settings []models.UserSetting
	if err := s.db.Find(&settings, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list settings for user '%s': %w", userID, err)
	}
	out := make([]*models.UserSetting, len(settings))
	for i := range settings {
		out[i] = &settings[i]
	}
	return out, nil
}

// --- System KV ---

func (s *Store) GetSystemKV(ctx context.Context, key string) (string, error) {
	setting, err := s.GetSetting(ctx, systemUserID, key)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *Store) SetSystemKV(ctx context.Context, key, value string) error {
	return s.SetSetting(ctx, systemUserID, key, value)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}
