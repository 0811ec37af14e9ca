package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"classwall/internal/models"
	"classwall/internal/storage"
)

// GetSettings returns the singleton settings record.
func (s *Store) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSettings(ctx)
}

// UpdateSettings applies a partial settings change. Owner only.
//
// Changing OwnerUsername does not touch existing accounts: the owner rule is
// evaluated only at registration time.
func (s *Store) UpdateSettings(ctx context.Context, actorID string, upd models.SettingsUpdate) (*models.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can change settings"); err != nil {
		return nil, err
	}

	settings, err := s.readSettings(ctx)
	if err != nil {
		return nil, err
	}
	if upd.EnrollmentYears != nil {
		settings.EnrollmentYears = upd.EnrollmentYears
	}
	if upd.ClassNumbers != nil {
		settings.ClassNumbers = upd.ClassNumbers
	}
	if upd.AllowRegistration != nil {
		settings.AllowRegistration = *upd.AllowRegistration
	}
	if upd.OwnerUsername != nil {
		settings.OwnerUsername = *upd.OwnerUsername
	}

	if err := s.writeSettings(ctx, *settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Store) readSettings(ctx context.Context) (*models.SystemSettings, error) {
	raw, err := s.kv.Get(ctx, storage.KeySettings)
	if errors.Is(err, storage.ErrNotFound) {
		settings := defaultSettings("")
		return &settings, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var settings models.SystemSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("decode settings: %w", err))
	}
	return &settings, nil
}

func (s *Store) writeSettings(ctx context.Context, settings models.SystemSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("encode settings: %w", err))
	}
	if err := s.kv.Set(ctx, storage.KeySettings, string(raw)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
