package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"classwall/internal/models"
	"classwall/internal/storage"
)

// SetCurrentUser persists the session user under the session key. A nil user
// clears the session.
func (s *Store) SetCurrentUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		if err := s.kv.Remove(ctx, storage.KeyCurrentUser); err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("encode session user: %w", err))
	}
	if err := s.kv.Set(ctx, storage.KeyCurrentUser, string(raw)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetCurrentUser returns the session user, or nil when no session exists or
// the stored user has since been banned. The stored record is a snapshot
// taken at login and may lag behind later profile edits.
func (s *Store) GetCurrentUser(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, storage.KeyCurrentUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("decode session user: %w", err))
	}

	banned, err := s.isBannedLocked(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, nil
	}
	return &user, nil
}

// ClearCurrentUser drops the persisted session.
func (s *Store) ClearCurrentUser(ctx context.Context) error {
	return s.SetCurrentUser(ctx, nil)
}
