package store

import (
	"context"

	"classwall/internal/models"
	"classwall/internal/storage"
)

// GetTags returns the tag vocabulary in insertion order.
func (s *Store) GetTags(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[string](ctx, s.kv, storage.KeyTags)
}

// AddTag appends a new tag to the vocabulary. Owner only.
func (s *Store) AddTag(ctx context.Context, actorID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can manage tags"); err != nil {
		return err
	}
	if tag == "" {
		return models.NewValidationError("tag must not be empty")
	}

	tags, err := loadList[string](ctx, s.kv, storage.KeyTags)
	if err != nil {
		return err
	}
	if containsString(tags, tag) {
		return models.NewInvalidStateError("tag already exists")
	}
	return saveList(ctx, s.kv, storage.KeyTags, append(tags, tag))
}

// RemoveTag deletes a tag from the vocabulary. Owner only. Posts already
// carrying the tag keep it; there is no referential integrity here.
func (s *Store) RemoveTag(ctx context.Context, actorID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can manage tags"); err != nil {
		return err
	}

	tags, err := loadList[string](ctx, s.kv, storage.KeyTags)
	if err != nil {
		return err
	}
	kept := tags[:0]
	found := false
	for _, t := range tags {
		if t == tag {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return models.NewNotFoundError("tag", tag)
	}
	return saveList(ctx, s.kv, storage.KeyTags, kept)
}
