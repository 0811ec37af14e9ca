package store

import (
	"context"

	"classwall/internal/models"
	"classwall/internal/storage"
)

// CreateAnnouncementInput carries the fields of a new announcement.
type CreateAnnouncementInput struct {
	Title    string
	Content  string
	ActorID  string
	IsActive bool
}

// AnnouncementUpdate is a partial announcement change; nil fields are kept.
type AnnouncementUpdate struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// GetAnnouncements returns every announcement, newest first.
func (s *Store) GetAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.Announcement](ctx, s.kv, storage.KeyAnnouncements)
}

// GetActiveAnnouncements returns announcements currently shown to readers.
func (s *Store) GetActiveAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadList[models.Announcement](ctx, s.kv, storage.KeyAnnouncements)
	if err != nil {
		return nil, err
	}
	active := make([]models.Announcement, 0)
	for _, a := range all {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

// CreateAnnouncement prepends a new announcement. Any existing non-banned
// actor may call this; API routing restricts it to the owner in practice.
func (s *Store) CreateAnnouncement(ctx context.Context, in CreateAnnouncementInput) (*models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("title and content are required")
	}
	actor, err := s.findUser(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}
	banned, err := s.isBannedLocked(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.NewUnauthorizedError("banned users cannot create announcements")
	}

	announcement := models.Announcement{
		ID:            s.newID("announcement"),
		Title:         in.Title,
		Content:       in.Content,
		CreatedAt:     s.now(),
		CreatedBy:     actor.ID,
		CreatedByName: actor.Nickname,
		IsActive:      in.IsActive,
	}

	all, err := loadList[models.Announcement](ctx, s.kv, storage.KeyAnnouncements)
	if err != nil {
		return nil, err
	}
	all = append([]models.Announcement{announcement}, all...)
	if err := saveList(ctx, s.kv, storage.KeyAnnouncements, all); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// UpdateAnnouncement applies a partial change to an announcement.
func (s *Store) UpdateAnnouncement(ctx context.Context, id string, upd AnnouncementUpdate) (*models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadList[models.Announcement](ctx, s.kv, storage.KeyAnnouncements)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if upd.Title != nil {
			all[i].Title = *upd.Title
		}
		if upd.Content != nil {
			all[i].Content = *upd.Content
		}
		if upd.IsActive != nil {
			all[i].IsActive = *upd.IsActive
		}
		if err := saveList(ctx, s.kv, storage.KeyAnnouncements, all); err != nil {
			return nil, err
		}
		a := all[i]
		return &a, nil
	}
	return nil, models.NewNotFoundError("announcement", id)
}

// DeleteAnnouncement removes an announcement outright.
func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadList[models.Announcement](ctx, s.kv, storage.KeyAnnouncements)
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, a := range all {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return models.NewNotFoundError("announcement", id)
	}
	return saveList(ctx, s.kv, storage.KeyAnnouncements, kept)
}
