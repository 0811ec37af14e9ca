package store

import (
	"context"
	"errors"
	"time"

	"classwall/internal/models"
	"classwall/internal/storage"
)

// defaultTags is the initial tag vocabulary.
var defaultTags = []string{
	"伙食", "八卦", "老师", "笔记", "小道消息",
	"活动", "失物招领", "二手交易", "成绩", "其他",
}

// SeedConfig controls the accounts written on first run.
type SeedConfig struct {
	OwnerUsername string
	OwnerPassword string
	// DemoAdmin also creates a demo admin account (admin01/123456) alongside
	// the owner. Intended for development and parity testing.
	DemoAdmin bool
}

func defaultSettings(ownerUsername string) models.SystemSettings {
	years := []int{2023, 2024, 2025}
	classes := make([]int, 0, 25)
	for i := 1; i <= 25; i++ {
		classes = append(classes, i)
	}
	return models.SystemSettings{
		EnrollmentYears:   years,
		ClassNumbers:      classes,
		AllowRegistration: true,
		OwnerUsername:     ownerUsername,
	}
}

// ensureSeeded writes the initial collections if the substrate has never been
// used. Presence of the users key is the first-run marker, as elsewhere a
// registered user always exists.
func (s *Store) ensureSeeded(ctx context.Context, seed SeedConfig) error {
	_, err := s.kv.Get(ctx, storage.KeyUsers)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.NewInternalError(err)
	}

	now := s.now()
	users := []models.User{
		{
			ID:             s.newID("user"),
			Username:       seed.OwnerUsername,
			Nickname:       "站主",
			EnrollmentYear: 2024,
			ClassNumber:    1,
			Password:       seed.OwnerPassword,
			Role:           models.RoleOwner,
			CreatedAt:      now,
		},
	}
	if seed.DemoAdmin {
		users = append(users, models.User{
			ID:             s.newID("user"),
			Username:       "admin01",
			Nickname:       "管理员",
			EnrollmentYear: 2024,
			ClassNumber:    5,
			Password:       "123456",
			Role:           models.RoleAdmin,
			CreatedAt:      now.Add(-time.Hour),
		})
	}

	if err := saveList(ctx, s.kv, storage.KeyUsers, users); err != nil {
		return err
	}
	if err := saveList(ctx, s.kv, storage.KeyPosts, []models.Post{}); err != nil {
		return err
	}
	if err := saveList(ctx, s.kv, storage.KeyComments, []models.Comment{}); err != nil {
		return err
	}
	if err := saveList(ctx, s.kv, storage.KeyAnnouncements, []models.Announcement{}); err != nil {
		return err
	}
	if err := saveList(ctx, s.kv, storage.KeyTags, defaultTags); err != nil {
		return err
	}
	settings := defaultSettings(seed.OwnerUsername)
	return s.writeSettings(ctx, settings)
}
