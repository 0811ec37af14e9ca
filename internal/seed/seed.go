// Package seed provides helpers to create demo data for the forum. These
// helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"classwall/internal/models"
	"classwall/internal/store"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much demo content the seeder generates.
type Options struct {
	Users    int
	Posts    int
	Comments int
	// Rand drives every random choice. Pass a seeded source for
	// reproducible runs; nil falls back to a time-seeded one.
	Rand *rand.Rand
}

// Seeder populates a store with demo accounts and content through the same
// operations the API uses, so every counter and snapshot stays consistent.
type Seeder struct {
	store *store.Store
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// NewSeeder creates a Seeder over the given store.
func NewSeeder(st *store.Store, opts Options) *Seeder {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Seeder{
		store: st,
		rng:   rng,
		faker: gofakeit.New(rng.Int63()),
	}
}

// Run generates users, posts, comments and likes per the options.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	tags, err := s.store.GetTags(ctx)
	if err != nil {
		return fmt.Errorf("reading tags: %w", err)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		base := s.faker.Username()
		if len(base) > 26 {
			base = base[:26]
		}
		username := fmt.Sprintf("%s%02d", base, i)
		user, err := s.store.Register(ctx, store.RegisterInput{
			Username:       username,
			Nickname:       s.faker.Name(),
			Password:       s.faker.Password(true, true, true, false, false, 10),
			EnrollmentYear: pick(s.rng, settings.EnrollmentYears),
			ClassNumber:    pick(s.rng, settings.ClassNumbers),
		})
		if err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil
	}

	visibilities := []models.Visibility{
		models.VisibilitySchool, models.VisibilitySchool, models.VisibilitySchool,
		models.VisibilityGrade, models.VisibilityClass,
	}

	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		author := users[s.rng.Intn(len(users))]
		post, err := s.store.CreatePost(ctx, store.CreatePostInput{
			AuthorID:   author.ID,
			Title:      s.faker.Sentence(5),
			Content:    s.faker.Paragraph(1, 3, 8, "\n"),
			Tag:        pick(s.rng, tags),
			Visibility: pick(s.rng, visibilities),
		})
		if err != nil {
			return fmt.Errorf("seeding post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	if len(posts) == 0 {
		return nil
	}

	for i := 0; i < opts.Comments; i++ {
		author := users[s.rng.Intn(len(users))]
		post := posts[s.rng.Intn(len(posts))]
		if _, err := s.store.CreateComment(ctx, store.CreateCommentInput{
			PostID:   post.ID,
			AuthorID: author.ID,
			Content:  s.faker.Sentence(8),
		}); err != nil {
			return fmt.Errorf("seeding comment %d: %w", i, err)
		}
	}

	// Sprinkle likes: each user likes a handful of random posts. Duplicate
	// picks are rejected by the store and simply skipped.
	for _, user := range users {
		likes := s.rng.Intn(5)
		for j := 0; j < likes; j++ {
			post := posts[s.rng.Intn(len(posts))]
			if err := s.store.LikePost(ctx, post.ID, user.ID); err != nil {
				if models.CodeOf(err) == models.CodeInvalidState {
					continue
				}
				return fmt.Errorf("seeding like: %w", err)
			}
		}
	}

	return nil
}

func pick[T any](rng *rand.Rand, list []T) T {
	return list[rng.Intn(len(list))]
}
