package store

import (
	"context"
	"strings"

	"classwall/internal/models"
	"classwall/internal/storage"
)

// SearchParams narrows the post feed. Zero values mean "no filter". The
// explicit Visibility filter is applied after the permission filter, so it
// can only narrow results, never widen access.
type SearchParams struct {
	Keyword        string
	Tag            string
	Visibility     models.Visibility
	CurrentUser    *models.User
	IncludeDeleted bool
}

// SearchPosts runs the read-side filter pipeline over the feed. Result order
// is the stored order (newest first); filtering never re-sorts.
func (s *Store) SearchPosts(ctx context.Context, params SearchParams) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return nil, err
	}

	out := make([]models.Post, 0, len(posts))
	keyword := strings.ToLower(params.Keyword)
	for _, p := range posts {
		if p.IsDeleted && !params.IncludeDeleted {
			continue
		}
		if !visibleTo(&p, params.CurrentUser) {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(p.Title), keyword) &&
			!strings.Contains(strings.ToLower(p.Content), keyword) {
			continue
		}
		if params.Tag != "" && p.Tag != params.Tag {
			continue
		}
		if params.Visibility != "" && p.Visibility != params.Visibility {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// visibleTo implements the permission filter: anonymous readers see only
// school-wide posts; grade and class posts require a matching enrollment year
// (and class number) against the post's author snapshot.
func visibleTo(p *models.Post, viewer *models.User) bool {
	if viewer == nil {
		return p.Visibility == models.VisibilitySchool
	}
	switch p.Visibility {
	case models.VisibilityGrade:
		return p.AuthorYear == viewer.EnrollmentYear
	case models.VisibilityClass:
		return p.AuthorYear == viewer.EnrollmentYear && p.AuthorClass == viewer.ClassNumber
	default:
		return true
	}
}
