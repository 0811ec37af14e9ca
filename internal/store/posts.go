package store

import (
	"context"

	"classwall/internal/models"
	"classwall/internal/observability"
	"classwall/internal/storage"
)

// CreatePostInput carries the caller-supplied fields of a new post. Author
// snapshot fields are derived from the author record, not accepted from the
// caller.
type CreatePostInput struct {
	AuthorID   string
	Title      string
	Content    string
	Images     []string
	Tag        string
	Visibility models.Visibility
}

// CreatePost publishes a new post at the head of the feed and increments the
// author's post counter. Banned authors are rejected.
func (s *Store) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("title and content are required")
	}
	switch in.Visibility {
	case models.VisibilitySchool, models.VisibilityGrade, models.VisibilityClass:
	default:
		return nil, models.NewValidationError("visibility must be school, grade or class")
	}

	tags, err := loadList[string](ctx, s.kv, storage.KeyTags)
	if err != nil {
		return nil, err
	}
	if !containsString(tags, in.Tag) {
		return nil, models.NewValidationError("unknown tag")
	}

	author, err := s.findUser(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	banned, err := s.isBannedLocked(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.NewUnauthorizedError("banned users cannot post")
	}

	post := models.Post{
		ID:           s.newID("post"),
		AuthorID:     author.ID,
		AuthorName:   author.Nickname,
		AuthorAvatar: author.Avatar,
		AuthorYear:   author.EnrollmentYear,
		AuthorClass:  author.ClassNumber,
		Title:        in.Title,
		Content:      in.Content,
		Images:       in.Images,
		Tag:          in.Tag,
		Visibility:   in.Visibility,
		CreatedAt:    s.now(),
		LikedBy:      []string{},
	}
	if post.Images == nil {
		post.Images = []string{}
	}

	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return nil, err
	}
	// Most-recent-first ordering comes from prepending here; search never
	// re-sorts.
	posts = append([]models.Post{post}, posts...)
	if err := saveList(ctx, s.kv, storage.KeyPosts, posts); err != nil {
		return nil, err
	}

	if _, err := s.mutateUser(ctx, author.ID, func(u *models.User) {
		u.PostCount++
	}); err != nil {
		return nil, err
	}

	s.postLog.LogMutation(ctx, "create", map[string]any{"post_id": post.ID, "author_id": author.ID})
	observability.RecordStoreOp("posts", "create", nil)
	return &post, nil
}

// GetPosts returns every post, newest first, including soft-deleted ones.
func (s *Store) GetPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.Post](ctx, s.kv, storage.KeyPosts)
}

// GetPostByID returns the post with the given id, deleted or not.
func (s *Store) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findPost(ctx, id)
}

// GetPostsByAuthor returns the author's non-deleted posts, newest first.
func (s *Store) GetPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0)
	for _, p := range posts {
		if p.AuthorID == authorID && !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeletePostByAdmin soft-deletes any post. Owner or admin.
func (s *Store) DeletePostByAdmin(ctx context.Context, postID, actorID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	if err := s.softDeletePost(ctx, postID, actorID, reason); err != nil {
		return err
	}
	observability.ModerationActions.WithLabelValues("delete_post").Inc()
	return nil
}

// DeletePostByUser soft-deletes the caller's own post.
func (s *Store) DeletePostByUser(ctx context.Context, postID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewUnauthorizedError("you can only delete your own posts")
	}
	return s.softDeletePost(ctx, postID, userID, "removed by author")
}

// softDeletePost marks the post deleted and decrements the author's post
// counter. Already-deleted posts are rejected so the counter is adjusted at
// most once per deletion. Callers hold the store lock.
func (s *Store) softDeletePost(ctx context.Context, postID, deletedBy, reason string) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.IsDeleted {
		return models.NewInvalidStateError("post is already deleted")
	}

	now := s.now()
	if _, err := s.mutatePost(ctx, postID, func(p *models.Post) {
		p.IsDeleted = true
		p.DeletedAt = &now
		p.DeletedBy = deletedBy
		p.DeleteReason = reason
	}); err != nil {
		return err
	}

	// The author may already be gone (moderation after account deletion
	// races are impossible here, but the original tolerated a missing
	// author and so do we).
	if _, err := s.mutateUser(ctx, post.AuthorID, func(u *models.User) {
		u.PostCount = max(0, u.PostCount-1)
	}); err != nil && models.CodeOf(err) != models.CodeNotFound {
		return err
	}

	s.postLog.LogMutation(ctx, "soft_delete", map[string]any{"post_id": postID, "deleted_by": deletedBy})
	return nil
}

// RestorePost clears a post's soft-delete marker and re-increments the
// author's post counter. Owner only.
func (s *Store) RestorePost(ctx context.Context, postID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can restore posts"); err != nil {
		return err
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsDeleted {
		return models.NewInvalidStateError("post is not deleted")
	}

	if _, err := s.mutatePost(ctx, postID, func(p *models.Post) {
		p.IsDeleted = false
		p.DeletedAt = nil
		p.DeletedBy = ""
		p.DeleteReason = ""
	}); err != nil {
		return err
	}
	if _, err := s.mutateUser(ctx, post.AuthorID, func(u *models.User) {
		u.PostCount++
	}); err != nil && models.CodeOf(err) != models.CodeNotFound {
		return err
	}

	s.postLog.LogMutation(ctx, "restore", map[string]any{"post_id": postID, "actor_id": actorID})
	observability.ModerationActions.WithLabelValues("restore_post").Inc()
	return nil
}

// PermanentlyDeletePost removes a post and its comments outright. Owner only.
func (s *Store) PermanentlyDeletePost(ctx context.Context, postID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can permanently delete posts"); err != nil {
		return err
	}
	if err := s.hardDeletePost(ctx, postID); err != nil {
		return err
	}
	observability.ModerationActions.WithLabelValues("purge_post").Inc()
	return nil
}

// hardDeletePost removes the post and every comment referencing it. If the
// post was still live its author's post counter is decremented, keeping the
// counter equal to the author's live posts; soft-deleted posts were already
// counted out. Callers hold the store lock.
func (s *Store) hardDeletePost(ctx context.Context, postID string) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}

	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return err
	}
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	if err := saveList(ctx, s.kv, storage.KeyPosts, kept); err != nil {
		return err
	}

	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return err
	}
	keptComments := comments[:0]
	for _, c := range comments {
		if c.PostID != postID {
			keptComments = append(keptComments, c)
		}
	}
	if err := saveList(ctx, s.kv, storage.KeyComments, keptComments); err != nil {
		return err
	}

	if !post.IsDeleted {
		if _, err := s.mutateUser(ctx, post.AuthorID, func(u *models.User) {
			u.PostCount = max(0, u.PostCount-1)
		}); err != nil && models.CodeOf(err) != models.CodeNotFound {
			return err
		}
	}

	s.postLog.LogMutation(ctx, "hard_delete", map[string]any{"post_id": postID})
	return nil
}

// LikePost records a like. Each user counts at most once; soft-deleted posts
// cannot be liked.
func (s *Store) LikePost(ctx context.Context, postID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.IsDeleted {
		return models.NewInvalidStateError("post is deleted")
	}
	if post.HasLiker(userID) {
		return models.NewInvalidStateError("already liked")
	}

	if _, err := s.mutatePost(ctx, postID, func(p *models.Post) {
		p.LikedBy = append(p.LikedBy, userID)
		p.Likes++
	}); err != nil {
		return err
	}
	if _, err := s.mutateUser(ctx, post.AuthorID, func(u *models.User) {
		u.LikeCount++
	}); err != nil && models.CodeOf(err) != models.CodeNotFound {
		return err
	}
	observability.RecordStoreOp("posts", "like", nil)
	return nil
}

// UnlikePost withdraws a like previously recorded for the user.
func (s *Store) UnlikePost(ctx context.Context, postID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if !post.HasLiker(userID) {
		return models.NewInvalidStateError("not liked")
	}

	if _, err := s.mutatePost(ctx, postID, func(p *models.Post) {
		kept := p.LikedBy[:0]
		for _, id := range p.LikedBy {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.LikedBy = kept
		p.Likes = max(0, p.Likes-1)
	}); err != nil {
		return err
	}
	if _, err := s.mutateUser(ctx, post.AuthorID, func(u *models.User) {
		u.LikeCount = max(0, u.LikeCount-1)
	}); err != nil && models.CodeOf(err) != models.CodeNotFound {
		return err
	}
	observability.RecordStoreOp("posts", "unlike", nil)
	return nil
}

// IncrementViews bumps the post's view counter. Every call counts; there is
// no per-user dedup. Soft-deleted posts are left untouched.
func (s *Store) IncrementViews(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.IsDeleted {
		return nil
	}
	_, err = s.mutatePost(ctx, postID, func(p *models.Post) {
		p.Views++
	})
	return err
}

// findPost returns the post by id. Callers hold the store lock.
func (s *Store) findPost(ctx context.Context, id string) (*models.Post, error) {
	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			p := posts[i]
			return &p, nil
		}
	}
	return nil, models.NewNotFoundError("post", id)
}

// mutatePost applies fn to the stored post record and writes the collection
// back. Callers hold the store lock.
func (s *Store) mutatePost(ctx context.Context, id string, fn func(*models.Post)) (*models.Post, error) {
	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			fn(&posts[i])
			if err := saveList(ctx, s.kv, storage.KeyPosts, posts); err != nil {
				return nil, err
			}
			p := posts[i]
			return &p, nil
		}
	}
	return nil, models.NewNotFoundError("post", id)
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
