package store

import (
	"context"

	"classwall/internal/models"
	"classwall/internal/observability"
	"classwall/internal/storage"
)

// CreateCommentInput carries the caller-supplied fields of a new comment.
type CreateCommentInput struct {
	PostID   string
	AuthorID string
	Content  string
	ParentID string
}

// CreateComment appends a comment to a post and increments the post's comment
// counter. Banned authors are rejected; the post must exist.
func (s *Store) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Content == "" {
		return nil, models.NewValidationError("content is required")
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
		return nil, models.NewUnauthorizedError("banned users cannot comment")
	}

	if _, err := s.findPost(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:           s.newID("comment"),
		PostID:       in.PostID,
		AuthorID:     author.ID,
		AuthorName:   author.Nickname,
		AuthorAvatar: author.Avatar,
		Content:      in.Content,
		ParentID:     in.ParentID,
		CreatedAt:    s.now(),
	}

	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return nil, err
	}
	comments = append(comments, comment)
	if err := saveList(ctx, s.kv, storage.KeyComments, comments); err != nil {
		return nil, err
	}

	if _, err := s.mutatePost(ctx, in.PostID, func(p *models.Post) {
		p.Comments++
	}); err != nil {
		return nil, err
	}

	s.commentLog.LogMutation(ctx, "create", map[string]any{"comment_id": comment.ID, "post_id": in.PostID})
	observability.RecordStoreOp("comments", "create", nil)
	return &comment, nil
}

// GetCommentsByPost returns the post's non-deleted comments in creation order.
func (s *Store) GetCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0)
	for _, c := range comments {
		if c.PostID == postID && !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteCommentByAdmin soft-deletes any comment. Owner or admin.
func (s *Store) DeleteCommentByAdmin(ctx context.Context, commentID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	if err := s.softDeleteComment(ctx, commentID, actorID); err != nil {
		return err
	}
	observability.ModerationActions.WithLabelValues("delete_comment").Inc()
	return nil
}

// DeleteCommentByUser soft-deletes the caller's own comment.
func (s *Store) DeleteCommentByUser(ctx context.Context, commentID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return models.NewUnauthorizedError("you can only delete your own comments")
	}
	return s.softDeleteComment(ctx, commentID, userID)
}

// softDeleteComment marks the comment deleted and decrements the parent
// post's comment counter. Callers hold the store lock.
func (s *Store) softDeleteComment(ctx context.Context, commentID, deletedBy string) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.IsDeleted {
		return models.NewInvalidStateError("comment is already deleted")
	}

	now := s.now()
	if err := s.mutateComment(ctx, commentID, func(c *models.Comment) {
		c.IsDeleted = true
		c.DeletedAt = &now
		c.DeletedBy = deletedBy
	}); err != nil {
		return err
	}

	if _, err := s.mutatePost(ctx, comment.PostID, func(p *models.Post) {
		p.Comments = max(0, p.Comments-1)
	}); err != nil && models.CodeOf(err) != models.CodeNotFound {
		return err
	}

	s.commentLog.LogMutation(ctx, "soft_delete", map[string]any{"comment_id": commentID, "deleted_by": deletedBy})
	return nil
}

// hardDeleteComment removes a comment outright, adjusting the parent post's
// counter when the comment was still visible. Used by the user-deletion
// cascade. Callers hold the store lock.
func (s *Store) hardDeleteComment(ctx context.Context, commentID string) error {
	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return err
	}

	var removed *models.Comment
	kept := comments[:0]
	for _, c := range comments {
		if c.ID == commentID {
			removedCopy := c
			removed = &removedCopy
			continue
		}
		kept = append(kept, c)
	}
	if removed == nil {
		// Already cascaded away with its post.
		return nil
	}
	if err := saveList(ctx, s.kv, storage.KeyComments, kept); err != nil {
		return err
	}

	if !removed.IsDeleted {
		if _, err := s.mutatePost(ctx, removed.PostID, func(p *models.Post) {
			p.Comments = max(0, p.Comments-1)
		}); err != nil && models.CodeOf(err) != models.CodeNotFound {
			return err
		}
	}
	return nil
}

// findComment returns the comment by id. Callers hold the store lock.
func (s *Store) findComment(ctx context.Context, id string) (*models.Comment, error) {
	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].ID == id {
			c := comments[i]
			return &c, nil
		}
	}
	return nil, models.NewNotFoundError("comment", id)
}

// mutateComment applies fn to the stored comment record and writes the
// collection back. Callers hold the store lock.
func (s *Store) mutateComment(ctx context.Context, id string, fn func(*models.Comment)) error {
	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return err
	}
	for i := range comments {
		if comments[i].ID == id {
			fn(&comments[i])
			return saveList(ctx, s.kv, storage.KeyComments, comments)
		}
	}
	return models.NewNotFoundError("comment", id)
}
