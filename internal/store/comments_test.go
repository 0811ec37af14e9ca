package store

import (
	"context"
	"testing"

	"classwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	t.Parallel()

	t.Run("appends and counts", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)
		bob := mustRegister(t, s, "bob", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

		first, err := s.CreateComment(ctx, CreateCommentInput{PostID: post.ID, AuthorID: bob.ID, Content: "first"})
		require.NoError(t, err)
		second, err := s.CreateComment(ctx, CreateCommentInput{PostID: post.ID, AuthorID: alice.ID, Content: "second"})
		require.NoError(t, err)

		comments, err := s.GetCommentsByPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, first.ID, comments[0].ID)
		assert.Equal(t, second.ID, comments[1].ID)

		refreshed, err := s.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, refreshed.Comments)
	})

	t.Run("requires an existing post", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)

		_, err := s.CreateComment(context.Background(), CreateCommentInput{
			PostID: "post_missing", AuthorID: alice.ID, Content: "hello",
		})
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	})

	t.Run("requires content", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

		_, err := s.CreateComment(context.Background(), CreateCommentInput{
			PostID: post.ID, AuthorID: alice.ID, Content: "",
		})
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})
}

func TestDeleteComment(t *testing.T) {
	t.Parallel()

	t.Run("author soft-deletes and the counter follows", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)
		bob := mustRegister(t, s, "bob", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		comment, err := s.CreateComment(ctx, CreateCommentInput{PostID: post.ID, AuthorID: bob.ID, Content: "hi"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteCommentByUser(ctx, comment.ID, bob.ID))

		comments, err := s.GetCommentsByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		refreshed, err := s.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Zero(t, refreshed.Comments)

		// Deleting again does not decrement a second time.
		err = s.DeleteCommentByUser(ctx, comment.ID, bob.ID)
		assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
	})

	t.Run("only the author may use the user path", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)
		bob := mustRegister(t, s, "bob", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		comment, err := s.CreateComment(ctx, CreateCommentInput{PostID: post.ID, AuthorID: bob.ID, Content: "hi"})
		require.NoError(t, err)

		err = s.DeleteCommentByUser(ctx, comment.ID, alice.ID)
		assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
	})

	t.Run("moderators delete anyone's comment", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		admin := adminOf(t, s)
		alice := mustRegister(t, s, "alice", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		comment, err := s.CreateComment(ctx, CreateCommentInput{PostID: post.ID, AuthorID: alice.ID, Content: "hi"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteCommentByAdmin(ctx, comment.ID, admin.ID))

		comments, err := s.GetCommentsByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("regular users cannot use the admin path", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)
		bob := mustRegister(t, s, "bob", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		comment, err := s.CreateComment(ctx, CreateCommentInput{PostID: post.ID, AuthorID: alice.ID, Content: "hi"})
		require.NoError(t, err)

		err = s.DeleteCommentByAdmin(ctx, comment.ID, bob.ID)
		assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
	})
}
