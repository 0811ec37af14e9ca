package store

import (
	"context"
	"testing"

	"classwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	t.Parallel()

	t.Run("prepends to the feed and counts", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)

		first := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		second := mustCreatePost(t, s, alice.ID, models.VisibilityGrade)

		posts, err := s.GetPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, second.ID, posts[0].ID)
		assert.Equal(t, first.ID, posts[1].ID)

		author, err := s.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, author.PostCount)
	})

	t.Run("snapshots the author", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)

		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		assert.Equal(t, alice.ID, post.AuthorID)
		assert.Equal(t, "alice", post.AuthorName)
		assert.Equal(t, 2024, post.AuthorYear)
		assert.Equal(t, 5, post.AuthorClass)
	})

	t.Run("rejects unknown tag", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)

		_, err := s.CreatePost(context.Background(), CreatePostInput{
			AuthorID: alice.ID, Title: "t", Content: "c", Tag: "no-such-tag",
			Visibility: models.VisibilitySchool,
		})
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})

	t.Run("rejects bad visibility", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		alice := mustRegister(t, s, "alice", 2024, 5)

		_, err := s.CreatePost(context.Background(), CreatePostInput{
			AuthorID: alice.ID, Title: "t", Content: "c", Tag: "其他",
			Visibility: "planet",
		})
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})

	t.Run("rejects unknown author", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		_, err := s.CreatePost(context.Background(), CreatePostInput{
			AuthorID: "user_missing", Title: "t", Content: "c", Tag: "其他",
			Visibility: models.VisibilitySchool,
		})
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	})
}

func TestLikePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	bob := mustRegister(t, s, "bob", 2024, 6)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	require.NoError(t, s.LikePost(ctx, post.ID, bob.ID))

	// A second like from the same user is rejected and changes nothing.
	err := s.LikePost(ctx, post.ID, bob.ID)
	assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))

	liked, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)
	assert.Len(t, liked.LikedBy, liked.Likes)

	author, err := s.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, author.LikeCount)
}

func TestUnlikePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	bob := mustRegister(t, s, "bob", 2024, 6)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	// Withdrawing a like that was never recorded is a state error.
	err := s.UnlikePost(ctx, post.ID, bob.ID)
	assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))

	require.NoError(t, s.LikePost(ctx, post.ID, bob.ID))
	require.NoError(t, s.UnlikePost(ctx, post.ID, bob.ID))

	unliked, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, unliked.Likes)
	assert.Empty(t, unliked.LikedBy)

	author, err := s.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, author.LikeCount)
}

func TestLikeDeletedPost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	bob := mustRegister(t, s, "bob", 2024, 6)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	require.NoError(t, s.DeletePostByUser(ctx, post.ID, alice.ID))
	err := s.LikePost(ctx, post.ID, bob.ID)
	assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
}

func TestSoftDeleteAndRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	owner := ownerOf(t, s)
	alice := mustRegister(t, s, "alice", 2024, 5)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	require.NoError(t, s.DeletePostByAdmin(ctx, post.ID, owner.ID, "off topic"))

	deleted, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.Equal(t, owner.ID, deleted.DeletedBy)
	assert.Equal(t, "off topic", deleted.DeleteReason)
	require.NotNil(t, deleted.DeletedAt)

	author, err := s.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, author.PostCount)

	// Deleting an already-deleted post does not decrement twice.
	err = s.DeletePostByAdmin(ctx, post.ID, owner.ID, "again")
	assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))

	require.NoError(t, s.RestorePost(ctx, post.ID, owner.ID))

	restored, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
	assert.Empty(t, restored.DeletedBy)

	author, err = s.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, author.PostCount)

	// Restoring a live post is a state error.
	err = s.RestorePost(ctx, post.ID, owner.ID)
	assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
}

func TestDeletePostByUserOwnershipCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	bob := mustRegister(t, s, "bob", 2024, 5)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	err := s.DeletePostByUser(ctx, post.ID, bob.ID)
	assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
}

func TestRestorePostRequiresOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	admin := adminOf(t, s)
	alice := mustRegister(t, s, "alice", 2024, 5)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	require.NoError(t, s.DeletePostByAdmin(ctx, post.ID, admin.ID, "off topic"))
	err := s.RestorePost(ctx, post.ID, admin.ID)
	assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
}

func TestPermanentlyDeletePost(t *testing.T) {
	t.Parallel()

	t.Run("removes the post and its comments", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		owner := ownerOf(t, s)
		alice := mustRegister(t, s, "alice", 2024, 5)
		bob := mustRegister(t, s, "bob", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		_, err := s.CreateComment(ctx, CreateCommentInput{PostID: post.ID, AuthorID: bob.ID, Content: "hi"})
		require.NoError(t, err)

		require.NoError(t, s.PermanentlyDeletePost(ctx, post.ID, owner.ID))

		_, err = s.GetPostByID(ctx, post.ID)
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
		comments, err := s.GetCommentsByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		// The post was live, so the counter comes down with it.
		author, err := s.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Zero(t, author.PostCount)
	})

	t.Run("soft-deleted post does not decrement again", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		owner := ownerOf(t, s)
		alice := mustRegister(t, s, "alice", 2024, 5)
		keeper := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
		doomed := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

		require.NoError(t, s.DeletePostByUser(ctx, doomed.ID, alice.ID))
		require.NoError(t, s.PermanentlyDeletePost(ctx, doomed.ID, owner.ID))

		author, err := s.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, author.PostCount)

		_, err = s.GetPostByID(ctx, keeper.ID)
		require.NoError(t, err)
	})

	t.Run("requires owner", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		admin := adminOf(t, s)
		alice := mustRegister(t, s, "alice", 2024, 5)
		post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

		err := s.PermanentlyDeletePost(ctx, post.ID, admin.ID)
		assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
	})
}

func TestIncrementViews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	require.NoError(t, s.IncrementViews(ctx, post.ID))
	require.NoError(t, s.IncrementViews(ctx, post.ID))

	viewed, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, viewed.Views)

	// Views on a deleted post are silently dropped.
	require.NoError(t, s.DeletePostByUser(ctx, post.ID, alice.ID))
	require.NoError(t, s.IncrementViews(ctx, post.ID))
	frozen, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, frozen.Views)
}

func TestGetPostsByAuthorSkipsDeleted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	bob := mustRegister(t, s, "bob", 2024, 5)

	live := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
	gone := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
	mustCreatePost(t, s, bob.ID, models.VisibilitySchool)
	require.NoError(t, s.DeletePostByUser(ctx, gone.ID, alice.ID))

	posts, err := s.GetPostsByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, live.ID, posts[0].ID)
}
