package store

import (
	"context"
	"testing"

	"classwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("regular user", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		user := mustRegister(t, s, "alice", 2024, 5)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.Zero(t, user.PostCount)
		assert.Zero(t, user.LikeCount)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		mustRegister(t, s, "alice", 2024, 5)
		_, err := s.Register(context.Background(), RegisterInput{
			Username: "alice", Nickname: "someone else", Password: "pw",
			EnrollmentYear: 2024, ClassNumber: 5,
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
	})

	t.Run("year outside offered range", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		_, err := s.Register(context.Background(), RegisterInput{
			Username: "bob", Nickname: "Bob", Password: "pw",
			EnrollmentYear: 2010, ClassNumber: 5,
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})

	t.Run("class outside offered range", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		_, err := s.Register(context.Background(), RegisterInput{
			Username: "bob", Nickname: "Bob", Password: "pw",
			EnrollmentYear: 2024, ClassNumber: 99,
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		_, err := s.Register(context.Background(), RegisterInput{Username: "x"})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})
}

func TestOwnerAssignmentIsEvaluatedOnlyAtRegistration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	owner := ownerOf(t, s)

	// Reassigning the configured owner username does not demote anyone.
	newOwnerName := "principal"
	_, err := s.UpdateSettings(ctx, owner.ID, models.SettingsUpdate{OwnerUsername: &newOwnerName})
	require.NoError(t, err)

	unchanged, err := s.GetUserByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, unchanged.Role)

	// A new registrant matching the updated setting becomes owner.
	principal := mustRegister(t, s, "principal", 2024, 1)
	assert.Equal(t, models.RoleOwner, principal.Role)
}

func TestUpdateUserProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)

	updated, err := s.UpdateUserProfile(ctx, alice.ID, models.Profile{
		Bio:     "hi",
		Hobbies: []string{"篮球"},
		Gender:  "female",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, "hi", updated.Profile.Bio)

	_, err = s.UpdateUserProfile(ctx, "user_missing", models.Profile{})
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestUpdateUserAvatarPropagatesToSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	bob := mustRegister(t, s, "bob", 2024, 5)

	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)
	otherPost := mustCreatePost(t, s, bob.ID, models.VisibilitySchool)
	comment, err := s.CreateComment(ctx, CreateCommentInput{
		PostID: otherPost.ID, AuthorID: alice.ID, Content: "nice",
	})
	require.NoError(t, err)

	_, err = s.UpdateUserAvatar(ctx, alice.ID, "data:image/png;base64,xyz")
	require.NoError(t, err)

	refreshed, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,xyz", refreshed.AuthorAvatar)

	comments, err := s.GetCommentsByPost(ctx, otherPost.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, comment.ID, comments[0].ID)
	assert.Equal(t, "data:image/png;base64,xyz", comments[0].AuthorAvatar)

	// Bob's own snapshots are untouched.
	other, err := s.GetPostByID(ctx, otherPost.ID)
	require.NoError(t, err)
	assert.Empty(t, other.AuthorAvatar)
}

func TestNicknameChangesDoNotPropagateToSnapshots(t *testing.T) {
	t.Parallel()

	// Only the avatar snapshot is ever repaired; the author name on existing
	// posts keeps the value captured at creation time.
	ctx := context.Background()
	s, _ := newTestStore(t)
	alice := mustRegister(t, s, "alice", 2024, 5)
	post := mustCreatePost(t, s, alice.ID, models.VisibilitySchool)

	_, err := s.mutateUser(ctx, alice.ID, func(u *models.User) {
		u.Nickname = "renamed"
	})
	require.NoError(t, err)

	stale, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stale.AuthorName)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	t.Run("cascades to posts and comments", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		owner := ownerOf(t, s)
		bob := mustRegister(t, s, "bob", 2024, 5)
		carol := mustRegister(t, s, "carol", 2024, 5)

		bobPost := mustCreatePost(t, s, bob.ID, models.VisibilitySchool)
		carolPost := mustCreatePost(t, s, carol.ID, models.VisibilitySchool)

		// Carol comments on Bob's post, Bob comments on Carol's.
		_, err := s.CreateComment(ctx, CreateCommentInput{PostID: bobPost.ID, AuthorID: carol.ID, Content: "a"})
		require.NoError(t, err)
		_, err = s.CreateComment(ctx, CreateCommentInput{PostID: carolPost.ID, AuthorID: bob.ID, Content: "b"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteUser(ctx, bob.ID, owner.ID))

		_, err = s.GetUserByID(ctx, bob.ID)
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
		_, err = s.GetPostByID(ctx, bobPost.ID)
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

		// Carol's comment went down with Bob's post; Bob's comment on
		// Carol's post is gone and the counter repaired.
		remaining, err := s.GetCommentsByPost(ctx, carolPost.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
		refreshed, err := s.GetPostByID(ctx, carolPost.ID)
		require.NoError(t, err)
		assert.Zero(t, refreshed.Comments)
	})

	t.Run("requires owner", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		admin := adminOf(t, s)
		bob := mustRegister(t, s, "bob", 2024, 5)

		err := s.DeleteUser(ctx, bob.ID, admin.ID)
		assert.Equal(t, models.CodeUnauthorized, models.CodeOf(err))
	})

	t.Run("rejects self-deletion", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s, _ := newTestStore(t)
		owner := ownerOf(t, s)

		err := s.DeleteUser(ctx, owner.ID, owner.ID)
		assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
	})
}

func TestGetAdmins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)
	admins, err := s.GetAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin01", admins[0].Username)
}
