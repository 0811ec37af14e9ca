package store

import (
	"context"

	"classwall/internal/models"
	"classwall/internal/observability"
	"classwall/internal/storage"
)

// RegisterInput carries the fields a new account supplies. Role and counters
// are assigned by the store.
type RegisterInput struct {
	Username       string
	Nickname       string
	Password       string
	EnrollmentYear int
	ClassNumber    int
	Avatar         string
	Profile        *models.Profile
}

// Register creates a new account. The owner role is assigned if and only if
// the username matches the configured owner username at this moment; the rule
// is never re-evaluated afterwards.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Username == "" || in.Password == "" || in.Nickname == "" {
		return nil, models.NewValidationError("username, nickname and password are required")
	}

	users, err := loadList[models.User](ctx, s.kv, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == in.Username {
			return nil, models.NewInvalidStateError("username is already taken")
		}
	}

	settings, err := s.readSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !containsInt(settings.EnrollmentYears, in.EnrollmentYear) {
		return nil, models.NewValidationError("enrollment year is not offered")
	}
	if !containsInt(settings.ClassNumbers, in.ClassNumber) {
		return nil, models.NewValidationError("class number is not offered")
	}

	role := models.RoleUser
	if in.Username == settings.OwnerUsername {
		role = models.RoleOwner
	}

	user := models.User{
		ID:             s.newID("user"),
		Username:       in.Username,
		Nickname:       in.Nickname,
		EnrollmentYear: in.EnrollmentYear,
		ClassNumber:    in.ClassNumber,
		Avatar:         in.Avatar,
		Password:       in.Password,
		Role:           role,
		CreatedAt:      s.now(),
		Profile:        in.Profile,
	}
	users = append(users, user)
	if err := saveList(ctx, s.kv, storage.KeyUsers, users); err != nil {
		return nil, err
	}

	s.userLog.LogMutation(ctx, "register", map[string]any{"user_id": user.ID, "role": role})
	observability.RecordStoreOp("users", "register", nil)
	return &user, nil
}

// GetUserByID returns the user with the given id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(ctx, id)
}

// GetUserByUsername returns the user with the given username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadList[models.User](ctx, s.kv, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			u := users[i]
			return &u, nil
		}
	}
	return nil, models.NewNotFoundError("user", username)
}

// GetUsers returns every account.
func (s *Store) GetUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.User](ctx, s.kv, storage.KeyUsers)
}

// GetAdmins returns every account holding the admin role.
func (s *Store) GetAdmins(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadList[models.User](ctx, s.kv, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	admins := make([]models.User, 0)
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

// UpdateUserProfile replaces the user's profile.
func (s *Store) UpdateUserProfile(ctx context.Context, userID string, profile models.Profile) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateUser(ctx, userID, func(u *models.User) {
		u.Profile = &profile
	})
}

// UpdateUserAvatar changes the user's avatar and repairs the denormalized
// authorAvatar snapshot on every post and comment the user authored. Other
// snapshot fields (name, year, class) are intentionally left to drift.
func (s *Store) UpdateUserAvatar(ctx context.Context, userID, avatar string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.mutateUser(ctx, userID, func(u *models.User) {
		u.Avatar = avatar
	})
	if err != nil {
		return nil, err
	}

	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].AuthorID == userID {
			posts[i].AuthorAvatar = avatar
		}
	}
	if err := saveList(ctx, s.kv, storage.KeyPosts, posts); err != nil {
		return nil, err
	}

	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].AuthorID == userID {
			comments[i].AuthorAvatar = avatar
		}
	}
	if err := saveList(ctx, s.kv, storage.KeyComments, comments); err != nil {
		return nil, err
	}

	s.userLog.LogMutation(ctx, "update_avatar", map[string]any{"user_id": userID})
	return user, nil
}

// DeleteUser permanently removes an account together with every post and
// comment it authored. Owner only; self-deletion is rejected.
func (s *Store) DeleteUser(ctx context.Context, targetID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can delete accounts"); err != nil {
		return err
	}
	if targetID == actorID {
		return models.NewInvalidStateError("the owner cannot delete their own account")
	}
	if _, err := s.findUser(ctx, targetID); err != nil {
		return err
	}

	posts, err := loadList[models.Post](ctx, s.kv, storage.KeyPosts)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if p.AuthorID == targetID {
			if err := s.hardDeletePost(ctx, p.ID); err != nil {
				return err
			}
		}
	}

	comments, err := loadList[models.Comment](ctx, s.kv, storage.KeyComments)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if c.AuthorID == targetID {
			if err := s.hardDeleteComment(ctx, c.ID); err != nil {
				return err
			}
		}
	}

	users, err := loadList[models.User](ctx, s.kv, storage.KeyUsers)
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, u := range users {
		if u.ID != targetID {
			kept = append(kept, u)
		}
	}
	if err := saveList(ctx, s.kv, storage.KeyUsers, kept); err != nil {
		return err
	}

	s.userLog.LogMutation(ctx, "delete_user", map[string]any{"user_id": targetID, "actor_id": actorID})
	observability.ModerationActions.WithLabelValues("delete_user").Inc()
	return nil
}

// findUser returns the user by id. Callers hold the store lock.
func (s *Store) findUser(ctx context.Context, id string) (*models.User, error) {
	users, err := loadList[models.User](ctx, s.kv, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, models.NewNotFoundError("user", id)
}

// mutateUser applies fn to the stored user record and writes the collection
// back. Callers hold the store lock.
func (s *Store) mutateUser(ctx context.Context, id string, fn func(*models.User)) (*models.User, error) {
	users, err := loadList[models.User](ctx, s.kv, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			fn(&users[i])
			if err := saveList(ctx, s.kv, storage.KeyUsers, users); err != nil {
				return nil, err
			}
			u := users[i]
			return &u, nil
		}
	}
	return nil, models.NewNotFoundError("user", id)
}

// requireRole verifies the actor exists and holds exactly the given role.
func (s *Store) requireRole(ctx context.Context, actorID string, role models.Role, denied string) error {
	actor, err := s.findUser(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != role {
		return models.NewUnauthorizedError(denied)
	}
	return nil
}

// requireModerator verifies the actor exists and is owner or admin.
func (s *Store) requireModerator(ctx context.Context, actorID string) error {
	actor, err := s.findUser(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsModerator() {
		return models.NewUnauthorizedError("moderator privileges required")
	}
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
