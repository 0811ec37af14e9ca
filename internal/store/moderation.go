package store

import (
	"context"
	"time"

	"classwall/internal/models"
	"classwall/internal/observability"
)

// AppointAdmin promotes a regular user to admin. Owner only.
func (s *Store) AppointAdmin(ctx context.Context, targetID, actorID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can appoint admins"); err != nil {
		return nil, err
	}
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleUser {
		return nil, models.NewInvalidStateError("only regular users can be appointed admin")
	}

	updated, err := s.mutateUser(ctx, targetID, func(u *models.User) {
		u.Role = models.RoleAdmin
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationActions.WithLabelValues("appoint_admin").Inc()
	s.userLog.LogMutation(ctx, "appoint_admin", map[string]any{"user_id": targetID, "actor_id": actorID})
	return updated, nil
}

// RemoveAdmin demotes an admin back to a regular user. Owner only.
func (s *Store) RemoveAdmin(ctx context.Context, targetID, actorID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, actorID, models.RoleOwner, "only the owner can remove admins"); err != nil {
		return nil, err
	}
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleAdmin {
		return nil, models.NewInvalidStateError("target is not an admin")
	}

	updated, err := s.mutateUser(ctx, targetID, func(u *models.User) {
		u.Role = models.RoleUser
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationActions.WithLabelValues("remove_admin").Inc()
	s.userLog.LogMutation(ctx, "remove_admin", map[string]any{"user_id": targetID, "actor_id": actorID})
	return updated, nil
}

// BanUser silences an account. Owner or admin; the owner is untargetable.
// durationDays == 0 bans indefinitely. Re-banning an already banned account
// replaces its ban record.
func (s *Store) BanUser(ctx context.Context, targetID, actorID, reason string, durationDays int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleOwner {
		return nil, models.NewInvalidStateError("the owner cannot be banned")
	}

	banInfo := &models.BanInfo{
		IsBanned:  true,
		BannedAt:  s.now(),
		BanReason: reason,
		BannedBy:  actorID,
	}
	if durationDays > 0 {
		until := s.now().Add(time.Duration(durationDays) * 24 * time.Hour)
		banInfo.BannedUntil = &until
	}

	updated, err := s.mutateUser(ctx, targetID, func(u *models.User) {
		u.Role = models.RoleBanned
		u.BanInfo = banInfo
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationActions.WithLabelValues("ban_user").Inc()
	s.userLog.LogMutation(ctx, "ban_user", map[string]any{
		"user_id": targetID, "actor_id": actorID, "duration_days": durationDays,
	})
	return updated, nil
}

// UnbanUser lifts a ban. Owner or admin; the target must currently be banned.
func (s *Store) UnbanUser(ctx context.Context, targetID, actorID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleBanned {
		return nil, models.NewInvalidStateError("target is not banned")
	}

	updated, err := s.mutateUser(ctx, targetID, func(u *models.User) {
		u.Role = models.RoleUser
		u.BanInfo = nil
	})
	if err != nil {
		return nil, err
	}
	observability.ModerationActions.WithLabelValues("unban_user").Inc()
	s.userLog.LogMutation(ctx, "unban_user", map[string]any{"user_id": targetID, "actor_id": actorID})
	return updated, nil
}

// IsUserBanned is the authoritative ban check used to gate login, posting and
// commenting. An expired timed ban is lifted here, on the next check, rather
// than by any timer. Unknown users count as not banned.
func (s *Store) IsUserBanned(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isBannedLocked(ctx, userID)
}

func (s *Store) isBannedLocked(ctx context.Context, userID string) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		if models.CodeOf(err) == models.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	if user.Role != models.RoleBanned {
		return false, nil
	}

	if user.BanInfo != nil && user.BanInfo.BannedUntil != nil && user.BanInfo.BannedUntil.Before(s.now()) {
		if _, err := s.mutateUser(ctx, userID, func(u *models.User) {
			u.Role = models.RoleUser
			u.BanInfo = nil
		}); err != nil {
			return false, err
		}
		s.userLog.LogMutation(ctx, "ban_expired", map[string]any{"user_id": userID})
		return false, nil
	}
	return true, nil
}
