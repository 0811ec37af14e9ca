// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is a user's privilege tier.
type Role string

// Privilege tiers, highest first. Banned is a role rather than a flag so a
// single field gates every mutation path.
const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleBanned Role = "banned"
)

// Profile holds the optional self-description fields a user can fill in.
type Profile struct {
	Bio      string   `json:"bio,omitempty"`
	Hobbies  []string `json:"hobbies,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Wechat   string   `json:"wechat,omitempty"`
	Email    string   `json:"email,omitempty"`
	QQ       string   `json:"qq,omitempty"`
	Birthday string   `json:"birthday,omitempty"`
	Gender   string   `json:"gender,omitempty"`
	Location string   `json:"location,omitempty"`
}

// BanInfo records an active ban. BannedUntil is nil for indefinite bans.
type BanInfo struct {
	IsBanned    bool       `json:"isBanned"`
	BannedAt    time.Time  `json:"bannedAt"`
	BannedUntil *time.Time `json:"bannedUntil,omitempty"`
	BanReason   string     `json:"banReason,omitempty"`
	BannedBy    string     `json:"bannedBy,omitempty"`
}

// User is a registered forum member. PostCount and LikeCount are denormalized
// counters maintained by the store on every mutating operation.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Nickname       string    `json:"nickname"`
	EnrollmentYear int       `json:"enrollmentYear"`
	ClassNumber    int       `json:"classNumber"`
	Avatar         string    `json:"avatar,omitempty"`
	// Stored and serialized in the clear: the collection blob is the system of
	// record and login compares the raw value. See Redacted for API responses.
	Password       string    `json:"password,omitempty"`
	Role           Role      `json:"role"`
	PostCount      int       `json:"postCount"`
	LikeCount      int       `json:"likeCount"`
	CreatedAt      time.Time `json:"createdAt"`
	Profile        *Profile  `json:"profile,omitempty"`
	BanInfo        *BanInfo  `json:"banInfo,omitempty"`
}

// Redacted returns a copy safe to hand to API clients.
func (u User) Redacted() User {
	u.Password = ""
	return u
}

// IsModerator reports whether the user may perform moderation actions.
func (u *User) IsModerator() bool {
	return u.Role == RoleOwner || u.Role == RoleAdmin
}

