package models

import "time"

// Visibility controls who can read a post.
type Visibility string

const (
	VisibilitySchool Visibility = "school"
	VisibilityGrade  Visibility = "grade"
	VisibilityClass  Visibility = "class"
)

// Post is a forum post. Author* fields are snapshots taken at creation time,
// not live joins; only the avatar is repaired afterwards (see
// Store.UpdateUserAvatar). Likes mirrors len(LikedBy) and Comments mirrors the
// number of non-deleted comments; both are maintained per operation rather
// than recomputed on read.
type Post struct {
	ID           string     `json:"id"`
	AuthorID     string     `json:"authorId"`
	AuthorName   string     `json:"authorName"`
	AuthorAvatar string     `json:"authorAvatar,omitempty"`
	AuthorYear   int        `json:"authorYear"`
	AuthorClass  int        `json:"authorClass"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Images       []string   `json:"images"`
	Tag          string     `json:"tag"`
	Visibility   Visibility `json:"visibility"`
	CreatedAt    time.Time  `json:"createdAt"`
	Likes        int        `json:"likes"`
	Comments     int        `json:"comments"`
	Views        int        `json:"views"`
	LikedBy      []string   `json:"likedBy"`

	IsDeleted    bool       `json:"isDeleted,omitempty"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	DeletedBy    string     `json:"deletedBy,omitempty"`
	DeleteReason string     `json:"deleteReason,omitempty"`
}

// HasLiker reports whether userID is already in the LikedBy set.
func (p *Post) HasLiker(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}
