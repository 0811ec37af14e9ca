// Package storage provides the flat key-value substrate the store persists
// into: one serialized collection per logical key, with get/set/remove by
// string key and nothing else (no transactions, no indexing).
package storage

import "context"

// Collection keys. Every backend persists the same logical layout.
const (
	KeyUsers         = "classwall:users"
	KeyPosts         = "classwall:posts"
	KeyComments      = "classwall:comments"
	KeySettings      = "classwall:settings"
	KeyTags          = "classwall:tags"
	KeyAnnouncements = "classwall:announcements"
	KeyCurrentUser   = "classwall:current_user"
)

// ErrNotFound is returned by Get when the key has never been set (or was
// removed). It is the only sentinel a backend may return for a missing key.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "storage: key not found" }

// KV is the persistence boundary. Values are opaque strings; callers own
// serialization.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Closer is implemented by backends holding external connections.
type Closer interface {
	Close() error
}
