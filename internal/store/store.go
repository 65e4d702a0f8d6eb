// Package store persists cache entries, user profiles and diagnosis history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tinkerloft/errdoctor/internal/model"
)

// FieldHitCount is the only counter field cache entries carry.
const FieldHitCount = "hit_count"

// DefaultHistoryLimit is the number of history entries kept per user.
const DefaultHistoryLimit = 50

// ErrUnknownField is returned by Increment for fields other than FieldHitCount.
var ErrUnknownField = errors.New("unknown counter field")

// CacheStore is a key-value store for cache entries with store-managed expiry.
type CacheStore interface {
	// Get returns the entry under key, or nil when absent or expired.
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	// Put overwrites the entry under key. A positive ttl sets the entry's expiry.
	Put(ctx context.Context, key string, entry model.CacheEntry, ttl time.Duration) error
	// Increment adds delta to a counter field of the entry under key. Missing keys are ignored.
	Increment(ctx context.Context, key, field string, delta int64) error
}

// ProfileStore reads and writes user profiles.
type ProfileStore interface {
	// GetProfile returns model.DefaultProfile when the user has none stored.
	GetProfile(ctx context.Context, userID string) (model.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, p model.UserProfile) error
}

// HistoryStore keeps a bounded, newest-first diagnosis history per user.
type HistoryStore interface {
	AppendHistory(ctx context.Context, userID string, e model.HistoryEntry) error
	ListHistory(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error)
}

// Purger removes expired cache entries.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Store is the full persistence surface used by the binaries.
type Store interface {
	CacheStore
	ProfileStore
	HistoryStore
	Purger
	Close() error
}

// Key scopes a fingerprint by cache namespace.
func Key(namespace, fingerprint string) string {
	if namespace == "" {
		return fingerprint
	}
	return namespace + "#" + fingerprint
}

func expiry(now time.Time, entry model.CacheEntry, ttl time.Duration) time.Time {
	if ttl > 0 {
		return now.Add(ttl)
	}
	return entry.ExpiresAt
}
