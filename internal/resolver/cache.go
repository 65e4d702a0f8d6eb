package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tinkerloft/errdoctor/internal/fingerprint"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/store"
)

const incrementTimeout = 5 * time.Second

// Cache resolves descriptions from previously admitted live diagnoses.
type Cache struct {
	store     store.CacheStore
	namespace string
	logger    *slog.Logger
	pending   sync.WaitGroup
}

// NewCache returns a cache resolver reading keys under namespace.
func NewCache(s store.CacheStore, namespace string, logger *slog.Logger) *Cache {
	return &Cache{store: s, namespace: namespace, logger: loggerOr(logger)}
}

func (c *Cache) Name() string  { return "cache" }
func (c *Cache) Priority() int { return PriorityCache }

// Resolve returns the cached diagnostic when it was stored for a compatible profile.
// The hit counter is incremented in the background; its failure does not fail the hit.
func (c *Cache) Resolve(ctx context.Context, req Request) (*model.DiagnosticRecord, error) {
	key := store.Key(c.namespace, req.Fingerprint)
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if entry == nil {
		return nil, nil
	}
	fp := fingerprint.Short(req.Fingerprint)
	if !entry.Profile.Matches(req.Profile) {
		c.logger.DebugContext(ctx, "cache entry stored for another profile",
			"fingerprint", fp, "entry_os", entry.Profile.OS, "entry_package_manager", entry.Profile.PackageManager)
		return nil, nil
	}
	if entry.Diagnostic.IsFailure() {
		c.logger.WarnContext(ctx, "ignoring failed diagnosis found in cache", "fingerprint", fp)
		return nil, nil
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), incrementTimeout)
		defer cancel()
		if err := c.store.Increment(ictx, key, store.FieldHitCount, 1); err != nil {
			c.logger.WarnContext(ictx, "cache hit count increment failed", "fingerprint", fp, "err", err)
		}
	}()

	d := entry.Diagnostic.WithSource(model.SourceAICache)
	return &d, nil
}

// Wait blocks until background hit-count updates have finished.
func (c *Cache) Wait() {
	c.pending.Wait()
}
