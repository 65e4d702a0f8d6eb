package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func testEntry(fp string) model.CacheEntry {
	return model.CacheEntry{
		Fingerprint: fp,
		Profile:     model.ProfileSnapshot{OS: model.OSWindows, PackageManager: model.PackageManagerPip},
		Diagnostic: model.DiagnosticRecord{
			ErrorType:  "OSError",
			VoiceText:  "Too many open files.",
			Solutions:  []string{"Close files"},
			Causes:     []string{},
			Confidence: 0.85,
			Source:     model.SourceAILivePrimary,
		},
	}
}

// backends returns each Store implementation under test with a controllable clock.
func backends(t *testing.T) map[string]func(c *clock) store.Store {
	return map[string]func(c *clock) store.Store{
		"memory": func(c *clock) store.Store {
			return store.NewMemory(store.WithClock(c.Now), store.WithHistoryLimit(3))
		},
		"sqlite": func(c *clock) store.Store {
			s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), 3)
			require.NoError(t, err)
			s.SetClock(c.Now)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestCache_PutGetIncrement(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
			s := open(c)
			key := store.Key("cache", "abc")

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, s.Put(ctx, key, testEntry("abc"), 720*time.Hour))
			got, err = s.Get(ctx, key)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "abc", got.Fingerprint)
			assert.Equal(t, model.OSWindows, got.Profile.OS)
			assert.Equal(t, "OSError", got.Diagnostic.ErrorType)
			assert.Equal(t, int64(0), got.HitCount)
			assert.True(t, got.ExpiresAt.Equal(c.t.Add(720*time.Hour)))

			require.NoError(t, s.Increment(ctx, key, store.FieldHitCount, 1))
			got, err = s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.HitCount)

			assert.ErrorIs(t, s.Increment(ctx, key, "misses", 1), store.ErrUnknownField)
			assert.NoError(t, s.Increment(ctx, "cache#missing", store.FieldHitCount, 1))
		})
	}
}

func TestCache_OverwriteLastWriteWins(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(&clock{t: time.Now()})
			key := store.Key("cache", "abc")

			require.NoError(t, s.Put(ctx, key, testEntry("abc"), time.Hour))
			require.NoError(t, s.Increment(ctx, key, store.FieldHitCount, 4))

			second := testEntry("abc")
			second.Diagnostic.ErrorType = "IOError"
			require.NoError(t, s.Put(ctx, key, second, time.Hour))

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "IOError", got.Diagnostic.ErrorType)
			assert.Equal(t, int64(0), got.HitCount)
		})
	}
}

func TestCache_ConcurrentPutIncrement(t *testing.T) {
	const (
		workers = 32
		rounds  = 10
		keys    = 8
	)
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(&clock{t: time.Now()})

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				errs []error
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for r := 0; r < rounds; r++ {
						key := store.Key("cache", fmt.Sprintf("fp%d", (w+r)%keys))
						err := s.Put(ctx, key, testEntry(key), time.Hour)
						if err == nil {
							err = s.Increment(ctx, key, store.FieldHitCount, 1)
						}
						if err != nil {
							mu.Lock()
							errs = append(errs, err)
							mu.Unlock()
						}
					}
				}(w)
			}
			wg.Wait()
			require.Empty(t, errs)

			for k := 0; k < keys; k++ {
				key := store.Key("cache", fmt.Sprintf("fp%d", k))
				got, err := s.Get(ctx, key)
				require.NoError(t, err)
				require.NotNil(t, got, key)
				assert.Equal(t, key, got.Fingerprint)
				assert.Equal(t, "OSError", got.Diagnostic.ErrorType)
			}
		})
	}
}

func TestCache_EntriesDoNotAlias(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(&clock{t: time.Now()})
			key := store.Key("cache", "abc")

			entry := testEntry("abc")
			require.NoError(t, s.Put(ctx, key, entry, time.Hour))
			entry.Diagnostic.Solutions[0] = "mutated before read"

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			got.Diagnostic.Solutions[0] = "mutated by caller"

			again, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []string{"Close files"}, again.Diagnostic.Solutions)
		})
	}
}

func TestCache_ExpiryAndPurge(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
			s := open(c)

			require.NoError(t, s.Put(ctx, "cache#old", testEntry("old"), time.Hour))
			require.NoError(t, s.Put(ctx, "cache#new", testEntry("new"), 48*time.Hour))

			c.t = c.t.Add(2 * time.Hour)
			got, err := s.Get(ctx, "cache#old")
			require.NoError(t, err)
			assert.Nil(t, got)

			n, err := s.PurgeExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			got, err = s.Get(ctx, "cache#new")
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestProfiles(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(&clock{t: time.Now()})

			p, err := s.GetProfile(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, model.DefaultProfile, p)

			want := model.DefaultProfile.Update("mac", "conda", "pycharm")
			require.NoError(t, s.SaveProfile(ctx, "u1", want))
			p, err = s.GetProfile(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, want, p)

			want = want.Update("windows", "", "")
			require.NoError(t, s.SaveProfile(ctx, "u1", want))
			p, err = s.GetProfile(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, model.OSWindows, p.OS)
			assert.Equal(t, model.PackageManagerConda, p.PackageManager)
		})
	}
}

func TestHistory_NewestFirstAndBounded(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(&clock{t: time.Now()})
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

			for i := 0; i < 5; i++ {
				require.NoError(t, s.AppendHistory(ctx, "u1", model.HistoryEntry{
					ID:        fmt.Sprintf("h%d", i),
					ErrorType: "KeyError",
					Source:    model.SourceKnowledgeBase,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}))
			}
			require.NoError(t, s.AppendHistory(ctx, "u2", model.HistoryEntry{ID: "other", CreatedAt: base}))

			h, err := s.ListHistory(ctx, "u1", 0)
			require.NoError(t, err)
			require.Len(t, h, 3)
			assert.Equal(t, []string{"h4", "h3", "h2"}, []string{h[0].ID, h[1].ID, h[2].ID})
			assert.Equal(t, model.SourceKnowledgeBase, h[0].Source)

			h, err = s.ListHistory(ctx, "u1", 1)
			require.NoError(t, err)
			assert.Len(t, h, 1)

			h, err = s.ListHistory(ctx, "nobody", 10)
			require.NoError(t, err)
			assert.Empty(t, h)
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cache#abc", store.Key("cache", "abc"))
	assert.Equal(t, "abc", store.Key("", "abc"))
}
