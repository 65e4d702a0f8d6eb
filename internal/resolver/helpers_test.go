package resolver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/provider"
	"github.com/tinkerloft/errdoctor/internal/resolver"
	"github.com/tinkerloft/errdoctor/internal/store"
)

const liveResponse = `{
  "error_type": "OSError",
  "voice_text": "Your program has too many files open at once.",
  "solutions": ["Open files with a with block so they are closed", "Raise the limit with ulimit -n 4096"],
  "explanation": "Every process has a maximum number of open file descriptors.",
  "causes": ["Files opened in a loop and never closed"]
}`

var (
	windowsConda = model.UserProfile{OS: model.OSWindows, PackageManager: model.PackageManagerConda, Editor: model.EditorVSCode, Configured: true}
	windowsPip   = model.UserProfile{OS: model.OSWindows, PackageManager: model.PackageManagerPip, Editor: model.EditorVSCode, Configured: true}
	macConda     = model.UserProfile{OS: model.OSMacOS, PackageManager: model.PackageManagerConda, Editor: model.EditorPyCharm, Configured: true}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	name  string
	resp  string
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, _ string, _ provider.ProfileContext) (string, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.resp, f.err
}

func okProvider(name string) *fakeProvider { return &fakeProvider{name: name, resp: liveResponse} }

func failingProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, err: provider.ErrUnavailable}
}

// spyStore wraps a Memory store, counting writes and optionally failing calls.
type spyStore struct {
	*store.Memory
	mu         sync.Mutex
	puts       int
	failGet    bool
	failPut    bool
	failIncr   bool
	increments atomic.Int32
}

func newSpyStore() *spyStore { return &spyStore{Memory: store.NewMemory()} }

func (s *spyStore) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	if s.failGet {
		return nil, errors.New("store unreachable")
	}
	return s.Memory.Get(ctx, key)
}

func (s *spyStore) Put(ctx context.Context, key string, e model.CacheEntry, ttl time.Duration) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	if s.failPut {
		return errors.New("store unreachable")
	}
	return s.Memory.Put(ctx, key, e, ttl)
}

func (s *spyStore) Increment(ctx context.Context, key, field string, delta int64) error {
	s.increments.Add(1)
	if s.failIncr {
		return errors.New("store unreachable")
	}
	return s.Memory.Increment(ctx, key, field, delta)
}

func (s *spyStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// countingResolver records calls and returns a fixed result.
type countingResolver struct {
	name     string
	priority int
	result   *model.DiagnosticRecord
	err      error
	calls    int
}

func (c *countingResolver) Name() string  { return c.name }
func (c *countingResolver) Priority() int { return c.priority }

func (c *countingResolver) Resolve(context.Context, resolver.Request) (*model.DiagnosticRecord, error) {
	c.calls++
	return c.result, c.err
}

type harness struct {
	chain     *resolver.Chain
	cache     *resolver.Cache
	store     *spyStore
	primary   *fakeProvider
	secondary *fakeProvider
}

func newHarness(t *testing.T, primary, secondary *fakeProvider) *harness {
	t.Helper()
	base, err := knowledge.Load(nil)
	require.NoError(t, err)

	s := newSpyStore()
	logger := discardLogger()
	admission := resolver.NewAdmission(s, resolver.AdmissionConfig{Namespace: "cache", Logger: logger})
	cache := resolver.NewCache(s, "cache", logger)
	live := resolver.NewLive([]provider.Provider{primary, secondary}, admission, resolver.LiveConfig{Logger: logger})

	return &harness{
		chain:     resolver.NewChain(logger, live, cache, resolver.NewKnowledgeBase(base, 0, logger)),
		cache:     cache,
		store:     s,
		primary:   primary,
		secondary: secondary,
	}
}

func (h *harness) resolve(t *testing.T, text string, p model.UserProfile) *model.DiagnosticRecord {
	t.Helper()
	d, err := h.chain.Resolve(context.Background(), resolver.NewRequest(text, p, 1))
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

// blockingProvider waits for its context to end.
type blockingProvider struct{ name string }

func (b *blockingProvider) Name() string { return b.name }

func (b *blockingProvider) Generate(ctx context.Context, _ string, _ provider.ProfileContext) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
