// Package app builds the resolver graph once at startup, in dependency order:
// providers, live resolver, chain, then the request facade.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tinkerloft/errdoctor/internal/config"
	"github.com/tinkerloft/errdoctor/internal/diagnose"
	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/metrics"
	"github.com/tinkerloft/errdoctor/internal/pattern"
	"github.com/tinkerloft/errdoctor/internal/provider"
	"github.com/tinkerloft/errdoctor/internal/resolver"
	"github.com/tinkerloft/errdoctor/internal/server"
	"github.com/tinkerloft/errdoctor/internal/store"
	"github.com/tinkerloft/errdoctor/internal/validate"
)

// App owns every long-lived component.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Store     store.Store
	Knowledge *knowledge.Base
	Templates *knowledge.Store
	Chain     *resolver.Chain
	Service   *diagnose.Service

	cache   *resolver.Cache
	janitor *store.Janitor
}

// Option customizes New.
type Option func(*options)

type options struct {
	providers []provider.Provider
	store     store.Store
}

// WithProviders replaces the providers built from configuration.
func WithProviders(ps ...provider.Provider) Option {
	return func(o *options) { o.providers = ps }
}

// WithStore replaces the store built from configuration.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// New wires an App from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.Register(a.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	a.Metrics = m

	if cfg.Knowledge.TemplatesDir != "" {
		a.Templates = knowledge.NewStore(config.ExpandHome(cfg.Knowledge.TemplatesDir))
	}
	a.Knowledge, err = knowledge.Load(a.Templates)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	a.Store = o.store
	if a.Store == nil {
		a.Store, err = OpenStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	providers := o.providers
	if providers == nil {
		providers, err = buildProviders(cfg.Live.Providers, logger)
		if err != nil {
			_ = a.Store.Close()
			return nil, err
		}
	}

	admission := resolver.NewAdmission(a.Store, resolver.AdmissionConfig{
		Namespace: cfg.Cache.Namespace,
		TTL:       cfg.Cache.TTL,
		Metrics:   m,
		Logger:    logger,
	})
	live := resolver.NewLive(providers, admission, resolver.LiveConfig{
		Timeout:           cfg.Live.Timeout,
		DefaultConfidence: cfg.Live.DefaultConfidence,
		Metrics:           m,
		Logger:            logger,
	})
	a.cache = resolver.NewCache(a.Store, cfg.Cache.Namespace, logger)

	a.Chain = resolver.NewChain(logger,
		resolver.WithMetrics(resolver.NewKnowledgeBase(a.Knowledge, cfg.Knowledge.Threshold, logger), m),
		resolver.WithMetrics(a.cache, m),
		resolver.WithMetrics(resolver.WithRateLimit(live, cfg.Live.RateLimit, m, logger), m),
	)

	a.Service = diagnose.New(diagnose.Config{
		Validator: validate.Default(pattern.DefaultMatcher()),
		Chain:     a.Chain,
		Profiles:  a.Store,
		History:   a.Store,
		Metrics:   m,
		Logger:    logger,
	})

	a.janitor, err = store.NewJanitor(a.Store, cfg.Storage.PurgeSchedule, logger)
	if err != nil {
		_ = a.Store.Close()
		return nil, err
	}

	logger.Info("errdoctor wired",
		"templates", a.Knowledge.Len(),
		"resolvers", a.Chain.Names(),
		"providers", providerNames(providers),
		"storage", cfg.Storage.Driver)
	return a, nil
}

// OpenStore opens the store selected by cfg.Driver.
func OpenStore(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemory(store.WithHistoryLimit(cfg.HistoryLimit)), nil
	case config.DriverSQLite, "":
		s, err := store.OpenSQLite(config.ExpandHome(cfg.Path), cfg.HistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Handler returns the HTTP API backed by this App.
func (a *App) Handler() http.Handler {
	return server.New(a.Service, server.Options{
		Templates:   a.Knowledge,
		Gatherer:    a.Registry,
		CORSOrigins: a.Config.Server.CORSOrigins,
		Logger:      a.Logger,
	})
}

// Start starts background jobs.
func (a *App) Start() {
	a.janitor.Start()
}

// Close stops background jobs, waits for pending cache updates and closes the store.
func (a *App) Close() error {
	a.janitor.Stop()
	a.cache.Wait()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// buildProviders skips providers that cannot be constructed (typically a missing API
// key) so the knowledge base and cache keep serving. Unknown names are fatal.
func buildProviders(cfgs []provider.Config, logger *slog.Logger) ([]provider.Provider, error) {
	out := make([]provider.Provider, 0, len(cfgs))
	for _, c := range cfgs {
		p, err := provider.New(c)
		if errors.Is(err, provider.ErrUnknown) {
			return nil, fmt.Errorf("build providers: %w", err)
		}
		if err != nil {
			logger.Warn("provider disabled", "provider", c.Name, "err", err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func providerNames(ps []provider.Provider) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}
