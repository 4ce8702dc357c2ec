package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finprospect/internal/enrich"
	"github.com/sells-group/finprospect/internal/source"
	"github.com/sells-group/finprospect/internal/store"
	"github.com/sells-group/finprospect/internal/unify"
)

// appEnv holds the initialized store, source registry and pipeline pieces
// shared by the enrich/search/serve commands.
type appEnv struct {
	Store    store.Store
	Registry *source.Registry
	Orch     *enrich.Orchestrator
	Searcher *unify.Searcher
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates config for the given mode and builds the environment.
// Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	registry, err := initRegistry()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	searcher := unify.NewSearcher(registry).WithLimits(
		time.Duration(cfg.Sources.TimeoutSecs)*time.Second,
		cfg.Sources.MaxResults,
	)

	return &appEnv{
		Store:    st,
		Registry: registry,
		Orch:     enrich.New(registry, st),
		Searcher: searcher,
	}, nil
}

// initStore opens the configured backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initRegistry builds the four registry source clients, applying per-source
// overrides from the optional sources file.
func initRegistry() (*source.Registry, error) {
	overrides := &source.RegistryConfig{}
	if cfg.Sources.RegistryFile != "" {
		loaded, err := source.LoadRegistryConfig(cfg.Sources.RegistryFile)
		if err != nil {
			return nil, err
		}
		overrides = loaded
		zap.L().Info("source overrides loaded", zap.String("file", cfg.Sources.RegistryFile))
	}

	hc := &http.Client{Timeout: time.Duration(cfg.Sources.TimeoutSecs) * time.Second}
	var clients []source.Client
	build := map[string]func(source.SourceConfig, *http.Client) source.Client{
		source.SourcePRH:    func(sc source.SourceConfig, hc *http.Client) source.Client { return source.NewPRH(sc, hc) },
		source.SourceVero:   func(sc source.SourceConfig, hc *http.Client) source.Client { return source.NewVero(sc, hc) },
		source.SourceStatFi: func(sc source.SourceConfig, hc *http.Client) source.Client { return source.NewStatFi(sc, hc) },
		source.SourceNordic: func(sc source.SourceConfig, hc *http.Client) source.Client { return source.NewNordic(sc, hc) },
	}
	for name, fn := range build {
		sc := overrides.Get(name)
		if sc.Disabled {
			zap.L().Info("source disabled", zap.String("source", name))
			continue
		}
		clients = append(clients, fn(sc, hc))
	}
	if len(clients) == 0 {
		return nil, eris.New("all sources are disabled")
	}
	return source.NewRegistry(clients...), nil
}
