package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"surfapp/internal/apiclient"
	"surfapp/internal/auth"
	"surfapp/internal/backend"
	"surfapp/internal/config"
	"surfapp/internal/directclient"
	"surfapp/internal/httpclient"
	"surfapp/internal/memory"
	"surfapp/internal/metrics"
	"surfapp/internal/repository"
	"surfapp/internal/sessionstore"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is what every client subcommand runs against: one transport, chosen
// once from config, and the auth controller restored from the session store.
type app struct {
	cfg    *config.Config
	client apiclient.Client
	auth   *auth.Controller
	store  *sessionstore.Store

	closers []func()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Log.Level)
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	client, closeClient, err := newClient(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	a.client = client
	a.closers = append(a.closers, closeClient)

	kv, err := openSessionKV(ctx, cfg.Session)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = sessionstore.New(kv)
	a.closers = append(a.closers, func() {
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close session store")
		}
	})

	var opts []auth.Option
	if cfg.Session.Revalidate {
		opts = append(opts, auth.WithRevalidation())
	}
	a.auth = auth.NewController(client, a.store, opts...)
	if err := a.auth.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not restore session")
	}
	return a, nil
}

// close waits for background work and releases resources in reverse order.
func (a *app) close() {
	if a.auth != nil {
		a.auth.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// requireUser fails unless a session is active.
func (a *app) requireUser() error {
	if !a.auth.Snapshot().Authenticated() {
		return apiclient.Newf(apiclient.CodeNotAuthenticated, "not signed in, run `surfapp login` first")
	}
	return nil
}

// withApp adapts a handler that needs an app to cobra's RunE.
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return run(ctx, a, args)
	}
}

// newClient builds the configured transport.
func newClient(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (apiclient.Client, func(), error) {
	switch cfg.Transport {
	case config.TransportDirect:
		b, closeBackend, err := openBackend(ctx, cfg.Database, true)
		if err != nil {
			return nil, nil, err
		}
		return directclient.New(b, directclient.WithMetrics(m)), closeBackend, nil

	default:
		opts := []httpclient.Option{httpclient.WithMetrics(m)}
		if bc := cfg.API.Breaker; bc.Enabled {
			opts = append(opts, httpclient.WithBreaker(httpclient.BreakerConfig{
				MaxRequests:         bc.HalfOpenRequests,
				Interval:            bc.Interval,
				Timeout:             bc.OpenTimeout,
				ConsecutiveFailures: bc.ConsecutiveFailures,
			}))
		}
		return httpclient.New(cfg.API.URL, cfg.Timeout(), opts...), func() {}, nil
	}
}

// openBackend opens the data store. The memory driver starts empty, or from
// the demo data when seed is set.
func openBackend(ctx context.Context, cfg config.DatabaseConfig, seed bool) (backend.Backend, func(), error) {
	if cfg.Driver == "postgres" {
		pool, err := repository.Open(ctx, cfg.URL, cfg.AnonKey)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Msg("Database connection established")
		return repository.NewPostgres(pool), pool.Close, nil
	}

	db := memory.New()
	if !seed {
		return db, func() {}, nil
	}
	if err := memory.Seed(ctx, db); err != nil {
		return nil, nil, err
	}
	return db, func() {}, nil
}

func openSessionKV(ctx context.Context, cfg config.SessionConfig) (sessionstore.KV, error) {
	switch cfg.Driver {
	case "redis":
		return sessionstore.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		return sessionstore.NewMemoryKV(), nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
		return sessionstore.OpenBadger(cfg.Path)
	}
}
