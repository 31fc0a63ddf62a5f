// Package app wires the Lingua auth server runtime: config, logging, database,
// and the HTTP surface.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lingua/cmd/identity"
	authapi "lingua/internal/auth/api"
	"lingua/internal/auth/session"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the server runtime: it owns the HTTP server and the DB pool lifecycle.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	auth *authapi.Handler
}

// Option overrides optional collaborators before wiring completes.
type Option func(*options)

type options struct {
	verifier  authapi.CredentialVerifier
	exchanger authapi.CodeExchanger
}

// WithCredentialVerifier wires a real password verifier; without one, logins
// fail closed.
func WithCredentialVerifier(v authapi.CredentialVerifier) Option {
	return func(o *options) { o.verifier = v }
}

// WithCodeExchanger wires a real federated-code exchanger.
func WithCodeExchanger(e authapi.CodeExchanger) Option {
	return func(o *options) { o.exchanger = e }
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	signer, err := session.NewSigner(sessCfg)
	if err != nil {
		return nil, err
	}

	var (
		dbPool    *pgxpool.Pool
		dbEnabled bool
		sessStore session.Store
		users     identity.Store
	)
	if cfg.DatabaseURL == "" {
		// DB-less development mode: volatile stores, nothing survives restart.
		log.Info("db.disabled.inmemory_store")
		sessStore = session.NewMemoryStore()
		users = identity.NewMemoryStore()
	} else {
		dbPool, err = NewDBPool(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			if err := RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
				dbPool.Close()
				return nil, err
			}
		}
		log.Info("db.enabled.postgres_store")
		dbEnabled = true
		sessStore = session.NewPostgresStore(dbPool)
		idStore, err := identity.NewPostgresStore(dbPool)
		if err != nil {
			dbPool.Close()
			return nil, err
		}
		users = idStore
	}

	sessions := session.NewService(sessCfg, sessStore, users, signer)

	authCfg := authapi.LoadConfigFromEnv()
	handlerOpts := []authapi.HandlerOption{
		authapi.WithMetrics(authapi.NewMetrics(nil)),
	}
	if dbPool != nil {
		handlerOpts = append(handlerOpts, authapi.WithAuditPool(dbPool))
	}
	if o.verifier != nil {
		handlerOpts = append(handlerOpts, authapi.WithCredentialVerifier(o.verifier))
	}
	if o.exchanger != nil {
		handlerOpts = append(handlerOpts, authapi.WithCodeExchanger(o.exchanger))
	}
	auth, err := authapi.NewHandler(log, authCfg, sessions, users, handlerOpts...)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		auth:      auth,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestID(WithRequestLogging(mux, a.log)),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
