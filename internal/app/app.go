package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/painel-financeiro/painel/internal/config"
	"github.com/painel-financeiro/painel/internal/database"
	"github.com/painel-financeiro/painel/internal/rest"
	"github.com/painel-financeiro/painel/pkg/notify"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, session storage, router, and server lifecycle.
type Application struct {
	cfg      config.Application
	deps     *Dependencies
	db       *pgxpool.Pool
	notifier interface{ Close() error }
	srv      *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run(). The database is
// opened and migrated only when sessions are stored in Postgres.
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	var db *pgxpool.Pool
	if cfg.Session.Store == "postgres" {
		if err := database.Migrate(cfg.Database, 0); err != nil {
			return nil, err
		}
		var err error
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
	}

	deps := BuildDependencies(db, cfg)

	notifier, err := notify.Start(cfg.Notify, deps.EventBus)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	srv := &http.Server{
		Handler:      NewRouter(deps, cfg),
		Addr:         cfg.Listen,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, db: db, notifier: notifier, srv: srv}, nil
}

// NewRouter builds the API routes and, when enabled, the frontend fallback.
func NewRouter(deps *Dependencies, cfg config.Application) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r, deps)
	RegisterRoutes(r, deps)

	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Path, "index.html")
		r.PathPrefix("/").Handler(frontend)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		a.sweep(ctx)
		return nil
	})
	return g.Wait()
}

// sweep drops idle drafts and expired session tokens until ctx is done.
func (a *Application) sweep(ctx context.Context) {
	interval := a.cfg.Drafts.SweepInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.deps.Drafts.Sweep(); n > 0 {
				log.Debugf("Dropped %d idle drafts", n)
			}
			if a.deps.PgTokenStore != nil {
				if n, err := a.deps.PgTokenStore.DeleteExpired(ctx); err == nil && n > 0 {
					log.Debugf("Deleted %d expired session tokens", n)
				}
			}
		}
	}
}

func (a *Application) close() {
	if err := a.notifier.Close(); err != nil {
		log.Errorf("failed to close notifier: %v", err)
	}
	if a.db != nil {
		a.db.Close()
	}
}
