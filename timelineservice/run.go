package timelineservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/formansean/ufo-timline/internal/api"
	"github.com/formansean/ufo-timline/internal/auth"
	"github.com/formansean/ufo-timline/internal/config"
	"github.com/formansean/ufo-timline/internal/data"
	"github.com/formansean/ufo-timline/internal/health"
	"github.com/formansean/ufo-timline/internal/logger"
	"github.com/formansean/ufo-timline/internal/metrics"
	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/services"
	"github.com/formansean/ufo-timline/internal/store"
	"github.com/formansean/ufo-timline/internal/store/memory"
	"github.com/formansean/ufo-timline/internal/store/sqlite"
	"github.com/formansean/ufo-timline/internal/viewstate"
)

const sweepInterval = time.Minute

// Run starts the timeline service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("timeline-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("store_driver", cfg.StoreDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("dev_mode", cfg.IsDevMode()).
		Msg("Timeline service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	met := metrics.New()

	st, adminSt, err := initStores(ctx, cfg, log, met)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store unavailable")
		return err
	}
	defer func() { _ = st.Close() }()
	if adminSt != st {
		defer func() { _ = adminSt.Close() }()
	}

	sessions := startSessionManager(ctx, cfg, st, met)

	handler := buildHandler(st, adminSt, sessions, cfg, met)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, adminSt)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, handler)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initStores opens the primary store per the configured driver and seeds it
// with the event dataset, then resolves the persisted admin mirror. The
// in-memory driver loads from SEED_FILE (hot-reloading when WATCH_SEED is on)
// or falls back to the embedded dataset; the sqlite driver imports the
// embedded dataset only when the events table is empty. The admin mirror is
// the sqlite store when one is configured, the primary store otherwise.
func initStores(ctx context.Context, cfg *config.Config, log zerolog.Logger, met *metrics.Metrics) (store.Store, store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		st, err := openSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil

	case "memory":
		st, err := openMemory(ctx, cfg, log, met)
		if err != nil {
			return nil, nil, err
		}
		if cfg.SQLitePath == "" {
			return st, st, nil
		}
		adminSt, err := openSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			_ = st.Close()
			return nil, nil, err
		}
		return st, adminSt, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

func openSQLite(ctx context.Context, path string, log zerolog.Logger) (store.Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := sqlite.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	st := sqlite.NewWithDB(db)
	if err := seedIfEmpty(ctx, st, log); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func openMemory(ctx context.Context, cfg *config.Config, log zerolog.Logger, met *metrics.Metrics) (store.Store, error) {
	if cfg.SeedFile != "" {
		st, err := memory.NewFromFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if cfg.WatchSeed {
			if err := st.Watch(ctx, log, met.SeedReloaded); err != nil {
				return nil, err
			}
		}
		return st, nil
	}
	events, err := data.Events()
	if err != nil {
		return nil, err
	}
	return memory.NewFromEvents(events)
}

// seedIfEmpty imports the embedded dataset into a fresh sqlite database.
func seedIfEmpty(ctx context.Context, st store.Store, log zerolog.Logger) error {
	existing, err := st.Events().All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	events, err := data.Events()
	if err != nil {
		return err
	}
	for _, ev := range events {
		ev := ev
		if _, err := st.Events().Create(ctx, &ev); err != nil {
			return err
		}
	}
	log.Info().Int("events", len(events)).Msg("seeded sqlite store from embedded dataset")
	return nil
}

// startSessionManager creates the view-state session manager and a background
// sweeper that evicts idle sessions.
func startSessionManager(ctx context.Context, cfg *config.Config, st store.Store, met *metrics.Metrics) *viewstate.Manager {
	source := func() []model.Event {
		events, err := st.Events().All(ctx)
		if err != nil {
			return nil
		}
		return events
	}
	sessions := viewstate.NewManager(source, cfg.TimelineWidth, cfg.GlobeSize, cfg.SessionTTL)
	if cfg.FavoritesFile != "" {
		sessions.PersistFavorites(cfg.FavoritesFile)
	}

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sessions.Sweep(now)
				met.SetActiveSessions(sessions.Len())
			}
		}
	}()
	return sessions
}

// buildHandler wires services, auth, and the router, then wraps it in CORS.
func buildHandler(st, adminSt store.Store, sessions *viewstate.Manager, cfg *config.Config, met *metrics.Metrics) http.Handler {
	events := services.NewEventService(st)
	tokens := auth.NewTokenAuthorizer(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminTokenTTL)

	var authorizer auth.Authorizer = tokens
	if cfg.IsDevMode() {
		authorizer = auth.Chain{auth.NewMockAuthorizer(), tokens}
	}

	router := api.NewRouter(api.Deps{
		Events:     events,
		Today:      services.NewTodayService(st),
		Stats:      services.NewStatsService(st),
		Tokens:     tokens,
		Authorizer: authorizer,
		Sessions:   sessions,
		Metrics:    met,

		AdminEvents: services.NewEventService(adminSt),
	})

	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins(strings.Split(cfg.CORSOrigins, ",")),
		ghandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		ghandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	return cors(router)
}

// startHealthCheckers starts the store checkers and service-level aggregator; binds health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st, adminSt store.Store) *health.ServiceHealthChecker {
	probeTimeout := 5 * time.Second

	storeChecker := store.NewStoreHealthChecker("store", st, log, probeTimeout)
	go storeChecker.Start(ctx, cfg.HealthInterval)
	checkers := []health.HealthChecker{storeChecker}

	if adminSt != st {
		adminChecker := store.NewStoreHealthChecker("admin store", adminSt, log, probeTimeout)
		go adminChecker.Start(ctx, cfg.HealthInterval)
		checkers = append(checkers, adminChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, cfg.HealthInterval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is the startup health window, calculated as twice the
// probe interval with a minimum of 60 seconds.
func startupHealthTimeout(interval time.Duration) time.Duration {
	timeout := interval * 2
	if timeout < time.Minute {
		return time.Minute
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	// Checkers start unhealthy and need time to run their first probe.
	timeout := startupHealthTimeout(cfg.HealthInterval)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: stores not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
