package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/Shreyas-sv10/Shopperplex2/internal/catalog"
	"github.com/Shreyas-sv10/Shopperplex2/internal/common"
	"github.com/Shreyas-sv10/Shopperplex2/internal/config"
	"github.com/Shreyas-sv10/Shopperplex2/internal/health"
	"github.com/Shreyas-sv10/Shopperplex2/internal/ledger"
	"github.com/Shreyas-sv10/Shopperplex2/internal/obs"
	"github.com/Shreyas-sv10/Shopperplex2/internal/ratelimit"
	"github.com/Shreyas-sv10/Shopperplex2/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "keerana")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
	}

	persister, cleanup, err := newPersister(cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise snapshot backend")
	}
	if cleanup != nil {
		defer cleanup()
	}

	st, err := store.Open(ctx, persister)
	if err != nil {
		logger.Fatal().Err(err).Msg("load snapshot")
	}
	logger.Info().
		Str("backend", cfg.SnapshotBackend).
		Int("items", len(st.Items())).
		Msg("snapshot loaded")

	validate := common.NewValidator()
	catalogSvc := &catalog.Service{Store: st}
	catalogHandler := &catalog.Handler{Service: catalogSvc, Validate: validate}
	ledgerSvc := &ledger.Service{Store: st}
	ledgerHandler := &ledger.Handler{Service: ledgerSvc, Validate: validate}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:         snapshotChecker{persister: persister},
		SnapshotTimeout: 500 * time.Millisecond,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	billLimiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "keerana:ratelimit:"},
		Config: ratelimit.Config{
			Key:    ratelimit.ClientIPKey,
			Window: cfg.BillRateWindow,
			Max:    cfg.BillRateLimit,
		},
		OnError: func(err error) {
			logger.Error().Err(err).Msg("rate limiter")
		},
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/items", catalogHandler.List)
		v.With(billLimiter.Middleware).Post("/bills", ledgerHandler.Create)
		v.Get("/customers/{name}/history", ledgerHandler.History)

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAdmin(cfg.AdminUsername, cfg.AdminPassword))
			admin.Post("/items", catalogHandler.Create)
			admin.Put("/items/{id}/price", catalogHandler.UpdatePrice)
			admin.Post("/bills", ledgerHandler.AdminCreate)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func newPersister(cfg *config.Config, redisClient *redis.Client) (store.Persister, func(), error) {
	switch cfg.SnapshotBackend {
	case config.BackendFile:
		return store.FilePersister{Path: cfg.SnapshotPath}, nil, nil
	case config.BackendRedis:
		if redisClient == nil {
			return nil, nil, errors.New("redis backend requires REDIS_URL")
		}
		return store.RedisPersister{Client: redisClient, Key: cfg.SnapshotKey}, nil, nil
	case config.BackendPebble:
		p, err := store.OpenPebblePersister(cfg.SnapshotPath, cfg.SnapshotKey)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	case config.BackendMemory:
		return &store.MemoryPersister{}, nil, nil
	default:
		return nil, nil, errors.New("unknown snapshot backend " + cfg.SnapshotBackend)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

type snapshotChecker struct {
	persister store.Persister
}

func (c snapshotChecker) PingSnapshot(ctx context.Context, timeout time.Duration) error {
	p, ok := c.persister.(pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Ping(ctx)
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

// requireAdmin gates the admin routes behind the configured credential pair.
// There are no accounts or sessions; a single shared credential matches the
// scope of the tool.
func requireAdmin(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(u), []byte(username)) != 1 ||
				subtle.ConstantTimeCompare([]byte(p), []byte(password)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="keerana-admin"`)
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin credentials required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}
