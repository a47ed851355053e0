package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/servicetracker/internal/featureflags"
	"github.com/yourorg/servicetracker/internal/handler"
	"github.com/yourorg/servicetracker/internal/identity"
	"github.com/yourorg/servicetracker/internal/infrastructure/logger"
	"github.com/yourorg/servicetracker/internal/infrastructure/redis"
	"github.com/yourorg/servicetracker/internal/observability/metrics"
	"github.com/yourorg/servicetracker/internal/observability/tracing"
	"github.com/yourorg/servicetracker/internal/repository"
	"github.com/yourorg/servicetracker/internal/security"
	"github.com/yourorg/servicetracker/internal/security/audit"
	"github.com/yourorg/servicetracker/internal/security/middleware"
	"github.com/yourorg/servicetracker/internal/security/ratelimit"
	"github.com/yourorg/servicetracker/internal/service"
	"github.com/yourorg/servicetracker/pkg/cache"
	"github.com/yourorg/servicetracker/pkg/config"
	"github.com/yourorg/servicetracker/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting ServiceTracker server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, "servicetracker", cfg.Environment)
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
		shutdownTracing = func(context.Context) error { return nil }
	}

	// 4. Initialize Redis client
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 5. Initialize Postgres connection pool
	dbCfg := database.DefaultConfig()
	dbCfg.Host = cfg.DatabaseHost
	dbCfg.Port = cfg.DatabasePort
	dbCfg.User = cfg.DatabaseUser
	dbCfg.Password = cfg.DatabasePassword
	dbCfg.Database = cfg.DatabaseName
	dbCfg.SSLMode = cfg.DatabaseSSLMode

	pool, err := database.NewConnectionPool(ctx, dbCfg, log)
	if err != nil {
		log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 6. Initialize repositories
	businessRepo := repository.NewPostgresBusinessRepository(pool, log)
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)
	customerRepo := repository.NewPostgresCustomerRepository(pool.GetDB(), log)
	serviceRepo := repository.NewPostgresServiceRepository(pool, log)

	// 7. Initialize identity verification
	tokenManager := identity.NewTokenManager(cfg.JWTSecret, "servicetracker")
	var verifier identity.Verifier
	if cfg.IdentityMode == config.IdentityModeRemote {
		verifier = identity.NewRemoteVerifier(cfg.IdentityURL, log)
	} else {
		verifier = identity.NewJWTVerifier(tokenManager)
	}

	// 8. Initialize services
	resolver := service.NewTenantResolver(verifier, userRepo, businessRepo, cache.New(), log)
	strictTransitions := featureflags.Enabled(featureflags.StrictTransitions)
	ticketService := service.NewTicketService(serviceRepo, redisClient, strictTransitions, log)
	customerRegistry := service.NewCustomerRegistry(customerRepo, serviceRepo, redisClient, log)
	dashboardService := service.NewDashboardService(serviceRepo, redisClient, cfg.DashboardCacheTTL, log)
	onboardingService := service.NewOnboardingService(businessRepo, userRepo, log)

	// 8a. Initialize security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMin, time.Minute)
	auditLogger := audit.NewLogger(log)
	authzService := security.NewAuthorizationService(log)

	// 9. Initialize handlers
	serviceHandler := handler.NewServiceHandler(ticketService, log)
	customerHandler := handler.NewCustomerHandler(customerRegistry, ticketService, authzService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	userHandler := handler.NewUserHandler(onboardingService, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 10. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/services/create", serviceHandler.Create)
	mux.HandleFunc("PATCH /api/services/{id}", serviceHandler.UpdateStatus)
	mux.HandleFunc("GET /api/services/{id}/updates", serviceHandler.Updates)
	mux.HandleFunc("GET /api/customers", customerHandler.List)
	mux.HandleFunc("POST /api/customers/create", customerHandler.Create)
	mux.HandleFunc("PATCH /api/customers/{id}", customerHandler.Update)
	mux.HandleFunc("DELETE /api/customers/{id}", customerHandler.Delete)
	mux.HandleFunc("GET /api/dashboard", dashboardHandler.Load)
	mux.HandleFunc("GET /api/user/business", userHandler.GetBusiness)
	mux.HandleFunc("POST /api/user/business", userHandler.Onboard)
	mux.HandleFunc("GET /api/user/check", userHandler.Check)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// Local identity mode serves its own signup/login
	if cfg.IdentityMode == config.IdentityModeLocal {
		credentialRepo := repository.NewPostgresCredentialRepository(pool.GetDB(), log)
		authService := service.NewAuthService(credentialRepo, tokenManager, cfg.TokenTTL, log)
		authHandler := handler.NewAuthHandler(authService, rateLimiter, log)
		mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
		mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	}

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> tracing -> content type ->
	// auth -> rate limit -> audit -> CORS -> mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			otelhttp.NewHandler(
				middleware.ValidateJSONContentType(log)(
					middleware.AuthMiddleware(resolver, log)(
						middleware.RateLimitMiddleware(rateLimiter, log)(
							middleware.AuditMiddleware(auditLogger)(handlerWithCORS),
						),
					),
				),
				"servicetracker.http",
			),
		),
		log,
	)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("identity_mode", cfg.IdentityMode),
		slog.Bool("strict_transitions", strictTransitions),
		slog.Int("rate_limit", cfg.RateLimitPerMin),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	log.Info("server stopped")
}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := audit.WithRequestID(r.Context(), reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
