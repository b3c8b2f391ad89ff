package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"credgate/internal/accessrequest/handler"
	"credgate/internal/accessrequest/metrics"
	"credgate/internal/accessrequest/service"
	"credgate/internal/accessrequest/store"
	"credgate/internal/accessrequest/tracer"
	"credgate/internal/audit"
	"credgate/internal/notification"
	"credgate/internal/platform/config"
	"credgate/internal/platform/database"
	"credgate/internal/platform/health"
	"credgate/internal/platform/logger"
	"credgate/internal/token"
	transport "credgate/internal/transport/http"
)

const issuer = "credgate"

func main() {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	healthHandler := health.New(cfg.Environment)

	var requestStore service.Store
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		pool, err := database.New(dbCfg)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if pool == nil {
			log.Error("postgres backend selected but DATABASE_URL is empty")
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Migrate(context.Background()); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		})
		requestStore = store.NewPostgres(pool.DB())
	case config.BackendFile:
		requestStore = store.NewFile(cfg.StorePath, log)
	default:
		requestStore = store.New()
	}

	auditor := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	requestMetrics := metrics.New()
	svc := service.NewService(requestStore, auditor, log,
		service.WithMetrics(requestMetrics),
		service.WithTracer(tracer.NewOTel()),
		service.WithStrictTransitions(cfg.StrictTransitions),
	)

	tokenService := token.NewService(cfg.JWTSigningKey, issuer, cfg.TokenTTL)

	router := transport.NewRouter(transport.RouterConfig{
		Logger:         log,
		TokenValidator: token.NewMiddlewareAdapter(tokenService),
		Health:         healthHandler,
		Authenticated: []transport.Registrar{
			handler.NewHandler(svc, log, handler.WithMetrics(requestMetrics)),
			notification.NewHandler(requestStore, log),
		},
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server starting",
			"addr", cfg.Addr,
			"store_backend", cfg.StoreBackend,
			"strict_transitions", cfg.StrictTransitions,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("server shutting down")
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
