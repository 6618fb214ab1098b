// Package app wires the order service together and runs it.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/orderms/internal/domain/order"
	"github.com/xenking/orderms/internal/handler"
	"github.com/xenking/orderms/internal/listener"
	"github.com/xenking/orderms/internal/repository"
	"github.com/xenking/orderms/pkg/health"
)

// Run creates all dependencies, starts the AMQP consumer and the HTTP
// server, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + schema.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health probes.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.SetReady(true)

	// Repository + domain service.
	orderRepo := repository.NewOrderRepository(pool)
	orderService := order.NewService(orderRepo)

	// AMQP consumer for order-created events.
	consumer, err := listener.New(listener.Config{
		URL:      cfg.AMQP.URL,
		Queue:    cfg.AMQP.Queue,
		Prefetch: cfg.AMQP.Prefetch,
	}, orderService, lg.Named("listener"))
	if err != nil {
		return errors.Wrap(err, "create consumer")
	}
	defer consumer.Close()

	// HTTP API: health endpoints + order query routes on one server.
	h := handler.NewHandler(orderService)
	api := handler.InjectLogger(lg)(handler.LogRequests(lg.Named("http"))(h.Routes()))

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(mux, "orderms",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Run(gctx)
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	// Graceful shutdown: drop readiness, drain, then stop the server.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
