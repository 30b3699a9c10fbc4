package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/postpilot/internal/adapter/driven/gemini"
	"github.com/ericfisherdev/postpilot/internal/adapter/driven/razorpay"
	httphandler "github.com/ericfisherdev/postpilot/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/postpilot/internal/adapter/driving/web"
	"github.com/ericfisherdev/postpilot/internal/application"
	"github.com/ericfisherdev/postpilot/internal/bootstrap"
	"github.com/ericfisherdev/postpilot/internal/config"
	"github.com/ericfisherdev/postpilot/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env (if any) and configuration.
	envFile, err := config.LoadEnvFile()
	if err != nil {
		return err
	}
	if envFile != "" {
		slog.Info("env file loaded", "path", envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store,
		"gemini_model", cfg.GeminiModel,
		"gemini_key_set", cfg.HasGeminiKey(),
		"payments_configured", cfg.HasPaymentCredentials(),
		"currency", cfg.RazorpayCurrency,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Tracing, before any otelhttp handler or transport is built.
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: "postpilot",
	}, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Error("tracing shutdown error", "error", err)
		}
	}()

	// 4. Metrics registry.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// 5. Open the user store.
	users, closeStore, err := bootstrap.OpenUserStore(ctx, cfg, metrics, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing user store", "error", closeErr)
		}
	}()

	// 6. Wire provider adapters.
	upstream := bootstrap.NewUpstreamClient(cfg.UpstreamTimeout)
	generator := gemini.NewClient(upstream, cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	gateway := razorpay.NewClient(upstream, cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if !cfg.HasGeminiKey() {
		slog.Warn("GEMINI_API_KEY not set, generation requests will fail")
	}
	if !cfg.HasPaymentCredentials() {
		slog.Warn("razorpay keys not set, payments disabled")
	}

	// 7. Application services.
	generationSvc := application.NewGenerationService(users, generator, cfg.GuestID, metrics, slog.Default())
	paymentSvc := application.NewPaymentService(users, gateway, cfg.RazorpayCurrency, cfg.RazorpayKeySecret, metrics, slog.Default())

	// 8. HTTP routes: API, web GUI, metrics.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(users, generationSvc, paymentSvc, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(gateway.KeyID(), cfg.RazorpayCurrency, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	observability.RegisterMetricsEndpoint(mux, registry)

	handler := httphandler.ApplyMiddleware(mux, slog.Default(), metrics)
	handler = otelhttp.NewHandler(handler, "postpilot")

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("postpilot started",
		"listen_addr", cfg.ListenAddr,
		"landing", "/",
		"app", "/app",
		"payment", "/payment",
	)

	// 9. Wait for a shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
