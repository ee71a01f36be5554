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

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/newmiodek/rejestr-skladek/internal/auth"
	"github.com/newmiodek/rejestr-skladek/internal/config"
	"github.com/newmiodek/rejestr-skladek/internal/feedback"
	"github.com/newmiodek/rejestr-skladek/internal/metrics"
	"github.com/newmiodek/rejestr-skladek/internal/middleware"
	"github.com/newmiodek/rejestr-skladek/internal/service"
	"github.com/newmiodek/rejestr-skladek/internal/storage/sqlite"
	"github.com/newmiodek/rejestr-skladek/internal/submit"
	"github.com/newmiodek/rejestr-skladek/pkg/formapi/formapiconnect"
	"github.com/newmiodek/rejestr-skladek/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.DevSecret() {
		slog.Warn("FORM_TOKEN_SECRET not set, signing form tokens with the development secret", "env", cfg.Env)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	animator := feedback.NewAnimator(
		feedback.WithDuration(cfg.ShakeDuration),
		feedback.WithOnShake(m.Shakes.Inc),
	)
	submitter := submit.NewHTTPSubmitter(cfg.SubmitURL, cfg.SubmitTimeout,
		submit.WithLoginPath(cfg.LoginPath),
		submit.WithSuccessPattern(cfg.SuccessPattern),
	)
	slog.Info("Forwarding valid forms", "submit_url", cfg.SubmitURL)

	mux := http.NewServeMux()

	// Register Connect service. The token interceptor runs first so the
	// others see the form ID.
	interceptors := connect.WithInterceptors(
		middleware.RequireFormToken(tokens, formapiconnect.FormServiceOpenFormProcedure),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)
	formService := service.NewFormService(store, tokens, submitter, animator, m)
	formPath, formHandler := formapiconnect.NewFormServiceHandler(formService, interceptors)
	mux.Handle(formPath, formHandler)

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Add logging and CORS middleware
	loggedHandler := middleware.RequestLogger(middleware.CORS(cfg.CORSOrigins...)(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go formService.RunSweeper(ctx, cfg.SweepInterval)

	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
