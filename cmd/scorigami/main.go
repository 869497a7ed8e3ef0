package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scorigami/scorigami/internal/api"
	"github.com/scorigami/scorigami/internal/auth"
	"github.com/scorigami/scorigami/internal/board"
	"github.com/scorigami/scorigami/internal/config"
	"github.com/scorigami/scorigami/internal/ingest"
	"github.com/scorigami/scorigami/internal/ledger"
	"github.com/scorigami/scorigami/internal/matrix"
	"github.com/scorigami/scorigami/internal/metrics"
	"github.com/scorigami/scorigami/internal/source"
	"github.com/scorigami/scorigami/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file; empty uses built-in defaults")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("scorigami starting", "config", *configPath)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	level.Set(cfg.Scorigami.SlogLevel())

	slog.Info("config loaded",
		"http_port", cfg.Scorigami.HTTPPort,
		"ledger_url", cfg.Scorigami.Ledger.URL,
		"auth_mode", cfg.Scorigami.Auth.Mode,
		"log_level", level.Level().String(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := metrics.New()

	// Ingestion is all-or-nothing; any failure ends the process.
	l, err := load(ctx, cfg.Scorigami, reg)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrNoConnectivity):
			slog.Error("no network connectivity, cannot load score history", "err", err)
		case errors.Is(err, ingest.ErrEmptyLedger):
			slog.Error("score history is empty", "err", err)
		default:
			slog.Error("failed to load score history", "err", err)
		}
		os.Exit(1)
	}

	params := cfg.Scorigami.Saturation.Params()
	params.Now = time.Now
	st, err := board.New(l, matrix.NewBuilder(params))
	if err != nil {
		slog.Error("failed to build board", "err", err)
		os.Exit(1)
	}
	observeBoard(reg, st.Summary())
	st.Subscribe(func(ev board.Event) {
		reg.IncEvent(string(ev.Kind))
		if ev.Kind == board.EventRebuilt {
			observeBoard(reg, st.Summary())
		}
	})
	slog.Info("board ready",
		"rows", st.Board().Rows(),
		"cols", st.Board().Cols(),
		"scorigami", st.Board().Scorigami(),
		"session", st.Session(),
	)

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(live config.Live) {
				level.Set(live.LogLevel)
				if err := st.SetParams(live.Saturation.Params()); err != nil {
					slog.Error("failed to apply saturation settings", "err", err)
				}
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	// Change feed for UI clients.
	hub := ws.New(st, cfg.Scorigami.Stream.Keepalive)
	reg.SetClientsFunc(hub.Count)
	go hub.Run(ctx)

	guard := auth.APIKey(
		cfg.Scorigami.Auth.Mode,
		cfg.Scorigami.Auth.EffectiveHeader(),
		cfg.Scorigami.Auth.Key(),
	)

	r := chi.NewRouter()
	r.Handle("/ws/stream", hub)
	r.Handle("/metrics", reg.Handler())
	r.Mount("/", api.New(st, guard))

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Scorigami.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Scorigami.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("scorigami shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// load runs the startup ingestion with the configured fetch timeout.
func load(ctx context.Context, cfg config.ServiceConfig, reg *metrics.Registry) (*ledger.Ledger, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Ledger.FetchTimeout+cfg.Connectivity.Timeout)
	defer cancel()

	start := time.Now()
	l, err := ingest.Load(ctx, source.New(cfg), ledger.Options{
		DetailURLTemplate:  cfg.Ledger.DetailURLTemplate,
		EarliestSeasonYear: cfg.Ledger.EarliestSeasonYear,
	})
	if err != nil {
		return nil, err
	}
	reg.ObserveIngest(l.Len(), time.Since(start))
	return l, nil
}

func observeBoard(reg *metrics.Registry, s board.Summary) {
	reg.SetBoard(s.Generation, s.Rows, s.Cols, s.Scorigami)
}
