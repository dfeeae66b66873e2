package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"github.com/xtding233/spin-wheel/internal/api/grpcapi"
	"github.com/xtding233/spin-wheel/internal/api/httpapi"
	"github.com/xtding233/spin-wheel/internal/api/ws"
	"github.com/xtding233/spin-wheel/internal/config"
	"github.com/xtding233/spin-wheel/internal/lib/logger/sl"
	"github.com/xtding233/spin-wheel/internal/persist"
	"github.com/xtding233/spin-wheel/internal/profile"
	"github.com/xtding233/spin-wheel/internal/session"
	"github.com/xtding233/spin-wheel/internal/spin"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting spin-wheel", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := profile.NewLoader(cfg.ProfileDir)
	prof, err := loader.Load(cfg.Profile)
	if err != nil {
		log.Error("failed to load profile", slog.String("profile", cfg.Profile), sl.Err(err))
		os.Exit(1)
	}
	log.Info("profile loaded",
		slog.String("profile", prof.Name),
		slog.String("version", prof.Version),
		sl.Any("weights", prof.Weights),
	)

	kv, err := persist.Open(ctx, cfg.StoreDSN)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error("failed to close storage", sl.Err(err))
		}
	}()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	registry := session.NewRegistry(cfg.SessionTTL, prof, session.Deps{
		Repo:      persist.NewRepository(kv),
		Presenter: func(id string) session.Presenter { return hub.Presenter(id) },
		OnOutcome: func(id string, out spin.Outcome) { hub.PublishOutcome(id, out) },
		Log:       log,
	})
	defer registry.Close()

	watcher := profile.NewFileWatcher(loader.Paths(cfg.Profile), cfg.ReloadInterval, func(path string) {
		loader.Invalidate()
		p, err := loader.Load(cfg.Profile)
		if err != nil {
			log.Error("profile reload rejected, keeping previous", slog.String("path", path), sl.Err(err))
			return
		}
		registry.SetProfile(p)
	})
	watcher.Start()
	defer watcher.Stop()

	grpcServer, err := grpcapi.NewWithAddr(cfg.GRPCAddr, log, registry)
	if err != nil {
		log.Error("failed to init grpc server", sl.Err(err))
		os.Exit(1)
	}
	grpcDone := make(chan error, 1)
	go func() { grpcDone <- grpcServer.Serve(ctx) }()

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.New(log, registry, hub).Router(),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	httpDone := make(chan error, 1)
	go func() {
		log.Info("http server started", slog.String("address", cfg.HTTPAddr))
		httpDone <- srv.ListenAndServe()
	}()

	grpcStopped := false
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-httpDone:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", sl.Err(err))
		}
		stop()
	case err := <-grpcDone:
		grpcStopped = true
		if err != nil {
			log.Error("grpc server failed", sl.Err(err))
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", sl.Err(err))
	}
	if !grpcStopped {
		select {
		case <-grpcDone:
		case <-time.After(cfg.HTTPServer.Timeout):
			log.Error("grpc server did not stop in time")
		}
	}

	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
