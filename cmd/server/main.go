package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/osse101/HarvestRealm_Go/internal/auth"
	"github.com/osse101/HarvestRealm_Go/internal/bootstrap"
	"github.com/osse101/HarvestRealm_Go/internal/config"
	"github.com/osse101/HarvestRealm_Go/internal/journal"
	"github.com/osse101/HarvestRealm_Go/internal/room"
	"github.com/osse101/HarvestRealm_Go/internal/scheduler"
	"github.com/osse101/HarvestRealm_Go/internal/server"
	"github.com/osse101/HarvestRealm_Go/internal/transport/ws"
	"github.com/osse101/HarvestRealm_Go/internal/worker"
)

// @title HarvestRealm API
// @version 1.0
// @description Operational HTTP endpoints of the realm server. Gameplay runs over the /ws websocket.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		if cfg.IsProduction() {
			slog.Error("Environment validation failed", "error", err)
			os.Exit(1)
		}
		slog.Warn("Environment validation failed", "error", err)
	}
	for _, w := range warnings {
		slog.Warn("Environment warning", "warning", w)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger, err := bootstrap.OpenLedger(ctx, cfg)
	if err != nil {
		return err
	}

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start()

	deps := room.Deps{
		Ledger: ledger,
		Pool:   pool,
		Tuning: cfg.Tuning,
	}
	var journalWriter *journal.Writer
	if cfg.JournalDir != "" {
		journalWriter = journal.NewWriter(cfg.JournalDir)
		deps.Journal = journalWriter
	}

	manager, err := room.NewManager(deps)
	if err != nil {
		pool.Stop()
		ledger.Close()
		return err
	}

	sched := scheduler.New(pool)
	sched.Schedule(cfg.Tuning.RoomIdleTimeout/2, manager.ReaperJob())

	authenticator, err := auth.New(auth.Config{
		Secret:       cfg.AuthSecret,
		RequireToken: cfg.RequireAuthToken,
	})
	if err != nil {
		sched.Stop()
		pool.Stop()
		ledger.Close()
		return err
	}

	realm := ws.NewServer(manager, authenticator, ws.Config{
		DefaultWorldID: cfg.DefaultWorldID,
		AllowedOrigins: cfg.AllowedOrigins,
		QueueSize:      cfg.Tuning.OutboundQueueSize,
	})

	srv := server.NewServer(server.Options{
		Port:              cfg.Port,
		ServiceName:       cfg.ServiceName,
		TrustedProxies:    cfg.TrustedProxies,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		WorldCacheTTL:     cfg.WorldCacheTTL,
	}, ledger, realm)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	components := bootstrap.ShutdownComponents{
		Server:    srv,
		Scheduler: sched,
		Rooms:     manager,
		Pool:      pool,
		Ledger:    ledger,
	}
	if journalWriter != nil {
		components.Journal = journalWriter
	}
	bootstrap.GracefulShutdown(shutdownCtx, components)

	return err
}
