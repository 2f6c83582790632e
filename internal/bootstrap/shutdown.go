package bootstrap

import (
	"context"
	"io"
	"log/slog"
)

type httpServer interface {
	Stop(ctx context.Context) error
}

type roomRegistry interface {
	Shutdown(ctx context.Context) error
}

type stopper interface {
	Stop()
}

type closer interface {
	Close()
}

// ShutdownComponents holds all components that need graceful shutdown.
// Nil fields are skipped.
type ShutdownComponents struct {
	Server    httpServer
	Scheduler stopper
	Rooms     roomRegistry
	Pool      stopper
	Journal   io.Closer
	Ledger    closer
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in dependency order:
// 1. HTTP server (stop accepting new connections)
// 2. Scheduler (no more reaper ticks)
// 3. Rooms (drain in-flight actions, close sessions)
// 4. Worker pool (finish queued persistence)
// 5. Journal and ledger
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}

	if components.Rooms != nil {
		if err := components.Rooms.Shutdown(ctx); err != nil {
			slog.Error(LogMsgRoomsShutdownFailed, "error", err)
		}
	}

	if components.Pool != nil {
		components.Pool.Stop()
	}

	if components.Journal != nil {
		if err := components.Journal.Close(); err != nil {
			slog.Error(LogMsgJournalCloseFailed, "error", err)
		}
	}

	if components.Ledger != nil {
		components.Ledger.Close()
	}

	slog.Info(LogMsgServerStopped)
}
