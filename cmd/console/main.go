package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/timberhoa/rollcall/internal/attendance"
	"github.com/timberhoa/rollcall/internal/capture"
	"github.com/timberhoa/rollcall/internal/config"
	"github.com/timberhoa/rollcall/internal/httpapi"
	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/remote"
	"github.com/timberhoa/rollcall/internal/roster"
	"github.com/timberhoa/rollcall/internal/scan"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.NewDefault(slog.LevelInfo)

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "console exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	snap := roster.NewSnapshot(db)
	if err := snap.Init(ctx); err != nil {
		return err
	}

	adapter := remote.NewHTTPAdapter(cfg.RosterAPIBaseURL, cfg.RequestTimeout, log)
	hub := httpapi.NewHub(cfg.UIOrigin, log)
	defer hub.Close()

	store := roster.NewStore(adapter, log,
		roster.WithSnapshot(snap),
		// the UI refetches on this signal; no payload needed
		roster.WithOnChange(func() { hub.Broadcast("roster", nil) }),
	)
	if err := store.Load(ctx); err != nil {
		return err
	}

	orch := attendance.New(store, cfg.AcceptThreshold, log)

	device := capture.NewSyntheticDevice(0)
	scanner := scan.New(device, orch, log,
		scan.WithObserver(func(e scan.Event) { hub.Broadcast("scan", e) }),
	)
	defer scanner.StopScan()

	srv := httpapi.NewServer(store, scanner, orch, hub, cfg.UIOrigin, log)
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Router()}

	if cfg.SyncInterval > 0 {
		go refreshLoop(ctx, store, cfg.SyncInterval, log)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	// best-effort initial sync; offline start is fine, the snapshot carries us
	if err := store.FetchAll(ctx); err != nil {
		log.Warn(ctx, "initial sync failed, starting from local state", "err", err)
	}

	log.Info(ctx, "console listening", "addr", cfg.ListenAddr, "roster", cfg.RosterAPIBaseURL)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// refreshLoop keeps the local collection loosely converging on the remote
// truth. Callers needing a fresh view can still POST /api/refresh.
func refreshLoop(ctx context.Context, store *roster.Store, interval time.Duration, log logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fetchCtx, cancel := context.WithTimeout(ctx, interval)
			if err := store.FetchAll(fetchCtx); err != nil {
				log.Debug(ctx, "periodic refresh failed", "err", err)
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
