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

	"github.com/gin-gonic/gin"
	"github.com/josemcv/tabsync/internal/application/store"
	"github.com/josemcv/tabsync/internal/config"
	"github.com/josemcv/tabsync/internal/infrastructure/database"
	"github.com/josemcv/tabsync/internal/infrastructure/ledgermem"
	"github.com/josemcv/tabsync/internal/infrastructure/ledgerpg"
	"github.com/josemcv/tabsync/internal/infrastructure/overflow"
	"github.com/josemcv/tabsync/internal/ledger"
	"github.com/josemcv/tabsync/internal/presentation/http/handler"
	"github.com/josemcv/tabsync/internal/presentation/http/routes"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the backing ledger. The memory simulation covers
	// disconnected environments; realtime sync is only available against
	// the real store.
	var led ledger.Ledger
	switch cfg.Ledger.Mode {
	case config.LedgerModeMemory:
		logger.Info("using in-memory ledger simulation")
		led = ledgermem.New()
	default:
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			logger.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		if err := database.AutoMigrate(db); err != nil {
			logger.Error("failed to run migrations", "err", err)
			os.Exit(1)
		}
		if err := database.SetupChangeFeed(db); err != nil {
			logger.Error("failed to install change feed", "err", err)
			os.Exit(1)
		}
		led = ledgerpg.New(db, ledgerpg.NewChangeFeed(cfg.Database.DSN(), logger))
	}

	overflowStore, err := overflow.New(cfg.Storage.Path)
	if err != nil {
		logger.Error("failed to open overflow store", "err", err)
		os.Exit(1)
	}

	notices := store.NewLogSink(logger)
	tabStore := store.NewTabStore(led, notices, logger)
	registrar := store.NewSaleRegistrar(led, overflowStore, notices, logger)

	notifier := store.NewSyncNotifier(led.Changes(),
		func(ctx context.Context) { tabStore.Reload(ctx) },
		cfg.Sync.DebounceWindow, logger)
	if err := notifier.Start(ctx); err != nil {
		logger.Error("failed to start sync notifier", "err", err)
		os.Exit(1)
	}
	defer notifier.Close()

	if led.Changes() != nil {
		watcher := store.NewConnectivityWatcher(led.Ping, cfg.Sync.ProbeInterval,
			func() { notifier.WakeImmediate("connectivity restored") }, logger)
		watcher.Start(ctx)
		defer watcher.Close()
	}

	handlers := &routes.Handlers{
		Tab:  handler.NewTabHandler(tabStore),
		Sale: handler.NewSaleHandler(registrar, tabStore),
		Sync: handler.NewSyncHandler(notifier),
	}
	router := routes.Setup(handlers, &routes.Deps{Cfg: cfg, Log: logger})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "service", cfg.App.Name, "port", port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
}
