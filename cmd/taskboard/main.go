package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/drag"
	"taskboard/internal/metrics"
	"taskboard/internal/models"
	"taskboard/internal/server"
	"taskboard/internal/status"
	"taskboard/internal/storage"
	badgerstore "taskboard/internal/storage/badger"
	"taskboard/internal/storage/memory"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/task"
	"taskboard/internal/util"
	"taskboard/internal/view"
)

func main() {
	configFlag := flag.String("config", util.EnvOrDefault("TASKBOARD_CONFIG", "taskboard.yaml"), "Path to YAML config file")
	addrFlag := flag.String("addr", "", "HTTP listen address")
	staticFlag := flag.String("static", "", "Directory with built frontend")
	storageFlag := flag.String("storage", "", "Storage backend: sqlite, badger or memory")
	dbFlag := flag.String("db", "", "Path to sqlite database file")
	badgerFlag := flag.String("badger-dir", "", "Directory for the badger database")
	localeFlag := flag.String("locale", "", "Collation locale for alphabetical sort")
	logLevelFlag := flag.String("log-level", "", "Log level: debug, info, warn or error")
	writeConfigFlag := flag.String("write-config", "", "Write the resolved configuration as YAML to this path and exit")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addrFlag
		case "static":
			cfg.StaticDir = *staticFlag
		case "storage":
			cfg.Storage = *storageFlag
		case "db":
			cfg.DBPath = *dbFlag
		case "badger-dir":
			cfg.BadgerDir = *badgerFlag
		case "locale":
			cfg.Locale = *localeFlag
		case "log-level":
			cfg.LogLevel = *logLevelFlag
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *writeConfigFlag != "" {
		if err := config.Save(*writeConfigFlag, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("configuration written to %s\n", *writeConfigFlag)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	logger.Info("taskboard starting",
		slog.String("storage", cfg.Storage),
		slog.String("locale", cfg.Locale),
		slog.String("sort", cfg.DefaultSort),
	)

	kv, closer, err := openStorage(cfg, logger)
	if err != nil {
		logger.Error("unable to open storage", slog.String("backend", cfg.Storage), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closer.Close()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		kv = m.InstrumentKV(kv)
	}

	engine, err := view.NewEngine(cfg.Locale)
	if err != nil {
		logger.Error("invalid locale", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	statuses := status.NewRegistry(ctx, kv, logger)
	tasks := task.NewStore(ctx, kv, statuses, logger)
	dragCtl := drag.NewController(tasks, statuses, logger, m.ObserveDrag)

	srv := server.New(server.Deps{
		Statuses:    statuses,
		Tasks:       tasks,
		View:        engine,
		Drag:        dragCtl,
		Metrics:     m,
		DefaultSort: models.SortOption(cfg.DefaultSort),
		StaticDir:   cfg.StaticDir,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// openStorage opens the configured key-value backend.
func openStorage(cfg config.Config, logger *slog.Logger) (storage.KV, io.Closer, error) {
	switch cfg.Storage {
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendBadger:
		bcfg := badgerstore.DefaultConfig(cfg.BadgerDir)
		bcfg.Logger = logger
		store, err := badgerstore.Open(bcfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendMemory:
		return memory.New(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
