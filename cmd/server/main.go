package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/ocx/engine-broker/internal/api"
	"github.com/ocx/engine-broker/internal/broker"
	"github.com/ocx/engine-broker/internal/config"
	"github.com/ocx/engine-broker/internal/obsv"
	"github.com/ocx/engine-broker/internal/registry"
)

func main() {
	log.Println("starting external-engine broker...")

	bind := flag.String("bind", "", "address to listen on (overrides config/env)")
	databaseURL := flag.String("database-url", "", "Postgres connection string for the engine registry (overrides config/env)")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *bind != "" {
		cfg.Server.Bind = *bind
	}
	if *databaseURL != "" {
		cfg.Registry.DatabaseURL = *databaseURL
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.Registry.DatabaseURL)
	if err != nil {
		log.Fatalf("opening registry database: %v", err)
	}
	defer db.Close()

	store := registry.NewStore(db, logger)
	b := broker.New(store, logger)
	b.AnalyseTimeout = cfg.Timeouts.Analyse()
	b.AcquireTimeout = cfg.Timeouts.Acquire()
	b.HubGCInterval = cfg.GC.Hub()
	b.OngoingGCInterval = cfg.GC.Ongoing()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b.RunGC(ctx)

	var redisPublisher *obsv.RedisPublisher
	if cfg.Redis.Enabled {
		redisPublisher = obsv.NewRedisPublisher(cfg.Redis.Addr, logger)
		logger.Info("redis hub-depth publication enabled", "addr", cfg.Redis.Addr)
	} else {
		slog.Info("redis publication disabled, metrics stay local to this instance")
	}
	go obsv.Run(ctx, b, redisPublisher, 5*time.Second)

	healthy := func() error { return db.PingContext(ctx) }
	server := api.NewServer(b, healthy, logger)

	if err := server.Start(ctx, cfg.Server.Bind); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
