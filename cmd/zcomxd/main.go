package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"zcomx/internal/config"
	"zcomx/internal/daemon"
	"zcomx/internal/logging"
	"zcomx/internal/queue"
	"zcomx/internal/shellutil"
	"zcomx/internal/store"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewForLogDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	q, err := queue.Open(st.DB(), cfg, logger)
	if err != nil {
		log.Fatalf("open queue: %v", err)
	}

	d, err := daemon.New(cfg, q, shellutil.Runner{NiceBinary: cfg.Binaries.Nice}, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	if err := d.Run(ctx); err != nil {
		log.Fatalf("daemon: %v", err)
	}
}
