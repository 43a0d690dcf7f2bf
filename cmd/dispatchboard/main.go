package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dispatchboard/board"
	"dispatchboard/infrastructure/apiclient"
	"dispatchboard/infrastructure/config"
	"dispatchboard/infrastructure/dispatch"
	"dispatchboard/infrastructure/history"
	httpserver "dispatchboard/infrastructure/http"
	"dispatchboard/infrastructure/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	api := apiclient.New(apiclient.Config{
		BaseURL:     cfg.DispatchAPIBaseURL,
		Token:       cfg.DispatchAPIToken,
		Timeout:     cfg.HTTPTimeout,
		MaxAttempts: cfg.HTTPRetries,
	})
	client := dispatch.NewClient(api)
	store := history.NewStore(db)

	orch := board.NewOrchestrator(client, store, cfg.FactoryCode, cfg.FrameInterval)
	orch.Start(context.Background())

	server := httpserver.NewServer(cfg.Addr, orch, client, store, cfg.FactoryCode, cfg.TrendPoints)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("dispatchboard listening on %s", cfg.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	orch.Stop()
	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
