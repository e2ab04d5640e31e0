package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulseworks/rustwatch/internal/config"
	"github.com/pulseworks/rustwatch/internal/db"
	"github.com/pulseworks/rustwatch/internal/heartbeat"
	"github.com/pulseworks/rustwatch/internal/history"
	"github.com/pulseworks/rustwatch/internal/monitor"
	"github.com/pulseworks/rustwatch/internal/rcon"
	"github.com/pulseworks/rustwatch/internal/server"

	// Register RCON transports
	_ "github.com/pulseworks/rustwatch/internal/rcon/classic"
	_ "github.com/pulseworks/rustwatch/internal/rcon/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	factory, err := rcon.NewFactory(cfg.Server.Transport)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	clientCfg := rcon.Config{
		Endpoint: rcon.Endpoint{
			Host:     cfg.Server.Host,
			Port:     cfg.Server.Port,
			Secure:   cfg.Server.Secure,
			Password: cfg.Server.Password,
		},
		Timeout:    cfg.Timeout(),
		ClientName: cfg.Check.ClientName,
	}

	cycle := monitor.NewCycle(
		monitor.CycleConfig{
			Attempts:  cfg.Check.Attempts,
			JitterMax: cfg.JitterMax(),
			Command:   cfg.Check.Command,
		},
		func() rcon.Client { return factory(clientCfg) },
		nil,
	)

	store := history.NewStore(database)
	tracker := monitor.NewTracker(cfg.Check.FailureThreshold)
	mon := monitor.New(cycle, tracker, cfg.Interval(), nil)
	mon.SetRecorder(store)
	if cfg.Heartbeat.URL != "" {
		mon.SetHeartbeat(heartbeat.NewSink(cfg.Heartbeat.URL, cfg.HeartbeatTimeout()))
	}
	mon.Start()

	srv := server.New(cfg, mon, store)
	httpServer := &http.Server{
		Addr:         cfg.HTTP.Listen,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("rustwatch listening on %s", cfg.HTTP.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	mon.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
