package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zonewatch/internal/config"
	"zonewatch/internal/dispatch"
	"zonewatch/internal/gateway"
	"zonewatch/internal/logger"
	"zonewatch/internal/rules"
	"zonewatch/internal/services"
	"zonewatch/pkg/chat"
	"zonewatch/pkg/transition"
	"zonewatch/pkg/zone"
)

const reconnectDelay = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting zonewatch",
		"environment", cfg.Environment,
		"host_url", cfg.HostURL,
		"redis_url", cfg.RedisURL,
		"ruleset", cfg.Ruleset)

	registry := zone.NewRegistry()
	if cfg.ZoneTypesPath != "" {
		if err := registry.LoadFile(cfg.ZoneTypesPath); err != nil {
			log.Error("Failed to load zone types", "error", err, "path", cfg.ZoneTypesPath)
			os.Exit(1)
		}
		log.Info("Zone types loaded", "path", cfg.ZoneTypesPath, "tags", registry.Tags())
	}

	storage, err := services.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := storage.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	client := gateway.NewClient(cfg.HostURL, log)
	broadcaster := services.NewBroadcaster(storage.GetClient(), log)
	messenger := chat.Multi(client, broadcaster)

	roller := rules.NewStressRoller(cfg.RollSeed, messenger, cfg.Speaker)
	orchestrator := rules.NewOrchestrator(client, storage, roller, messenger, cfg.Ruleset, cfg.Speaker, log)

	dispatcher := dispatch.New(registry, messenger, cfg.Speaker, log)
	for _, tag := range registry.Tags() {
		if registry.ConfigFor(tag).RequiresSupplyRoll {
			dispatcher.Register(tag, orchestrator.HandleEntry)
		}
	}

	correlator := transition.NewCorrelator(client, client, dispatcher, log)
	client.Bind(correlator)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("Shutdown signal received")
		cancel()
	}()

	// Session loop: Run returns when the connection drops; reconnect
	// until cancelled.
	for {
		if err := client.Run(ctx); err != nil {
			log.Error("Gateway session ended", "error", err)
		}
		select {
		case <-ctx.Done():
			log.Info("zonewatch exited")
			return
		case <-time.After(reconnectDelay):
			log.Info("Reconnecting to host gateway")
		}
	}
}
