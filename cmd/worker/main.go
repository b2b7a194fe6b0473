// Audit worker. Consumes the durable event stream published by the API
// process and writes each event to the audit log. Runs as its own binary so
// event processing survives API restarts.
package main

import (
	"context"
	"log"

	"minima-be/internal/config"
	"minima-be/internal/pkg/logger"
	"minima-be/pkg/events"
	pktNats "minima-be/pkg/nats"
)

func main() {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("NATS_URL is required for the audit worker")
	}

	auditLogger := logger.NewIsolatedLogger("logs/audit.log")
	defer auditLogger.Sync()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("events.>", "audit-worker", func(ctx context.Context, event events.Event) error {
		auditLogger.Info("audit", event.EventType(), event.Payload())
		return nil
	})
	if err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	log.Println("✅ Audit worker is running")
	select {}
}
