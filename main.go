package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saocarlos/refribot/config"
	"github.com/saocarlos/refribot/flow"
	"github.com/saocarlos/refribot/gemini"
	"github.com/saocarlos/refribot/recorder"
	"github.com/saocarlos/refribot/server"
	"github.com/saocarlos/refribot/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Transcript recorder (creates the CSV with header on first run)
	rec, err := recorder.New(cfg.CSVFile)
	if err != nil {
		log.Fatalf("Failed to open transcript recorder: %v", err)
	}

	// Session store
	store := session.NewStore(cfg)

	// Completion gateway
	gateway, err := gemini.NewGateway(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, flow.SystemPrompt())
	if err != nil {
		log.Fatalf("Failed to create Gemini gateway: %v", err)
	}

	// Conversation state machine
	engine := flow.NewEngine(store, gateway, rec)

	// Start cleanup routine
	ctx, cancel := context.WithCancel(context.Background())
	go store.StartCleanupRoutine(ctx)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	shutdown := func(servers ...interface{ Shutdown(context.Context) error }) {
		log.Println("\nReceived shutdown signal...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server shutdown error: %v", err)
			}
		}
		store.Shutdown()
		// Drain any transcripts still queued before exiting
		rec.Close()
	}

	switch cfg.ServerType {
	case "webhook":
		srv := server.NewWebhook(cfg, engine, store)

		go func() {
			<-sigChan
			shutdown(srv)
		}()

		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Webhook server error: %v", err)
		}

	case "websocket":
		srv := server.NewChat(cfg, engine, store)

		go func() {
			<-sigChan
			shutdown(srv)
		}()

		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Chat server error: %v", err)
		}

	case "both":
		srv := server.NewWebhook(cfg, engine, store)
		chatSrv := server.NewChat(cfg, engine, store)

		go func() {
			<-sigChan
			shutdown(srv, chatSrv)
		}()

		// Start dev chat server in background
		go func() {
			if err := chatSrv.Start(); err != nil && err.Error() != "http: Server closed" {
				log.Fatalf("Chat server error: %v", err)
			}
		}()

		// Start webhook server (blocks)
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Webhook server error: %v", err)
		}

	default:
		log.Fatalf("Unknown SERVER_TYPE: %s", cfg.ServerType)
	}

	log.Println("Server stopped")
}
