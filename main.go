package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aqwesitod-shop/app"
	"aqwesitod-shop/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize application
	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer application.Store.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	addr := "0.0.0.0:" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("🔌 Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Graceful shutdown failed: %v", err)
	}
}
