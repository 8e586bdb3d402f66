package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/api"
	"github.com/USSTM/swagger-analyzer/internal/config"
	"github.com/USSTM/swagger-analyzer/internal/container"
	"github.com/USSTM/swagger-analyzer/internal/llm"
	"github.com/USSTM/swagger-analyzer/internal/logging"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	verifyCtx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout)
	c, err := container.New(verifyCtx, *cfg)
	cancel()
	if err != nil {
		var se *llm.StatusError
		switch {
		case errors.Is(err, llm.ErrMissingAPIKey):
			logging.Error("OPENROUTER_API_KEY is not set")
		case errors.As(err, &se):
			logging.Error("OpenRouter authentication failed", "status", se.StatusCode, "body", se.Body)
		default:
			logging.Error("Failed to initialize container", "error", err)
		}
		os.Exit(1)
	}
	defer c.Cleanup()

	handler, err := api.NewRouter(c.Server, c.RouterOptions())
	if err != nil {
		logging.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
	s := &http.Server{
		Handler:           handler,
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logging.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			logging.Error("Graceful shutdown failed", "error", err)
		}
	}()

	logging.Info("Server starting", "addr", addr, "model", cfg.LLM.Model)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
