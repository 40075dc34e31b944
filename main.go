package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/or4cl3ai/arch1tech/api"
	"github.com/or4cl3ai/arch1tech/config"
	"github.com/or4cl3ai/arch1tech/conversation"
	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/hub"
	"github.com/or4cl3ai/arch1tech/llmclient"
	"github.com/or4cl3ai/arch1tech/pipeline"
	"github.com/or4cl3ai/arch1tech/policy"
	"github.com/or4cl3ai/arch1tech/session"
	"github.com/or4cl3ai/arch1tech/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting arch1tech...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Settings database: %s", cfg.DatabasePath)
	log.Printf("Completion service: %s (model %s)", cfg.ServiceBaseURL, cfg.Model)

	// Initialize settings store
	settings, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize settings store: %v", err)
	}
	defer settings.Close()

	ctx := context.Background()

	// Initialize session state (loads the persisted credential)
	sess, err := session.New(ctx, settings)
	if err != nil {
		log.Fatalf("Failed to initialize session: %v", err)
	}

	// Initialize completion client
	client := llmclient.NewClient(cfg.ServiceBaseURL, cfg.RequestTimeout)

	// Initialize artifact policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize engines
	pipelineEngine := pipeline.New(client)
	chatEngine := conversation.New(client, cfg)
	definitions := map[domain.PipelineKind]pipeline.Definition{
		domain.PipelineKindAgent:    pipeline.AgentDefinition(cfg, policyEngine),
		domain.PipelineKindLLMBuild: pipeline.LLMBuildDefinition(cfg),
	}

	// Initialize event hub
	eventHub := hub.NewHub()
	go eventHub.Run()

	// Initialize handler
	h := api.NewHandler(cfg, sess, pipelineEngine, chatEngine, eventHub, definitions)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down arch1tech...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("arch1tech stopped")
}
