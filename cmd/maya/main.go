package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/antoniostano/maya/internal/brain"
	"github.com/antoniostano/maya/internal/config"
	"github.com/antoniostano/maya/internal/httpapi"
	"github.com/antoniostano/maya/internal/memory"
	"github.com/antoniostano/maya/internal/observability"
	"github.com/antoniostano/maya/internal/pipeline"
	"github.com/antoniostano/maya/internal/voice"
)

func main() {
	// Real keys live in .env, never in code; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, memory.Options{
		Backend:     cfg.MemoryBackend,
		DBPath:      cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
		UserName:    cfg.UserName,
	})
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:          cfg.BrainMode,
		Timeout:       cfg.BrainTimeout,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}

	var speech voice.Provider
	switch cfg.VoiceProvider {
	case "local":
		p, err := voice.NewLocalProvider(voice.LocalConfig{
			WhisperCLI:       cfg.STTCLI,
			WhisperModelPath: cfg.STTModelPath,
			TTSCLI:           cfg.TTSCLI,
		})
		if err != nil {
			log.Fatalf("local voice provider init failed: %v", err)
		}
		speech = p
		log.Printf("voice provider: local (%s + %s)", cfg.STTCLI, cfg.TTSCLI)
	case "mock":
		speech = voice.NewMockProvider()
		log.Printf("voice provider: mock")
	}

	runner := pipeline.NewRunner(store, adapter, metrics, cfg.UserName)
	sessionID, err := runner.StartSession(ctx)
	if err != nil {
		// A broken store degrades to an in-process session; the
		// conversation still works, it just will not be remembered.
		log.Printf("session start degraded: %v", err)
	}

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		api := httpapi.New(runner, store, metrics)
		httpServer = &http.Server{Addr: cfg.HTTPAddr, Handler: api.Router()}
		go func() {
			log.Printf("http surface listening on %s", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("listen error: %v", err)
			}
		}()
	}

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("shutdown signal received")
		runCancel()
	}()

	chat := newREPL(runner, speech, cfg.ListenSeconds, sessionID)
	chat.run(runCtx)

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
			_ = httpServer.Close()
		}
	}
}
