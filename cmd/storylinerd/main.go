package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/storyline-io/storyline/internal/api"
	"github.com/storyline-io/storyline/internal/config"
	"github.com/storyline-io/storyline/internal/history"
	"github.com/storyline-io/storyline/internal/jira"
	"github.com/storyline-io/storyline/internal/logbuf"
	"github.com/storyline-io/storyline/internal/provider"
	"github.com/storyline-io/storyline/internal/rewrite"
)

func main() {
	configPath := flag.String("config", "", "Path to config JSON file")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	// Set up logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logBuf := logbuf.New(2000)
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logbuf.NewCaptureHandler(jsonHandler, logBuf))

	// Load config (file or env)
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("storylinerd starting", "jira_domain", cfg.Jira.Domain, "provider", cfg.Provider.Type)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Generative model provider
	prov, err := buildProvider(ctx, cfg.Provider)
	if err != nil {
		logger.Error("failed to init provider", "error", err)
		os.Exit(1)
	}
	logger.Info("provider initialized", "name", prov.Name(), "model", cfg.Provider.Model)

	// 2. Jira client
	jiraClient := jira.NewClient(cfg.Jira.Domain, cfg.Jira.Email, cfg.Jira.APIToken)

	// 3. Optional rewrite history store
	var store *history.Store
	var rewriterOpts []rewrite.RewriterOption
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			logger.Error("failed to open history store", "path", cfg.HistoryPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		rewriterOpts = append(rewriterOpts, rewrite.WithRecorder(store))
		logger.Info("history store opened", "path", cfg.HistoryPath)
	}

	// 4. Core services
	rewriter := rewrite.NewRewriter(prov, logger.With("component", "rewriter"), rewriterOpts...)
	syncer := jira.NewSyncer(jiraClient, logger.With("component", "syncer"))

	// 5. API server
	var hist api.HistoryQuerier
	if store != nil {
		hist = store
	}
	apiSrv := api.NewServer(jiraClient, rewriter, syncer, api.Config{
		Host: cfg.API.Host,
		Port: cfg.API.Port,
		Key:  cfg.API.Key,
	}, logger.With("component", "api"), hist, logBuf)

	go safeGo(logger, "api-server", func() { apiSrv.Start(ctx) })
	logger.Info("api server started", "port", cfg.API.Port)

	// 6. Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()
	logger.Info("storylinerd stopped")
}

// buildProvider constructs the configured model provider.
func buildProvider(ctx context.Context, cfg config.ProviderConfig) (provider.Provider, error) {
	switch cfg.Type {
	case "openai":
		var opts []provider.OpenAIOption
		if cfg.BaseURL != "" {
			opts = append(opts, provider.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Model != "" {
			opts = append(opts, provider.WithModel(cfg.Model))
		}
		return provider.NewOpenAI(cfg.APIKey, opts...), nil
	case "anthropic":
		var opts []provider.AnthropicOption
		if cfg.BaseURL != "" {
			opts = append(opts, provider.WithAnthropicBaseURL(cfg.BaseURL))
		}
		if cfg.Model != "" {
			opts = append(opts, provider.WithAnthropicModel(cfg.Model))
		}
		return provider.NewAnthropic(cfg.APIKey, opts...), nil
	default: // "gemini"
		var opts []provider.GeminiOption
		if cfg.Model != "" {
			opts = append(opts, provider.WithGeminiModel(cfg.Model))
		}
		return provider.NewGemini(ctx, cfg.APIKey, opts...)
	}
}

// safeGo runs fn with panic recovery.
func safeGo(logger *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("goroutine panicked", "name", name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}
