package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"restaurant_chat/internal/agent"
	"restaurant_chat/internal/api"
	"restaurant_chat/internal/config"
	"restaurant_chat/internal/nodes"
	"restaurant_chat/internal/report"
	"restaurant_chat/internal/services"
	"restaurant_chat/src"
	"restaurant_chat/src/conversation"
	"restaurant_chat/src/llm"
	"restaurant_chat/src/logger"
	"restaurant_chat/src/storage"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API and the report endpoints",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment")
	}

	cfg, err := src.LoadConfig()
	if err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogue, err := config.LoadCatalogue(cfg.ReportConfig.CataloguePath)
	if err != nil {
		return err
	}

	reportOpts := []report.Option{report.WithTTL(cfg.ReportConfig.CacheTTL)}
	if cfg.RedisConfig.URL != "" {
		cache, err := storage.NewRedisCache(ctx, cfg.RedisConfig)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, report cache stays in process")
		} else {
			defer cache.Close()
			reportOpts = append(reportOpts, report.WithSharedCache(cache))
			logger.Info().Msg("redis report cache enabled")
		}
	}
	reports := report.NewService(cfg.ReportConfig.DataDir, reportOpts...)

	client := services.NewReportClient(cfg.ReportConfig.BaseURL, catalogue,
		services.WithHTTPClient(&http.Client{Timeout: cfg.ReportConfig.FetchTimeout}),
		services.WithMaxArrayItems(cfg.ReportConfig.MaxArrayItems),
	)
	tools, err := nodes.GetTools(client)
	if err != nil {
		return err
	}

	if !cfg.LLMConfig.HasCredential() {
		logger.Warn().Str("provider", cfg.LLMConfig.Provider).Msg("no provider credential configured, chat requests will fail")
	}
	chatModel, err := llm.NewChatModel(ctx, cfg.LLMConfig)
	if err != nil {
		return err
	}

	assistant, err := agent.New(ctx, chatModel, tools,
		conversation.NewMemory(cfg.ChatConfig.MemoryMaxPerRole),
		conversation.NewBatcher(),
		agent.OptionsFromConfig(cfg.ChatConfig),
	)
	if err != nil {
		return err
	}

	server := api.NewServer(api.Options{
		Addr:       cfg.ListenAddr(),
		CORSOrigin: cfg.ServerConfig.CORSOrigin,
		LLM:        cfg.LLMConfig,
	}, assistant, reports.Register)

	if cfg.ReportConfig.Local {
		if missing := server.Unrouted(catalogue.Paths()); len(missing) > 0 {
			logger.Warn().Strs("paths", missing).Msg("catalogue paths without a local handler will answer 404")
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logger.Info().
		Str("addr", cfg.ListenAddr()).
		Str("provider", cfg.LLMConfig.Provider).
		Str("model", cfg.LLMConfig.Model).
		Str("report_api", cfg.ReportConfig.BaseURL).
		Msg("🚀 restaurant_chat running")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
