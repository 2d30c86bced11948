package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	"github.com/RamaShankarRay/XGpt/internal/config"
	"github.com/RamaShankarRay/XGpt/internal/handler"
	"github.com/RamaShankarRay/XGpt/internal/infrastructure/openai"
	"github.com/RamaShankarRay/XGpt/internal/router"
	"github.com/RamaShankarRay/XGpt/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "xgpt-server",
	Short: "XGpt backend proxy for OpenAI chat completions",
	Long: `XGpt backend proxy is a high-performance HTTP API server built with the
Hertz framework. It validates chat completion requests and forwards them to
OpenAI so that API credentials never leave the server.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("XGpt server starting...",
		"version", version,
		"config", cfgFile,
	)

	// Route Hertz framework logs through slog.
	hlog.SetLogger(logger.NewHertzSlog(slog.Default()))
	hlog.SetLevel(hlog.LevelInfo)

	completions := openai.NewClient(cfg.OpenAI, slog.Default())
	if !completions.Configured() {
		slog.Warn("OpenAI API key not configured, /api/chat will return errors")
	}

	completionHandler := handler.NewCompletionHandler(completions, slog.Default())
	healthHandler := handler.NewHealthHandler(completions)

	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	router.Setup(h, completionHandler, healthHandler)

	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
		"openai_configured", completions.Configured(),
	)

	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
