package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/app"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadOrDefault("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Sarthi AI Web API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize application",
			zap.Error(err))
	}

	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Print startup info
	fmt.Println("=" + makeString(60, "="))
	fmt.Println("🌐 Starting Web API Service")
	fmt.Println("=" + makeString(60, "="))
	fmt.Printf("📊 Service: Sarthi AI Web API\n")
	fmt.Printf("🌐 URL: http://%s\n", cfg.GetWebServiceAddr())
	fmt.Printf("💾 Database: %s\n", cfg.Database.Path)
	fmt.Printf("🔗 Verify links: %s\n", cfg.VerifyURL("<reportId>"))
	fmt.Println("=" + makeString(60, "="))

	// Start server; returns once SIGINT/SIGTERM has drained in-flight requests
	if err := a.Serve(ctx, cfg.GetWebServiceAddr()); err != nil {
		zap.L().Error("Server stopped with error",
			zap.Error(err))
	}
	if err := a.Close(); err != nil {
		zap.L().Error("Failed to close application",
			zap.Error(err))
	}
}

func makeString(n int, s string) string {
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}
