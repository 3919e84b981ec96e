// cmd/main.go - Program entry
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"synthesis-tracker/internal/broadcast"
	"synthesis-tracker/internal/config"
	"synthesis-tracker/internal/database"
	"synthesis-tracker/internal/handler"
	"synthesis-tracker/internal/job"
	"synthesis-tracker/internal/journal"
	"synthesis-tracker/internal/notify"
	"synthesis-tracker/internal/registry"
	"synthesis-tracker/internal/repository"
	"synthesis-tracker/internal/server"
	"synthesis-tracker/internal/service"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/metrics"
)

var (
	// set by the linker during build
	osName   string
	archName string
	version  string
)

func main() {
	// Parse command line arguments
	appName := flag.String("appname", "synthesis-tracker", "app name")
	httpServer := flag.String("http", "", "HTTP server address (overrides config)")
	logLevel := flag.String("loglevel", "", "log level (debug, info, warn, error)")
	configPath := flag.String("config", "", "path to TOML config file")
	dataDir := flag.String("data", ".synthesis-tracker", "data directory")
	flag.Parse()

	// Initialize directories
	logsDir := filepath.Join(*dataDir, "logs")
	journalDir := filepath.Join(*dataDir, "journal")
	for _, dir := range []string{*dataDir, logsDir, journalDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Printf("failed to initialize directory %s: %v\n", dir, err)
			return
		}
	}

	// Initialize configuration
	if err := config.LoadTrackerConfig(*configPath); err != nil {
		fmt.Printf("failed to initialize configuration: %v\n", err)
		return
	}
	trackerConfig := config.GetTrackerConfig()
	addr := trackerConfig.Server.Address
	if *httpServer != "" {
		addr = *httpServer
	}
	level := trackerConfig.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}

	// Initialize logging system
	appLogger, err := logger.NewLogger(logsDir, level, *appName)
	if err != nil {
		fmt.Printf("failed to initialize logging system: %v\n", err)
		return
	}
	appLogger.Info("OS: %s, Arch: %s, App: %s, Version: %s, Starting...", osName, archName, *appName, version)

	// Initialize metrics
	trackerMetrics, err := metrics.NewTrackerMetrics()
	if err != nil {
		appLogger.Fatal("failed to initialize metrics: %v", err)
		return
	}

	// Initialize database manager
	dbConfig := config.DefaultDatabaseConfig(*dataDir)
	dbManager := database.NewSQLiteManager(dbConfig, appLogger)
	if err := dbManager.Initialize(); err != nil {
		appLogger.Fatal("failed to initialize database manager: %v", err)
		return
	}
	defer dbManager.Close()

	// Initialize transition journal
	transitionJournal, err := journal.NewLevelDBJournal(journalDir, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize transition journal: %v", err)
		return
	}
	defer transitionJournal.Close()

	// Initialize repositories
	corpusRepo := repository.NewCorpusRepository(dbManager, appLogger)
	runRepo := repository.NewRunMetaRepository(dbManager, appLogger)
	seedRepo := repository.NewUsedSeedRepository(dbManager, appLogger)

	// Initialize job registry and progress bus
	jobRegistry := registry.NewJobRegistry(appLogger)
	progressBus := broadcast.NewProgressBus(jobRegistry, trackerConfig.Jobs.SubscriberBuffer, appLogger)

	// Initialize service layer
	corpusService := service.NewCorpusService(corpusRepo, trackerMetrics, appLogger)
	trackerService := service.NewTrackerService(jobRegistry, transitionJournal, progressBus, corpusService, trackerMetrics, appLogger)
	provenanceService := service.NewProvenanceService(runRepo, seedRepo, appLogger)

	// Hook up terminal-stage webhook if configured
	webhookConfig := trackerConfig.Webhook
	notifier := notify.NewWebhookNotifier(
		webhookConfig.URL,
		time.Duration(webhookConfig.TimeoutSeconds)*time.Second,
		webhookConfig.MaxRetries,
		appLogger,
	)
	if notifier != nil {
		progressBus.OnComplete(notifier.NotifyJobDone)
		appLogger.Info("completion webhook enabled: %s", webhookConfig.URL)
	}

	// Initialize handler layer
	jobHandler := handler.NewJobHandler(trackerService, appLogger)
	corpusHandler := handler.NewCorpusHandler(corpusService, appLogger)
	runHandler := handler.NewRunHandler(provenanceService, appLogger)
	wsHandler := handler.NewWebSocketHandler(progressBus, trackerMetrics, appLogger)

	// Start background reaper
	reaperCtx, cancelReaper := context.WithCancel(context.Background())
	var jobsWg sync.WaitGroup
	reaperJob := job.NewReaperJob(jobRegistry, progressBus, transitionJournal, appLogger)
	jobsWg.Add(1)
	go func() {
		defer jobsWg.Done()
		reaperJob.Start(reaperCtx)
	}()

	// Initialize HTTP server
	httpServerInstance := server.NewServer(jobHandler, corpusHandler, runHandler, wsHandler, trackerMetrics, appLogger)

	// Start HTTP server
	httpErrChan := make(chan error, 1)
	go func() {
		if err := httpServerInstance.Start(addr); err != nil && err != http.ErrServerClosed {
			httpErrChan <- err
		}
		close(httpErrChan)
	}()

	// 等待一小段时间检查HTTP服务器是否启动成功
	select {
	case err := <-httpErrChan:
		if err != nil {
			appLogger.Error("HTTP server failed to start: %v", err)
			cancelReaper()
			jobsWg.Wait()
			return
		}
	case <-time.After(2 * time.Second):
		// 2秒内没有收到错误，认为服务器启动成功
		appLogger.Info("HTTP server started successfully on %s", addr)
	}

	appLogger.Info("application started successfully")

	// Handle system signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	appLogger.Info("received shutdown signal, shutting down gracefully...")
	cancelReaper()
	jobsWg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServerInstance.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown error: %v", err)
	}
	if err := trackerMetrics.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("metrics shutdown error: %v", err)
	}

	appLogger.Info("application stopped")
}
