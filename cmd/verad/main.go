package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/veradocs/vera/internal/async"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/export"
	"github.com/veradocs/vera/internal/extract"
	"github.com/veradocs/vera/internal/llm"
	"github.com/veradocs/vera/internal/ocr"
	"github.com/veradocs/vera/internal/pipeline"
	"github.com/veradocs/vera/internal/repository"
	"github.com/veradocs/vera/internal/server"
	"github.com/veradocs/vera/internal/storage"
	"github.com/veradocs/vera/internal/validation"
)

func main() {
	// Structured logger for the internal packages.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	zlog, err := zap.NewProduction()
	if err != nil {
		logger.Error("failed to build zap logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(repository.Options{Dir: cfg.Storage.BadgerDir}, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err, "dir", cfg.Storage.BadgerDir)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	rules, err := extract.LoadRules(cfg.Extract.RulesPath)
	if err != nil {
		logger.Error("failed to load extraction rules", "error", err, "path", cfg.Extract.RulesPath)
		os.Exit(1)
	}
	if cfg.Extract.SummaryMaxChars > 0 {
		rules.SummaryMaxChars = cfg.Extract.SummaryMaxChars
	}

	runner := ocr.ExecRunner{}
	provider := ocr.NewTesseractProvider(ocr.TesseractConfig{
		Binary:      cfg.OCR.Tesseract,
		Lang:        cfg.OCR.TesseractLang,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         6,
	}, runner, logger)

	uploads := storage.NewService(cfg.Storage, cfg.OCR, runner, logger)
	processor := pipeline.NewProcessor(store, provider, rules.LineThreshold, logger)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
	)

	llmClient := llm.NewClient(cfg.LLM, logger)
	engine := extract.NewEngine(rules, store, llmClient, logger)
	validator := validation.NewService(store, logger)
	exporter := export.NewService(store, logger)

	srv := server.NewServer(store, uploads, queue, validator, engine, exporter, llmClient,
		&cfg.Server, cfg.Storage.DataDir, zlog)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zlog.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := srv.Stop(shutdownCtx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}
}
