package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/docread"
	"github.com/ncrp-tools/complaints-tracker/internal/export"
	"github.com/ncrp-tools/complaints-tracker/internal/letters"
	"github.com/ncrp-tools/complaints-tracker/internal/repository"
	"github.com/ncrp-tools/complaints-tracker/internal/server"
	"github.com/ncrp-tools/complaints-tracker/internal/staging"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	reader := docread.NewReader(docread.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
	}, logger)
	if err := reader.Probe(); err != nil {
		// PDFs still work without tesseract; scanned images will not.
		logger.Warn("tesseract unavailable, image uploads will fail", "error", err)
	}

	stg, err := staging.New(cfg.Server.UploadDir, logger)
	if err != nil {
		logger.Error("init upload staging", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(
		cfg,
		repo,
		stg,
		export.NewLedger(cfg.Export.WorkbookPath, logger),
		reader,
		letters.NewEngine(reader, logger),
		logger,
	)
	if err := srv.Run(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
