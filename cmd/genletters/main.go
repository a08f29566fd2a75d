package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/docread"
	"github.com/ncrp-tools/complaints-tracker/internal/letters"
)

// genletters generates one notice letter per beneficiary bank from a
// complaint form and a disputed-transaction table.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 3 || len(os.Args) > 4 {
		logger.Error("usage", "cmd", "genletters <form> <table> [output-dir]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	outputDir := cfg.Letters.OutputDir
	if len(os.Args) == 4 {
		outputDir = os.Args[3]
	}

	reader := docread.NewReader(docread.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := letters.NewEngine(reader, logger).Generate(ctx, letters.Request{
		FormPath:     os.Args[1],
		TablePath:    os.Args[2],
		TemplatePath: cfg.Letters.TemplatePath,
		IFSCPath:     cfg.Letters.IFSCPath,
		OutputDir:    outputDir,
	})
	if err != nil {
		logger.Error("letter generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("letters.done",
		"generated", len(result.Generated),
		"groups", result.Groups,
		"skipped_banks", result.Skipped,
		"output_dir", outputDir,
	)
	if len(result.Generated) == 0 {
		logger.Warn("no letters generated, check the template's transaction table")
	}
}
