package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/docread"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
	"github.com/ncrp-tools/complaints-tracker/internal/export"
	"github.com/ncrp-tools/complaints-tracker/internal/extract"
)

// extract walks a directory of complaint documents, runs field extraction on
// every supported file and appends the records to the XLSX ledger. Every
// input yields an outcome: a record, or a logged failure.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extract <directory>")
		os.Exit(2)
	}
	dir := os.Args[1]
	start := time.Now()

	cfg := common.LoadConfig()
	reader := docread.NewReader(docread.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
	}, logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("read directory", "dir", dir, "error", err)
		os.Exit(1)
	}

	var records []*entity.ComplaintRecord
	var failures int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}

		path := filepath.Join(dir, e.Name())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.OCR.Timeout)
		result, err := reader.Read(ctx, path)
		cancel()
		if err != nil {
			logger.Error("extract.file.failed", "file", e.Name(), "error", err)
			failures++
			continue
		}

		rec := extract.Extract(result.Text, result.Source)
		rec.SavedFilename = e.Name()
		records = append(records, &rec)
		logger.Info("extract.file.ok",
			"file", e.Name(),
			"complaint_id", rec.ComplaintID,
			"chars", len(result.Text),
			"elapsed_ms", result.Duration.Milliseconds(),
		)
	}

	if len(records) > 0 {
		path, err := export.NewLedger(cfg.Export.WorkbookPath, logger).Append(records)
		if err != nil {
			logger.Error("write workbook", "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written", "path", path, "rows", len(records))
	}

	logger.Info("extract.done",
		"records", len(records),
		"failures", failures,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if failures > 0 && len(records) == 0 {
		os.Exit(1)
	}
}
