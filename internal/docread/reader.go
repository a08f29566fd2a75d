// Package docread turns a complaint document (PDF or scanned image) into a
// single normalized text blob plus its detected source kind.
package docread

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // 6 = single uniform block, matches the portal form layout

	// Threshold is the grayscale cutoff used to binarize scanned images
	// before OCR. Pixels at or above it become white, the rest black.
	Threshold uint8 // default 150
}

// Result is the outcome of reading one document.
type Result struct {
	Text     string
	Source   constants.SourceKind
	Pages    int
	Duration time.Duration
}

type Reader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewReader(cfg Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 150
	}
	return &Reader{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Probe verifies the OCR engine is resolvable. Callers run this once at
// startup: a missing binary is a process-scope failure, not a per-file one.
func (r *Reader) Probe() error {
	if _, err := exec.LookPath(r.cfg.Tesseract); err != nil {
		return common.NewAppError("OCR_UNAVAILABLE",
			fmt.Sprintf("tesseract binary %q not found", r.cfg.Tesseract),
			common.ErrMissingDependency)
	}
	return nil
}

// Read picks a strategy based on file extension and returns normalized text.
func (r *Reader) Read(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	r.logger.Debug("starting document read", "path", path, "ext", ext)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := r.readPDF(path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := r.readImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	default:
		r.logger.Error("unsupported document extension", "extension", ext)
		return Result{}, common.NewAppError("UNSUPPORTED_EXT",
			fmt.Sprintf("unsupported extension: %q", ext), common.ErrUnreadableInput)
	}
}
