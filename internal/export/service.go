// Package export maintains the running XLSX ledger of verified complaints.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

const sheet = "Complaints"

// Ledger appends verified complaint rows to one workbook on disk. When the
// primary workbook cannot be written (locked, replaced by a directory), rows
// go to a timestamped sibling instead of being lost.
type Ledger struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewLedger(path string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{path: path, logger: logger, now: time.Now}
}

// Append writes one row per record below the existing content and returns the
// path actually written.
func (l *Ledger) Append(records []*entity.ComplaintRecord) (string, error) {
	if len(records) == 0 {
		return l.path, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	f, startRow, err := l.openWorkbook()
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	for i, rec := range records {
		row := startRow + i
		for col, v := range rec.Values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	target := l.path
	if err := f.SaveAs(target); err != nil {
		fallback := l.fallbackPath()
		l.logger.Warn("ledger workbook not writable, using fallback",
			"path", target, "fallback", fallback, "error", err)
		if err := f.SaveAs(fallback); err != nil {
			return "", fmt.Errorf("xlsx write: %w", err)
		}
		target = fallback
	}

	l.logger.Info("export.xlsx.ok",
		"path", target,
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return target, nil
}

// openWorkbook loads the existing ledger or starts a fresh one with the
// header row, returning the first free row.
func (l *Ledger) openWorkbook() (*excelize.File, int, error) {
	if _, err := os.Stat(l.path); err == nil {
		f, err := excelize.OpenFile(l.path)
		if err == nil {
			if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
				if _, err := f.NewSheet(sheet); err != nil {
					_ = f.Close()
					return nil, 0, err
				}
				writeHeader(f)
				return f, 2, nil
			}
			rows, err := f.GetRows(sheet)
			if err != nil {
				_ = f.Close()
				return nil, 0, fmt.Errorf("read ledger: %w", err)
			}
			return f, len(rows) + 1, nil
		}
		l.logger.Warn("ledger workbook unreadable, starting fresh", "path", l.path, "error", err)
	}

	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")
	writeHeader(f)
	return f, 2, nil
}

func writeHeader(f *excelize.File) {
	for i, h := range constants.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	// widen the narrative columns
	_ = f.SetColWidth(sheet, "A", "B", 18)
	_ = f.SetColWidth(sheet, "C", "D", 22)
	_ = f.SetColWidth(sheet, "G", "G", 48)
	_ = f.SetColWidth(sheet, "J", "J", 32)
}

func (l *Ledger) fallbackPath() string {
	ext := filepath.Ext(l.path)
	stem := strings.TrimSuffix(l.path, ext)
	return fmt.Sprintf("%s_%s%s", stem, l.now().Format("20060102_150405"), ext)
}
