// Package letters groups a disputed-transaction ledger by beneficiary bank
// and fills one formal notice letter per bank from a docx template.
package letters

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ncrp-tools/complaints-tracker/internal/docread"
	"github.com/ncrp-tools/complaints-tracker/internal/docx"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

// headerMark identifies the template table that receives transaction rows.
const headerMark = "S.NO"

// FormReader supplies the source form's text; satisfied by *docread.Reader.
type FormReader interface {
	Read(ctx context.Context, path string) (docread.Result, error)
}

// Request names the five inputs of one letter-generation run. OutputDir
// should be request-unique so concurrent runs cannot collide.
type Request struct {
	FormPath     string
	TablePath    string
	TemplatePath string
	IFSCPath     string
	OutputDir    string
}

// Result is the run outcome. Zero generated documents is a valid, explicit
// empty result, not an error: the caller surfaces "check template" instead.
type Result struct {
	Generated []string `json:"generated"`
	Skipped   []string `json:"skipped_banks,omitempty"`
	Groups    int      `json:"groups"`
}

type Engine struct {
	reader FormReader
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(reader FormReader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{reader: reader, logger: logger, now: time.Now}
}

// Generate runs the whole pipeline: IFSC map, form placeholders, ledger
// grouping, then one filled template per bank group. I/O failures on any of
// the four inputs abort the run; a group whose template lacks the marked
// table is skipped and logged, never fatal.
func (e *Engine) Generate(ctx context.Context, req Request) (Result, error) {
	ifsc, err := LoadIFSCMap(req.IFSCPath, e.logger)
	if err != nil {
		return Result{}, err
	}

	form, err := e.reader.Read(ctx, req.FormPath)
	if err != nil {
		return Result{}, fmt.Errorf("read source form: %w", err)
	}
	base := ExtractPlaceholders(form.Text)

	rows, err := LoadTransactions(req.TablePath)
	if err != nil {
		return Result{}, err
	}
	groups := GroupByBank(rows)

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	res := Result{Groups: len(groups)}
	for _, group := range groups {
		path, err := e.generateOne(req, group, ifsc, base)
		if err != nil {
			return res, err
		}
		if path == "" {
			e.logger.Warn("template has no transaction table, skipping bank",
				"bank_code", group.BankCode)
			res.Skipped = append(res.Skipped, group.BankCode)
			continue
		}
		e.logger.Info("letter generated", "bank_code", group.BankCode, "path", path)
		res.Generated = append(res.Generated, path)
	}

	if len(res.Generated) == 0 {
		e.logger.Warn("no letters generated", "groups", len(groups))
	}
	return res, nil
}

// generateOne fills a fresh template copy for one bank group. An empty path
// with nil error means the group was skipped.
func (e *Engine) generateOne(req Request, group entity.BankGroup, ifsc IFSCMap, base map[string]string) (string, error) {
	doc, err := docx.Open(req.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("open template: %w", err)
	}

	tableRows := make([][]string, len(group.Rows))
	for i, r := range group.Rows {
		tableRows[i] = []string{
			strconv.Itoa(i + 1),
			r.Layer,
			r.Beneficiary,
			r.IFSCCode,
			r.UTR,
			r.DisputedAmount,
			r.TxnAmount,
		}
	}
	if !doc.AppendTableRows(headerMark, tableRows) {
		return "", nil
	}

	bankName := ifsc.BankName(group.Rows[0].IFSCCode)

	repl := make(map[string]string, len(base)+2)
	for k, v := range base {
		repl[k] = v
	}
	repl[TokenBankName] = bankName
	repl[TokenGenerationDate] = e.now().Format("02-01-2006")

	doc.ReplaceAll(repl, repl[TokenAdditionalInfo])

	name := ResolveCollisionFreeName(req.OutputDir, LetterFilename(bankName, repl[TokenCSRNo]))
	out := filepath.Join(req.OutputDir, name)
	if err := doc.Save(out); err != nil {
		return "", fmt.Errorf("save letter: %w", err)
	}
	return out, nil
}
