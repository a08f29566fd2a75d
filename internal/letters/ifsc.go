package letters

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
)

// IFSCMap maps a 4-character IFSC bank-code prefix to the bank's full name
// (upper-cased). Built once per letter-generation run, read-only afterward.
type IFSCMap map[string]string

// LoadIFSCMap builds the map from a reference CSV. The IFSC and bank-name
// columns are located by case-insensitive substring match on the header.
// Duplicate prefixes are last-write-wins; conflicting values are logged.
func LoadIFSCMap(path string, logger *slog.Logger) (IFSCMap, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ifsc table: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ifsc table: %w", err)
	}
	if len(records) == 0 {
		return nil, common.NewAppError("IFSC_TABLE", "ifsc table is empty", common.ErrReferenceData)
	}

	ifscCol, bankCol := -1, -1
	for i, h := range records[0] {
		upper := strings.ToUpper(strings.TrimSpace(h))
		if ifscCol == -1 && strings.Contains(upper, "IFSC") {
			ifscCol = i
		}
		if bankCol == -1 && strings.Contains(upper, "BANK") {
			bankCol = i
		}
	}
	if ifscCol == -1 || bankCol == -1 {
		return nil, common.NewAppError("IFSC_TABLE",
			"ifsc table missing IFSC or BANK column", common.ErrReferenceData)
	}

	m := make(IFSCMap, len(records)-1)
	for _, row := range records[1:] {
		if len(row) <= ifscCol || len(row) <= bankCol {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(row[ifscCol]))
		bank := strings.ToUpper(strings.TrimSpace(row[bankCol]))
		if len(code) < 4 || bank == "" {
			continue
		}
		prefix := code[:4]
		if prev, ok := m[prefix]; ok && prev != bank {
			logger.Warn("duplicate ifsc prefix, keeping last",
				"prefix", prefix, "previous", prev, "replacement", bank)
		}
		m[prefix] = bank
	}
	return m, nil
}

// BankName resolves the full bank name for an IFSC code. Unknown prefixes
// synthesize a "<Prefix> Bank" fallback so a letter is still addressed.
func (m IFSCMap) BankName(ifsc string) string {
	prefix := strings.ToUpper(ifsc)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if bank, ok := m[prefix]; ok {
		return titleCase(bank)
	}
	return titleCase(prefix + " BANK")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
