package letters

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

// Fixed 0-based column positions in the transaction ledger. The layout is
// dictated by the portal's ledger export, not by header names.
const (
	colLayer       = 5
	colBeneficiary = 6
	colIFSC        = 7
	colUTR         = 9
	colTxnAmount   = 10
	colDisputed    = 11

	minLedgerColumns = 12
)

// LoadTransactions reads the transaction ledger (XLSX or CSV), drops rows
// with an empty IFSC code, and normalizes IFSC codes to trimmed upper-case.
// The first row is treated as the header.
func LoadTransactions(path string) ([]entity.TransactionRow, error) {
	var rows [][]string
	var err error
	if constants.NormalizeExt(filepath.Ext(path)) == "csv" {
		rows, err = readCSVRows(path)
	} else {
		rows, err = readXLSXRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) < minLedgerColumns {
		return nil, common.NewAppError("TXN_TABLE",
			fmt.Sprintf("transaction table needs at least %d columns", minLedgerColumns),
			common.ErrReferenceData)
	}

	out := make([]entity.TransactionRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cell := func(idx int) string {
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		ifsc := strings.ToUpper(cell(colIFSC))
		if ifsc == "" {
			continue
		}
		out = append(out, entity.TransactionRow{
			RowIndex:       i,
			Layer:          cell(colLayer),
			Beneficiary:    cell(colBeneficiary),
			IFSCCode:       ifsc,
			UTR:            cell(colUTR),
			TxnAmount:      strings.ReplaceAll(cell(colTxnAmount), ",", ""),
			DisputedAmount: cell(colDisputed),
		})
	}
	return out, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transaction table: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read transaction table: %w", err)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open transaction workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewAppError("TXN_TABLE", "workbook has no sheets", common.ErrReferenceData)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read transaction workbook: %w", err)
	}
	return rows, nil
}

// GroupByBank partitions rows by their 4-character bank-code prefix,
// preserving encounter order of groups and of rows within each group.
func GroupByBank(rows []entity.TransactionRow) []entity.BankGroup {
	index := make(map[string]int)
	var groups []entity.BankGroup
	for _, row := range rows {
		code := row.BankCode()
		i, ok := index[code]
		if !ok {
			i = len(groups)
			index[code] = i
			groups = append(groups, entity.BankGroup{BankCode: code})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
