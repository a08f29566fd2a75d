package entity

// TransactionRow is one disputed-transaction record from the ledger table.
// Rows whose normalized IFSC code is empty never reach grouping.
type TransactionRow struct {
	RowIndex       int    // 0-based index in the source table, order only
	Layer          string
	Beneficiary    string
	IFSCCode       string // trimmed, upper-cased
	UTR            string
	TxnAmount      string // comma-stripped
	DisputedAmount string
}

// BankCode returns the 4-character bank-code prefix of the row's IFSC code.
func (t TransactionRow) BankCode() string {
	if len(t.IFSCCode) < 4 {
		return t.IFSCCode
	}
	return t.IFSCCode[:4]
}

// BankGroup is the set of transaction rows sharing one bank-code prefix,
// in original row order. Ephemeral: computed per letter-generation run.
type BankGroup struct {
	BankCode string
	Rows     []TransactionRow
}
