package core

// Entry kinds as stored in the mirror sheet and carried by events.
const (
	EntryDespesa  = "despesa"
	EntryReceita  = "receita"
	EntryTransfer = "transferencia"
)

// LedgerEntry is a ledger row flattened for the spreadsheet mirror.
type LedgerEntry struct {
	UUID        string `json:"uuid"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Value       Money  `json:"value"`
	Category    string `json:"category"`
	Account     string `json:"account"`
	ToAccount   string `json:"to_account,omitempty"`
}

// EntryKind names the kind of tx for the mirror.
func EntryKind(tx Transaction) string {
	switch {
	case tx.IsTransfer():
		return EntryTransfer
	case tx.IsIncome():
		return EntryReceita
	default:
		return EntryDespesa
	}
}

func NewLedgerEntry(tx Transaction) LedgerEntry {
	e := LedgerEntry{
		UUID:        tx.UUID,
		Date:        tx.Date(),
		Kind:        EntryKind(tx),
		Description: tx.Description,
		Value:       tx.Value,
		Category:    tx.CategoryName(),
	}
	if tx.Account != nil {
		e.Account = accountLabel(*tx.Account)
	}
	if tx.ForAccount != nil {
		e.ToAccount = accountLabel(*tx.ForAccount)
	}
	return e
}

func accountLabel(a AccountRef) string {
	if a.Name != "" {
		return a.Name
	}
	return a.UUID
}
