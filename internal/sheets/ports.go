package sheets

import (
	"context"

	"carteira/internal/core"
)

// LedgerWriter mirrors ledger rows into a spreadsheet. Both calls are
// idempotent: appending a known uuid rewrites its row, deleting an unknown
// uuid is a no-op.
type LedgerWriter interface {
	AppendEntry(ctx context.Context, e core.LedgerEntry) (rowRef string, err error)
	DeleteEntry(ctx context.Context, uuid string) error
}

// Header is the first row of the mirror sheet.
var Header = []string{"Data", "Tipo", "Descrição", "Valor", "Categoria", "Conta", "UUID"}

// Row renders e in Header column order.
func Row(e core.LedgerEntry) []string {
	account := e.Account
	if e.ToAccount != "" {
		account += " → " + e.ToAccount
	}
	return []string{e.Date, e.Kind, e.Description, e.Value.String(), e.Category, account, e.UUID}
}
