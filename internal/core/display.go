package core

// Kind is how a ledger row reads from the point of view of one account.
type Kind string

const (
	KindIncome      Kind = "income"
	KindExpense     Kind = "expense"
	KindTransferIn  Kind = "transfer-in"
	KindTransferOut Kind = "transfer-out"
)

// TransactionDisplay decorates a row for rendering. It is derived on every
// render and never sent back to the backend.
type TransactionDisplay struct {
	Transaction
	Kind        Kind
	SignedValue Money
	Label       string
	Icon        string
	CSSClass    string
}

// Classify decorates tx as seen from viewAccount. With no account in view
// a transfer is shown as money leaving its origin.
func Classify(tx Transaction, viewAccount string) TransactionDisplay {
	d := TransactionDisplay{Transaction: tx}

	switch {
	case tx.IsTransfer() && viewAccount != "" && tx.ForAccount.UUID == viewAccount:
		d.Kind = KindTransferIn
		d.SignedValue = tx.Value
		d.Label = "Transferência recebida"
		if tx.Account != nil && tx.Account.Name != "" {
			d.Label += " de " + tx.Account.Name
		}
		d.Icon = "⬇️"
		d.CSSClass = "tx-transfer-in"
	case tx.IsTransfer():
		d.Kind = KindTransferOut
		d.SignedValue = tx.Value.Neg()
		d.Label = "Transferência enviada"
		if tx.ForAccount.Name != "" {
			d.Label += " para " + tx.ForAccount.Name
		}
		d.Icon = "⬆️"
		d.CSSClass = "tx-transfer-out"
	case tx.IsIncome():
		d.Kind = KindIncome
		d.SignedValue = tx.Value
		d.Label = "Receita"
		d.Icon = CategoryIcon(tx.CategoryName())
		d.CSSClass = "tx-income"
	default:
		d.Kind = KindExpense
		d.SignedValue = tx.Value.Neg()
		d.Label = "Despesa"
		d.Icon = CategoryIcon(tx.CategoryName())
		d.CSSClass = "tx-expense"
	}
	return d
}

// ClassifyAll decorates every row in order.
func ClassifyAll(rows []Transaction, viewAccount string) []TransactionDisplay {
	out := make([]TransactionDisplay, len(rows))
	for i, tx := range rows {
		out[i] = Classify(tx, viewAccount)
	}
	return out
}

// Touches reports whether tx moves money in or out of account.
func (t Transaction) Touches(account string) bool {
	if t.Account != nil && t.Account.UUID == account {
		return true
	}
	return t.IsTransfer() && t.ForAccount.UUID == account
}
