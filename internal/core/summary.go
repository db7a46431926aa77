package core

// Totals is the dashboard headline: income, expense and overall balance.
type Totals struct {
	Income  Money
	Expense Money
	Balance Money
}

// Statement is the ledger of one account with its running totals.
type Statement struct {
	Account string
	Rows    []TransactionDisplay
	Income  Money
	Expense Money
	Balance Money
}

// StatementFor builds the statement of account from the full ledger. An
// empty account yields a statement over every row. Transfer legs count as
// income or expense according to their direction.
func StatementFor(rows []Transaction, account string) Statement {
	st := Statement{Account: account}
	for _, tx := range rows {
		if account != "" && !tx.Touches(account) {
			continue
		}
		d := Classify(tx, account)
		st.Rows = append(st.Rows, d)
		switch d.Kind {
		case KindIncome, KindTransferIn:
			st.Income = st.Income.Add(tx.Value)
		default:
			st.Expense = st.Expense.Add(tx.Value)
		}
	}
	st.Balance = st.Income.Sub(st.Expense)
	return st
}

// SumValues adds the value of every row.
func SumValues(rows []Transaction) Money {
	var total Money
	for _, tx := range rows {
		total = total.Add(tx.Value)
	}
	return total
}
