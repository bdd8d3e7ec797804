package core

// Totals holds the derived aggregates of a transaction list. It has no
// independent identity and is recomputed from the list on every read.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
	// ByCategory maps category to its expense sum, restricted to
	// categories with a positive sum. Income never contributes.
	ByCategory map[Category]float64 `json:"byCategory"`
}

// Aggregate computes totals from a transaction list. Pure and total:
// defined for nil and empty input, never fails.
//
// Sums are accumulated per category in the fixed enumeration order, so
// the result is deterministic for a given multiset of amounts.
func Aggregate(txs []Transaction) Totals {
	totals := Totals{ByCategory: make(map[Category]float64)}
	for _, cat := range Categories {
		var sum float64
		for _, t := range txs {
			if t.Type == Expense && t.Category == cat {
				sum += t.Amount
			}
		}
		if sum > 0 {
			totals.ByCategory[cat] = sum
		}
	}
	for _, t := range txs {
		switch t.Type {
		case Income:
			totals.Income += t.Amount
		case Expense:
			totals.Expense += t.Amount
		}
	}
	totals.Balance = totals.Income - totals.Expense
	return totals
}
