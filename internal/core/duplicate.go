package core

const (
	// Novel means no existing entry shares the candidate's normalized
	// description.
	Novel Classification = "novel"
	// Exact means some existing entry matches both normalized description
	// and amount.
	Exact Classification = "exact"
	// Partial means some existing entry matches the normalized description
	// but with a different amount, and no exact match exists.
	Partial Classification = "partial"
)

// Classification is the outcome of checking a candidate transaction
// against the existing list.
type Classification string

// Classify compares a candidate against the existing transactions.
// Pure: no side effects, order-independent. An exact match anywhere in
// the list takes precedence over a partial match elsewhere.
//
// Amounts are compared with strict float64 equality, matching the
// stored representation. No rounding tolerance is applied.
func Classify(candidate Transaction, existing []Transaction) Classification {
	want := Normalize(candidate.Description)
	partial := false
	for _, t := range existing {
		if Normalize(t.Description) != want {
			continue
		}
		if t.Amount == candidate.Amount {
			return Exact
		}
		partial = true
	}
	if partial {
		return Partial
	}
	return Novel
}
