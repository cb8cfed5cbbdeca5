package matcher

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/finbridge/escalator/internal/billwerk"
)

// MaxDocuments bounds the candidate window. The search is exponential
// in the window size, so the cap also guarantees termination in
// negligible time.
const MaxDocuments = 6

// Tolerance is the absolute amount by which a subset sum may differ
// from the target and still count as a match.
var Tolerance = decimal.NewFromFloat(0.01)

// SignedAmount derives the matchable amount of a billing document:
// the gross total, negated when the document is a credit note with a
// positive gross value. Returns nil when the gross total is absent or
// not finite.
func SignedAmount(document billwerk.Invoice) *decimal.Decimal {
	if document.TotalGross == nil {
		return nil
	}
	raw := *document.TotalGross
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil
	}

	amount := decimal.NewFromFloat(raw)
	if document.IsInvoice != nil && !*document.IsInvoice && amount.IsPositive() {
		amount = amount.Neg()
	}
	return &amount
}

// FindCombination searches for a non-empty subset of documents whose
// signed amounts sum to the target within Tolerance. The search is
// depth-first over include/exclude decisions in input order and returns
// the first satisfying subset, not the closest one. Returns nil when
// the target is not positive, the list is empty, or nothing matches.
func FindCombination(documents []billwerk.Invoice, target *decimal.Decimal) []billwerk.Invoice {
	if target == nil || !target.IsPositive() || len(documents) == 0 {
		return nil
	}

	selected := make([]billwerk.Invoice, 0, len(documents))

	var search func(index int, sum decimal.Decimal) bool
	search = func(index int, sum decimal.Decimal) bool {
		if len(selected) > 0 && sum.Sub(*target).Abs().LessThanOrEqual(Tolerance) {
			return true
		}
		if index >= len(documents) {
			return false
		}

		if amount := SignedAmount(documents[index]); amount != nil {
			selected = append(selected, documents[index])
			if search(index+1, sum.Add(*amount)) {
				return true
			}
			selected = selected[:len(selected)-1]
		}

		return search(index+1, sum)
	}

	if !search(0, decimal.Zero) {
		return nil
	}
	return selected
}
