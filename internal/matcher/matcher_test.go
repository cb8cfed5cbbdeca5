package matcher

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/escalator/internal/billwerk"
)

func invoice(id string, gross float64) billwerk.Invoice {
	return billwerk.Invoice{ID: id, IsInvoice: lo.ToPtr(true), TotalGross: lo.ToPtr(gross)}
}

func creditNote(id string, gross float64) billwerk.Invoice {
	return billwerk.Invoice{ID: id, IsInvoice: lo.ToPtr(false), TotalGross: lo.ToPtr(gross)}
}

func ids(documents []billwerk.Invoice) []string {
	return lo.Map(documents, func(document billwerk.Invoice, _ int) string { return document.ID })
}

func target(value float64) *decimal.Decimal {
	d := decimal.NewFromFloat(value)
	return &d
}

func TestSignedAmount(t *testing.T) {
	t.Run("invoice keeps its sign", func(t *testing.T) {
		amount := SignedAmount(invoice("a", 59.90))
		require.NotNil(t, amount)
		assert.True(t, amount.Equal(decimal.NewFromFloat(59.90)))
	})

	t.Run("credit note with positive gross is negated", func(t *testing.T) {
		amount := SignedAmount(creditNote("a", 10))
		require.NotNil(t, amount)
		assert.True(t, amount.Equal(decimal.NewFromInt(-10)))
	})

	t.Run("credit note already negative stays negative", func(t *testing.T) {
		amount := SignedAmount(creditNote("a", -10))
		require.NotNil(t, amount)
		assert.True(t, amount.Equal(decimal.NewFromInt(-10)))
	})

	t.Run("unknown document kind is not negated", func(t *testing.T) {
		amount := SignedAmount(billwerk.Invoice{TotalGross: lo.ToPtr(10.0)})
		require.NotNil(t, amount)
		assert.True(t, amount.Equal(decimal.NewFromInt(10)))
	})

	t.Run("missing or non-finite gross yields nil", func(t *testing.T) {
		assert.Nil(t, SignedAmount(billwerk.Invoice{}))
		assert.Nil(t, SignedAmount(invoice("a", math.NaN())))
		assert.Nil(t, SignedAmount(invoice("a", math.Inf(1))))
	})
}

func TestFindCombinationExactMatch(t *testing.T) {
	documents := []billwerk.Invoice{
		invoice("a", 100),
		invoice("b", 59.90),
		invoice("c", 40.10),
	}

	selection := FindCombination(documents, target(100))
	assert.Equal(t, []string{"a"}, ids(selection))

	selection = FindCombination(documents, target(140.10))
	assert.Equal(t, []string{"a", "c"}, ids(selection))
}

func TestFindCombinationReturnsFirstDepthFirstMatch(t *testing.T) {
	// Both {a} and {b, c} sum to 100; the include-first search finds
	// the subset containing the earlier document.
	documents := []billwerk.Invoice{
		invoice("a", 100),
		invoice("b", 60),
		invoice("c", 40),
	}

	selection := FindCombination(documents, target(100))
	assert.Equal(t, []string{"a"}, ids(selection))
}

func TestFindCombinationWithinTolerance(t *testing.T) {
	documents := []billwerk.Invoice{invoice("a", 99.99)}

	assert.Equal(t, []string{"a"}, ids(FindCombination(documents, target(100))))
	assert.Nil(t, FindCombination(documents, target(100.02)))
}

func TestFindCombinationWithCreditNote(t *testing.T) {
	documents := []billwerk.Invoice{
		invoice("a", 120),
		creditNote("b", 20),
	}

	selection := FindCombination(documents, target(100))
	assert.Equal(t, []string{"a", "b"}, ids(selection))
}

func TestFindCombinationSkipsDocumentsWithoutAmount(t *testing.T) {
	documents := []billwerk.Invoice{
		{ID: "a"}, // no gross total
		invoice("b", 50),
	}

	selection := FindCombination(documents, target(50))
	assert.Equal(t, []string{"b"}, ids(selection))
}

func TestFindCombinationNoMatch(t *testing.T) {
	documents := []billwerk.Invoice{
		invoice("a", 10),
		invoice("b", 20),
	}

	assert.Nil(t, FindCombination(documents, target(100)))
}

func TestFindCombinationRejectsEmptySubset(t *testing.T) {
	// A zero-ish target must not be satisfied by selecting nothing.
	documents := []billwerk.Invoice{invoice("a", 10)}

	assert.Nil(t, FindCombination(documents, target(0)))
	assert.Nil(t, FindCombination(documents, target(-5)))
	assert.Nil(t, FindCombination(documents, nil))
	assert.Nil(t, FindCombination(nil, target(10)))
}
