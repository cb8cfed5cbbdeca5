package billwerk

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickReceivableEntry(t *testing.T) {
	t.Run("nil without receivables", func(t *testing.T) {
		assert.Nil(t, PickReceivableEntry(nil, nil))
		assert.Nil(t, PickReceivableEntry([]LedgerEntry{
			{ID: "le-1", Type: "Payment"},
		}, nil))
	})

	t.Run("due date match with invoice wins", func(t *testing.T) {
		entries := []LedgerEntry{
			{ID: "le-1", Type: LedgerEntryTypeReceivable, DueDate: "2024-02-01T00:00:00Z", InvoiceID: "inv-2"},
			{ID: "le-2", Type: LedgerEntryTypeReceivable, DueDate: "2024-01-15T00:00:00Z", InvoiceID: "inv-1"},
		}

		picked := PickReceivableEntry(entries, lo.ToPtr("2024-01-15"))
		require.NotNil(t, picked)
		assert.Equal(t, "le-2", picked.ID)
	})

	t.Run("due date match requires an invoice link", func(t *testing.T) {
		entries := []LedgerEntry{
			{ID: "le-1", Type: LedgerEntryTypeReceivable, DueDate: "2024-01-15T00:00:00Z"},
			{ID: "le-2", Type: LedgerEntryTypeReceivable, DueDate: "2024-01-01T00:00:00Z", InvoiceID: "inv-1"},
		}

		// le-1 is due on the event date but carries no invoice, so the
		// fallback picks the latest entry that does.
		picked := PickReceivableEntry(entries, lo.ToPtr("2024-01-15"))
		require.NotNil(t, picked)
		assert.Equal(t, "le-2", picked.ID)
	})

	t.Run("falls back to most recently due with invoice", func(t *testing.T) {
		entries := []LedgerEntry{
			{ID: "le-1", Type: LedgerEntryTypeReceivable, DueDate: "2024-01-01T00:00:00Z", InvoiceID: "inv-1"},
			{ID: "le-2", Type: LedgerEntryTypeReceivable, DueDate: "2024-03-01T00:00:00Z", InvoiceID: "inv-2"},
			{ID: "le-3", Type: LedgerEntryTypeReceivable, DueDate: "2024-04-01T00:00:00Z"},
		}

		picked := PickReceivableEntry(entries, nil)
		require.NotNil(t, picked)
		assert.Equal(t, "le-2", picked.ID)
	})

	t.Run("uses entries without invoice when none link one", func(t *testing.T) {
		entries := []LedgerEntry{
			{ID: "le-1", Type: LedgerEntryTypeReceivable, DueDate: "2024-01-01T00:00:00Z"},
			{ID: "le-2", Type: LedgerEntryTypeReceivable, DueDate: "2024-02-01T00:00:00Z"},
		}

		picked := PickReceivableEntry(entries, nil)
		require.NotNil(t, picked)
		assert.Equal(t, "le-2", picked.ID)
	})
}

func TestPickLatestDunning(t *testing.T) {
	t.Run("nil for empty list", func(t *testing.T) {
		assert.Nil(t, PickLatestDunning(nil))
	})

	t.Run("orders by sent time", func(t *testing.T) {
		picked := PickLatestDunning([]Dunning{
			{ID: "dun-1", SentAt: "2024-01-10T08:00:00Z"},
			{ID: "dun-2", SentAt: "2024-02-10T08:00:00Z"},
		})
		require.NotNil(t, picked)
		assert.Equal(t, "dun-2", picked.ID)
	})

	t.Run("falls back to creation time and document date", func(t *testing.T) {
		picked := PickLatestDunning([]Dunning{
			{ID: "dun-1", SentAt: "2024-01-10T08:00:00Z"},
			{ID: "dun-2", CreationTime: "2024-03-01T08:00:00Z"},
			{ID: "dun-3", DocumentDate: "2024-02-01T08:00:00Z"},
		})
		require.NotNil(t, picked)
		assert.Equal(t, "dun-2", picked.ID)
	})
}

func TestDocumentSortTime(t *testing.T) {
	withDocumentDate := Invoice{DocumentDate: "2024-02-01T00:00:00Z", DueDate: "2024-03-01T00:00:00Z"}
	withDueDateOnly := Invoice{DueDate: "2024-03-01T00:00:00Z"}

	assert.True(t, DocumentSortTime(withDueDateOnly).After(DocumentSortTime(withDocumentDate)))
	assert.True(t, DocumentSortTime(Invoice{}).IsZero())
}
