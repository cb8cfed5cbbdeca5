package billwerk

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/finbridge/escalator/internal/types"
)

// PickReceivableEntry selects the ledger entry a claim should be based
// on. Receivables with an invoice due exactly on the event's due date
// win; otherwise the most recently due entry, preferring entries that
// link an invoice.
func PickReceivableEntry(entries []LedgerEntry, dueDate *string) *LedgerEntry {
	receivables := lo.Filter(entries, func(entry LedgerEntry, _ int) bool {
		return entry.Type == LedgerEntryTypeReceivable
	})
	if len(receivables) == 0 {
		return nil
	}

	if dueDate != nil {
		match, found := lo.Find(receivables, func(entry LedgerEntry) bool {
			if entry.InvoiceID == "" {
				return false
			}
			entryDue := types.ToDateOnly(entry.DueDate)
			return entryDue != nil && *entryDue == *dueDate
		})
		if found {
			return &match
		}
	}

	withInvoice := lo.Filter(receivables, func(entry LedgerEntry, _ int) bool {
		return entry.InvoiceID != ""
	})

	pool := receivables
	if len(withInvoice) > 0 {
		pool = withInvoice
	}

	sorted := make([]LedgerEntry, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return types.ParseSortTime(sorted[i].DueDate).After(types.ParseSortTime(sorted[j].DueDate))
	})
	return &sorted[0]
}

// ResolveInvoice fetches the invoice behind the receivable entry, or
// falls back to the customer's most recently due true invoice for the
// contract, optionally narrowed to the event's due date.
func ResolveInvoice(ctx context.Context, client Client, contractID, customerID string, dueDate *string, receivable *LedgerEntry) (*Invoice, error) {
	if receivable != nil && receivable.InvoiceID != "" {
		return client.GetInvoice(ctx, receivable.InvoiceID)
	}

	invoices, err := client.ListInvoices(ctx, customerID)
	if err != nil {
		return nil, err
	}

	filtered := lo.Filter(invoices, func(invoice Invoice, _ int) bool {
		if invoice.ContractID != contractID {
			return false
		}
		if invoice.IsInvoice == nil || !*invoice.IsInvoice {
			return false
		}
		if dueDate == nil {
			return true
		}
		invoiceDue := types.ToDateOnly(invoice.DueDate)
		return invoiceDue != nil && *invoiceDue == *dueDate
	})
	if len(filtered) == 0 {
		return nil, nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return types.ParseSortTime(filtered[i].DueDate).After(types.ParseSortTime(filtered[j].DueDate))
	})
	return client.GetInvoice(ctx, filtered[0].ID)
}

// DocumentSortTime orders billing documents most-recent-first for the
// document matcher window.
func DocumentSortTime(invoice Invoice) time.Time {
	for _, value := range []string{invoice.DocumentDate, invoice.SentAt, invoice.Created, invoice.DueDate} {
		if t := types.ParseSortTime(value); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// PickLatestDunning selects the most recent dunning notice, preferring
// sent time over creation time over document date.
func PickLatestDunning(dunnings []Dunning) *Dunning {
	if len(dunnings) == 0 {
		return nil
	}

	sorted := make([]Dunning, len(dunnings))
	copy(sorted, dunnings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dunningSortTime(sorted[i]).After(dunningSortTime(sorted[j]))
	})
	return &sorted[0]
}

func dunningSortTime(dunning Dunning) time.Time {
	for _, value := range []string{dunning.SentAt, dunning.CreationTime, dunning.DocumentDate} {
		if t := types.ParseSortTime(value); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}
