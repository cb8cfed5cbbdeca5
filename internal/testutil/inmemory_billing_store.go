package testutil

import (
	"context"
	"sync"

	"github.com/finbridge/escalator/internal/billwerk"
	ierr "github.com/finbridge/escalator/internal/errors"
)

// InMemoryBillingStore implements billwerk.Client against in-memory
// fixtures and records the write operations the orchestrator performs.
type InMemoryBillingStore struct {
	mu sync.Mutex

	Contracts     map[string]*billwerk.Contract
	Customers     map[string]*billwerk.Customer
	LedgerEntries map[string][]billwerk.LedgerEntry
	Invoices      map[string]*billwerk.Invoice
	InvoiceList   []billwerk.Invoice
	Dunnings      map[string][]billwerk.Dunning
	Documents     map[string][]byte

	BookedPayments  []billwerk.PaymentRequest
	DownloadedPDFs  []string
	FailDunningLink bool
}

func NewInMemoryBillingStore() *InMemoryBillingStore {
	return &InMemoryBillingStore{
		Contracts:     make(map[string]*billwerk.Contract),
		Customers:     make(map[string]*billwerk.Customer),
		LedgerEntries: make(map[string][]billwerk.LedgerEntry),
		Invoices:      make(map[string]*billwerk.Invoice),
		Dunnings:      make(map[string][]billwerk.Dunning),
		Documents:     make(map[string][]byte),
	}
}

func (s *InMemoryBillingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Contracts = make(map[string]*billwerk.Contract)
	s.Customers = make(map[string]*billwerk.Customer)
	s.LedgerEntries = make(map[string][]billwerk.LedgerEntry)
	s.Invoices = make(map[string]*billwerk.Invoice)
	s.InvoiceList = nil
	s.Dunnings = make(map[string][]billwerk.Dunning)
	s.Documents = make(map[string][]byte)
	s.BookedPayments = nil
	s.DownloadedPDFs = nil
}

func (s *InMemoryBillingStore) GetContract(_ context.Context, contractID string) (*billwerk.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, ok := s.Contracts[contractID]
	if !ok {
		return nil, ierr.NewError("contract not found").Mark(ierr.ErrNotFound)
	}
	return contract, nil
}

func (s *InMemoryBillingStore) GetCustomer(_ context.Context, customerID string) (*billwerk.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer, ok := s.Customers[customerID]
	if !ok {
		return nil, ierr.NewError("customer not found").Mark(ierr.ErrNotFound)
	}
	return customer, nil
}

func (s *InMemoryBillingStore) ListLedgerEntries(_ context.Context, contractID string) ([]billwerk.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LedgerEntries[contractID], nil
}

func (s *InMemoryBillingStore) GetInvoice(_ context.Context, invoiceID string) (*billwerk.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.Invoices[invoiceID]
	if !ok {
		return nil, ierr.NewError("invoice not found").Mark(ierr.ErrNotFound)
	}
	return invoice, nil
}

func (s *InMemoryBillingStore) ListInvoices(_ context.Context, customerID string) ([]billwerk.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = customerID
	return append([]billwerk.Invoice(nil), s.InvoiceList...), nil
}

// AddInvoice registers an invoice for both lookup and listing.
func (s *InMemoryBillingStore) AddInvoice(invoice billwerk.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := invoice
	s.Invoices[invoice.ID] = &stored
	s.InvoiceList = append(s.InvoiceList, invoice)
}

func (s *InMemoryBillingStore) ListDunnings(_ context.Context, customerID string) ([]billwerk.Dunning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Dunnings[customerID], nil
}

func (s *InMemoryBillingStore) DownloadInvoicePDF(_ context.Context, invoiceID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.Documents[invoiceID]
	if !ok {
		return nil, ierr.NewError("document not found").Mark(ierr.ErrNotFound)
	}
	s.DownloadedPDFs = append(s.DownloadedPDFs, invoiceID)
	return content, nil
}

func (s *InMemoryBillingStore) DownloadDunningPDF(_ context.Context, dunningID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.Documents[dunningID]
	if !ok {
		return nil, ierr.NewError("document not found").Mark(ierr.ErrNotFound)
	}
	s.DownloadedPDFs = append(s.DownloadedPDFs, dunningID)
	return content, nil
}

func (s *InMemoryBillingStore) BookPayment(_ context.Context, contractID string, payment billwerk.PaymentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = contractID
	s.BookedPayments = append(s.BookedPayments, payment)
	return nil
}
