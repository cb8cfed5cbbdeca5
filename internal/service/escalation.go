package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/finbridge/escalator/internal/api/dto"
	"github.com/finbridge/escalator/internal/billwerk"
	"github.com/finbridge/escalator/internal/config"
	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/letterxpress"
	"github.com/finbridge/escalator/internal/logger"
	"github.com/finbridge/escalator/internal/matcher"
	"github.com/finbridge/escalator/internal/paywise"
	"github.com/finbridge/escalator/internal/types"
)

const (
	// ClaimStatusExists marks the idempotent short-circuit: a claim for
	// this document reference already exists.
	ClaimStatusExists = "exists"
	// ClaimStatusCreated marks a freshly created claim.
	ClaimStatusCreated = "created"

	claimReferencePrefix = "billwerk:"
)

// ClaimResult is the outcome of the claim flow.
type ClaimResult struct {
	Status  string
	ClaimID string
}

// DunningResult is the outcome of the dunning flow.
type DunningResult struct {
	DunningID string
	JobID     string
}

// EscalationService orchestrates the reaction to a payment escalation.
type EscalationService interface {
	HandleClaimFlow(ctx context.Context, event *dto.EscalationEvent) (*ClaimResult, error)
	HandleDunningFlow(ctx context.Context, event *dto.EscalationEvent) (*DunningResult, error)
}

type escalationService struct {
	cfg          *config.Configuration
	billwerk     billwerk.Client
	paywise      paywise.Client
	letterxpress letterxpress.Client
	logger       *logger.Logger
}

// NewEscalationService wires the orchestrator against the three
// provider clients.
func NewEscalationService(
	cfg *config.Configuration,
	billwerkClient billwerk.Client,
	paywiseClient paywise.Client,
	letterxpressClient letterxpress.Client,
	log *logger.Logger,
) EscalationService {
	return &escalationService{
		cfg:          cfg,
		billwerk:     billwerkClient,
		paywise:      paywiseClient,
		letterxpress: letterxpressClient,
		logger:       log,
	}
}

// HandleClaimFlow resolves billing data, idempotently creates a
// debt-collection claim, attaches matching documents, releases the
// claim, and books the hand-over payment. Side effects of completed
// steps are not rolled back when a later step fails; the failure
// surfaces to the caller instead.
func (s *escalationService) HandleClaimFlow(ctx context.Context, event *dto.EscalationEvent) (*ClaimResult, error) {
	dueDate := event.DueDateOnly()

	var (
		contract *billwerk.Contract
		customer *billwerk.Customer
		ledger   []billwerk.LedgerEntry
	)

	// The three base reads are independent; everything after depends
	// on their results.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contract, err = s.billwerk.GetContract(gctx, event.ContractID)
		return err
	})
	g.Go(func() error {
		var err error
		customer, err = s.billwerk.GetCustomer(gctx, event.CustomerID)
		return err
	})
	g.Go(func() error {
		var err error
		ledger, err = s.billwerk.ListLedgerEntries(gctx, event.ContractID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	receivable := billwerk.PickReceivableEntry(ledger, dueDate)
	invoice, err := billwerk.ResolveInvoice(ctx, s.billwerk, event.ContractID, event.CustomerID, dueDate, receivable)
	if err != nil {
		return nil, err
	}

	debtorID, err := s.ensureDebtor(ctx, customer, invoice)
	if err != nil {
		return nil, err
	}

	documentReference := s.documentReference(invoice, event.ContractID)
	claimReference := claimReferencePrefix + documentReference

	existing, err := s.paywise.FindClaim(ctx, documentReference, claimReference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Infow("claim already exists, skipping creation",
			"document_reference", documentReference,
			"claim_id", existing.ID)
		return &ClaimResult{Status: ClaimStatusExists, ClaimID: existing.ID}, nil
	}

	var receivableAmount, invoiceGross *float64
	if receivable != nil {
		receivableAmount = receivable.Amount
	}
	if invoice != nil {
		invoiceGross = invoice.TotalGross
	}
	openAmount := types.FirstPositiveAmount(contract.Balance, receivableAmount, invoiceGross)

	payload, err := paywise.BuildClaimPayload(paywise.ClaimInput{
		DebtorID:          debtorID,
		Contract:          contract,
		Customer:          customer,
		Invoice:           invoice,
		DueDate:           dueDate,
		TriggerDays:       event.NormalizedTriggerDays(),
		OpenAmount:        openAmount,
		DocumentReference: documentReference,
		ClaimReference:    claimReference,
		StartingApproach:  s.cfg.Paywise.StartingApproach,
		DefaultCurrency:   s.cfg.Paywise.DefaultCurrency,
	})
	if err != nil {
		return nil, err
	}

	claim, err := s.paywise.CreateClaim(ctx, payload)
	if err != nil {
		return nil, err
	}
	if claim == nil || claim.ID == "" {
		return nil, ierr.NewError("missing claim id after claim creation").
			WithHint("Missing claim id after Paywise creation").
			Mark(ierr.ErrIntegrity)
	}

	targetAmount := types.NormalizeAmount(firstPresent(openAmount, invoiceGross))
	if targetAmount != nil {
		if err := s.uploadClaimDocuments(ctx, claim.ID, event.ContractID, event.CustomerID, targetAmount); err != nil {
			return nil, err
		}
	} else {
		s.logger.Warnw("skipping document upload, missing amount", "claim_id", claim.ID)
	}

	if err := s.paywise.ReleaseClaim(ctx, claim.ID); err != nil {
		return nil, err
	}

	paymentAmount := types.FirstPositiveAmount(openAmount, invoiceGross)
	paymentCurrency := ""
	if invoice != nil && invoice.Currency != "" {
		paymentCurrency = invoice.Currency
	} else if contract != nil {
		paymentCurrency = contract.Currency
	}
	if paymentAmount == nil || paymentCurrency == "" {
		return nil, ierr.NewError("missing payment amount or currency").
			WithHint("Missing Billwerk payment amount or currency").
			Mark(ierr.ErrIntegrity)
	}

	err = s.billwerk.BookPayment(ctx, event.ContractID, billwerk.PaymentRequest{
		Amount:      *paymentAmount,
		Currency:    paymentCurrency,
		Description: fmt.Sprintf("Übergabe an Paywise. AZ: %s", claim.ID),
		BookingDate: types.TodayUTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("claim created and released",
		"claim_id", claim.ID,
		"document_reference", documentReference,
		"contract_id", event.ContractID)
	return &ClaimResult{Status: ClaimStatusCreated, ClaimID: claim.ID}, nil
}

// HandleDunningFlow forwards the customer's latest dunning notice to
// the postal print service.
func (s *escalationService) HandleDunningFlow(ctx context.Context, event *dto.EscalationEvent) (*DunningResult, error) {
	dunnings, err := s.billwerk.ListDunnings(ctx, event.CustomerID)
	if err != nil {
		return nil, err
	}

	latest := billwerk.PickLatestDunning(dunnings)
	if latest == nil || latest.ID == "" {
		return nil, ierr.NewError("no dunning available").
			WithHint("No dunning available for LetterXpress send").
			Mark(ierr.ErrUnprocessable)
	}

	pdf, err := s.billwerk.DownloadDunningPDF(ctx, latest.ID)
	if err != nil {
		return nil, err
	}

	base := latest.DunningNumber
	if base == "" {
		base = latest.ID
	}
	filename := types.SanitizeFilename(base) + ".pdf"

	job, err := s.letterxpress.SubmitPrintJob(ctx, pdf, filename)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("dunning forwarded to print service",
		"dunning_id", latest.ID,
		"customer_id", event.CustomerID,
		"job_id", job.JobID)
	return &DunningResult{DunningID: latest.ID, JobID: job.JobID}, nil
}

// ensureDebtor resolves the debtor record for the customer's external
// reference, creating it when the lookup finds nothing.
func (s *escalationService) ensureDebtor(ctx context.Context, customer *billwerk.Customer, invoice *billwerk.Invoice) (string, error) {
	reference := customer.ExternalReference()
	if reference == "" {
		return "", ierr.NewError("missing customer id for debtor reference").
			WithHint("Customer has no usable external reference").
			Mark(ierr.ErrIntegrity)
	}

	existing, err := s.paywise.FindDebtorByReference(ctx, reference)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	payload, err := paywise.BuildDebtorPayload(customer, invoice, reference)
	if err != nil {
		return "", err
	}

	created, err := s.paywise.CreateDebtor(ctx, payload)
	if err != nil {
		return "", err
	}
	if created == nil || created.ID == "" {
		return "", ierr.NewError("missing debtor id after creation").
			WithHint("Collection service returned no debtor id").
			Mark(ierr.ErrIntegrity)
	}
	return created.ID, nil
}

// uploadClaimDocuments selects the most recent contract documents whose
// amounts sum to the target and attaches them to the claim. Finding no
// combination is a warning, not a failure; a failed download or upload
// of a selected document does fail the flow.
func (s *escalationService) uploadClaimDocuments(ctx context.Context, claimID, contractID, customerID string, targetAmount *decimal.Decimal) error {
	invoices, err := s.billwerk.ListInvoices(ctx, customerID)
	if err != nil {
		return err
	}

	window := lo.Filter(invoices, func(invoice billwerk.Invoice, _ int) bool {
		return invoice.ContractID == contractID
	})
	sortDocumentsByRecency(window)
	if len(window) > matcher.MaxDocuments {
		window = window[:matcher.MaxDocuments]
	}

	if len(window) == 0 {
		s.logger.Warnw("no invoices found for document upload", "contract_id", contractID)
		return nil
	}

	selection := matcher.FindCombination(window, targetAmount)
	if selection == nil {
		s.logger.Warnw("no document combination matches open amount, skipping",
			"target_amount", targetAmount.String(),
			"invoice_ids", lo.Map(window, func(invoice billwerk.Invoice, _ int) string { return invoice.ID }))
		return nil
	}

	for _, document := range selection {
		if document.ID == "" {
			continue
		}
		pdf, err := s.billwerk.DownloadInvoicePDF(ctx, document.ID)
		if err != nil {
			return err
		}

		base := document.InvoiceNumber
		if base == "" {
			base = document.ID
		}
		filename := types.SanitizeFilename(base) + ".pdf"

		if err := s.paywise.UploadClaimDocument(ctx, claimID, filename, pdf); err != nil {
			return err
		}
	}
	return nil
}

// documentReference derives the idempotency key for claim creation.
func (s *escalationService) documentReference(invoice *billwerk.Invoice, contractID string) string {
	if invoice != nil {
		if invoice.InvoiceNumber != "" {
			return invoice.InvoiceNumber
		}
		if invoice.ID != "" {
			return invoice.ID
		}
	}
	return contractID
}

func sortDocumentsByRecency(documents []billwerk.Invoice) {
	sort.SliceStable(documents, func(i, j int) bool {
		return billwerk.DocumentSortTime(documents[i]).After(billwerk.DocumentSortTime(documents[j]))
	})
}

func firstPresent(values ...*float64) *float64 {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}
