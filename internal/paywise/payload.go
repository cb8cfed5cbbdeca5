package paywise

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/finbridge/escalator/internal/billwerk"
	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/types"
)

// BuildDebtorPayload assembles a new debtor record from billing data.
// The customer's address wins; the invoice recipient address is the
// fallback. A debtor is a business when the customer carries a company
// name or is missing a full person name.
func BuildDebtorPayload(customer *billwerk.Customer, invoice *billwerk.Invoice, reference string) (*DebtorPayload, error) {
	var addressSource *billwerk.Address
	if customer != nil && customer.Address != nil {
		addressSource = customer.Address
	} else if invoice != nil {
		addressSource = invoice.RecipientAddress
	}

	address := normalizeAddress(addressSource)
	if address == nil {
		return nil, ierr.NewError("missing address data for debtor creation").
			WithHint("Customer has no complete postal address").
			Mark(ierr.ErrIntegrity)
	}

	isBusiness := customer.CompanyName != "" || customer.FirstName == "" || customer.LastName == ""

	payload := &DebtorPayload{
		YourReference: reference,
		ActingAs:      ActingAsConsumer,
		Addresses:     []DebtorAddress{*address},
	}

	if isBusiness {
		payload.ActingAs = ActingAsBusiness
		orgName := customer.CompanyName
		if orgName == "" {
			orgName = customer.CustomerName
		}
		if orgName == "" {
			return nil, ierr.NewError("missing organization name for business debtor").
				WithHint("Customer has neither a company nor a customer name").
				Mark(ierr.ErrIntegrity)
		}
		payload.Organization = &Organization{Name: orgName}
	} else {
		payload.Person = &Person{
			FirstName: customer.FirstName,
			LastName:  customer.LastName,
		}
	}

	if customer.EmailAddress != "" {
		payload.CommunicationChannels = []CommunicationChannel{
			{Type: ChannelTypeEmail, Value: customer.EmailAddress},
		}
	}

	return payload, nil
}

// normalizeAddress converts a billing address, requiring street, zip,
// city, and country to be present.
func normalizeAddress(source *billwerk.Address) *DebtorAddress {
	if source == nil {
		return nil
	}

	streetParts := lo.Filter([]string{source.Street, source.HouseNumber}, func(part string, _ int) bool {
		return part != ""
	})
	street := strings.TrimSpace(strings.Join(streetParts, " "))

	if street == "" || source.PostalCode == "" || source.City == "" || source.Country == "" {
		return nil
	}

	return &DebtorAddress{
		Street:  street,
		Zip:     source.PostalCode,
		City:    source.City,
		Country: source.Country,
	}
}

// ClaimInput carries everything the claim payload is derived from.
type ClaimInput struct {
	DebtorID          string
	Contract          *billwerk.Contract
	Customer          *billwerk.Customer
	Invoice           *billwerk.Invoice
	DueDate           *string
	TriggerDays       *int
	OpenAmount        *float64
	DocumentReference string
	ClaimReference    string
	StartingApproach  string
	DefaultCurrency   string
}

// BuildClaimPayload normalizes billing data into a claim. All dates are
// date-only strings and all amounts 2-decimal fixed strings.
func BuildClaimPayload(in ClaimInput) (*ClaimPayload, error) {
	currency := in.DefaultCurrency
	if in.Invoice != nil && in.Invoice.Currency != "" {
		currency = in.Invoice.Currency
	} else if in.Contract != nil && in.Contract.Currency != "" {
		currency = in.Contract.Currency
	}

	documentDate := firstDateOnly(invoiceDocumentDate(in.Invoice), invoiceCreated(in.Invoice), deref(in.DueDate))
	occurenceDate := firstDateOnly(invoiceDocumentDate(in.Invoice), contractStartDate(in.Contract), deref(in.DueDate))
	dueDate := firstDateOnly(deref(in.DueDate), invoiceDueDate(in.Invoice))

	var invoiceGross *float64
	if in.Invoice != nil {
		invoiceGross = in.Invoice.TotalGross
	}

	mainClaimValue := types.FormatAmount(firstPresent(invoiceGross, in.OpenAmount))
	totalClaimValue := types.FormatAmount(firstPresent(in.OpenAmount, invoiceGross))

	if in.DebtorID == "" || in.DocumentReference == "" || documentDate == nil || occurenceDate == nil || dueDate == nil {
		return nil, ierr.NewError("missing required data to create claim").
			WithHint("Claim is missing debtor, reference, or date data").
			Mark(ierr.ErrIntegrity)
	}
	if mainClaimValue == nil || totalClaimValue == nil {
		return nil, ierr.NewError("missing claim amount data").
			WithHint("No resolvable claim amount").
			Mark(ierr.ErrIntegrity)
	}

	reminderDate := *dueDate
	delayDate := *dueDate

	payload := &ClaimPayload{
		Debtor:              in.DebtorID,
		YourReference:       in.ClaimReference,
		SubjectMatter:       buildSubjectMatter(in.Invoice, in.Contract, in.DocumentReference),
		OccurenceDate:       *occurenceDate,
		DocumentReference:   in.DocumentReference,
		DocumentDate:        *documentDate,
		DueDate:             *dueDate,
		ReminderDate:        reminderDate,
		DelayDate:           delayDate,
		TotalClaimAmount:    Amount{Value: *totalClaimValue, Currency: currency},
		MainClaimAmount:     Amount{Value: *mainClaimValue, Currency: currency},
		StartingApproach:    in.StartingApproach,
		ClaimDisputed:       false,
		ObligationFulfilled: true,
	}

	payload.Items = buildClaimItems(in.Invoice, currency)
	payload.Metadata = buildClaimMetadata(in)

	return payload, nil
}

func buildSubjectMatter(invoice *billwerk.Invoice, contract *billwerk.Contract, documentReference string) string {
	if invoice != nil && len(invoice.ItemList) > 0 {
		return fmt.Sprintf("Overdue invoice %s: %s", documentReference, invoice.ItemList[0].Description)
	}
	if contract != nil && contract.PlanID != "" {
		return fmt.Sprintf("Overdue invoice %s for plan %s", documentReference, contract.PlanID)
	}
	return fmt.Sprintf("Overdue invoice %s", documentReference)
}

func buildClaimItems(invoice *billwerk.Invoice, currency string) []ClaimItem {
	if invoice == nil || len(invoice.ItemList) == 0 {
		return nil
	}

	items := make([]ClaimItem, 0, len(invoice.ItemList))
	for _, item := range invoice.ItemList {
		amount := item.TotalGross
		if amount == nil && item.PricePerUnit != nil && item.Quantity != nil {
			total := *item.PricePerUnit * *item.Quantity
			amount = &total
		}
		amountValue := types.FormatAmount(amount)
		if amountValue == nil {
			continue
		}

		description := item.Description
		if description == "" {
			description = item.ProductDescription
		}
		if description == "" {
			description = "Invoice item"
		}

		quantity := 1.0
		if item.Quantity != nil && *item.Quantity != 0 {
			quantity = *item.Quantity
		}

		items = append(items, ClaimItem{
			Description: description,
			Quantity:    quantity,
			Amount:      Amount{Value: *amountValue, Currency: currency},
		})
	}
	return items
}

func buildClaimMetadata(in ClaimInput) []MetadataTag {
	var metadata []MetadataTag
	if in.DocumentReference != "" {
		metadata = append(metadata, MetadataTag{Type: "invoice:reference", Value: in.DocumentReference})
	}
	if in.Invoice != nil && in.Invoice.DocumentDate != "" {
		metadata = append(metadata, MetadataTag{Type: "invoice:date", Value: in.Invoice.DocumentDate})
	}
	if in.Contract != nil && in.Contract.ID != "" {
		metadata = append(metadata, MetadataTag{Type: "contract:reference", Value: in.Contract.ID})
	}
	if in.TriggerDays != nil {
		metadata = append(metadata, MetadataTag{Type: "subscription:overdue_period", Value: fmt.Sprintf("%d", *in.TriggerDays)})
	}
	return metadata
}

func firstDateOnly(values ...string) *string {
	for _, value := range values {
		if value == "" {
			continue
		}
		if normalized := types.ToDateOnly(value); normalized != nil {
			return normalized
		}
	}
	return nil
}

func firstPresent(values ...*float64) *float64 {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func invoiceDocumentDate(invoice *billwerk.Invoice) string {
	if invoice == nil {
		return ""
	}
	return invoice.DocumentDate
}

func invoiceCreated(invoice *billwerk.Invoice) string {
	if invoice == nil {
		return ""
	}
	return invoice.Created
}

func invoiceDueDate(invoice *billwerk.Invoice) string {
	if invoice == nil {
		return ""
	}
	return invoice.DueDate
}

func contractStartDate(contract *billwerk.Contract) string {
	if contract == nil {
		return ""
	}
	return contract.StartDate
}
