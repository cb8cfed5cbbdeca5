package billwerk

// Provider payloads are partial projections: pointer fields mark values
// that may be absent in the JSON, and absence is handled at the point
// of use rather than defaulted at the boundary.

// Contract is the subscription contract projection.
type Contract struct {
	ID        string   `json:"Id"`
	PlanID    string   `json:"PlanId"`
	Currency  string   `json:"Currency"`
	Balance   *float64 `json:"Balance"`
	StartDate string   `json:"StartDate"`
}

// Customer is the billing customer projection.
type Customer struct {
	ID           string   `json:"Id"`
	CustomerID   string   `json:"CustomerId"`
	CustomerName string   `json:"CustomerName"`
	CompanyName  string   `json:"CompanyName"`
	FirstName    string   `json:"FirstName"`
	LastName     string   `json:"LastName"`
	EmailAddress string   `json:"EmailAddress"`
	Address      *Address `json:"Address"`
}

// ExternalReference is the identifier used to key debtor records at the
// collection service.
func (c *Customer) ExternalReference() string {
	if c == nil {
		return ""
	}
	if c.ID != "" {
		return c.ID
	}
	return c.CustomerID
}

// Address as embedded in customers and invoice recipients.
type Address struct {
	Street      string `json:"Street"`
	HouseNumber string `json:"HouseNumber"`
	PostalCode  string `json:"PostalCode"`
	City        string `json:"City"`
	Country     string `json:"Country"`
}

// LedgerEntry is a contract ledger line item.
type LedgerEntry struct {
	ID        string   `json:"Id"`
	Type      string   `json:"Type"`
	Amount    *float64 `json:"Amount"`
	DueDate   string   `json:"DueDate"`
	InvoiceID string   `json:"InvoiceId"`
}

// LedgerEntryTypeReceivable marks entries representing money owed.
const LedgerEntryTypeReceivable = "Receivable"

// Invoice is the billing document projection. IsInvoice distinguishes
// true invoices from credit notes; nil means the provider did not say.
type Invoice struct {
	ID               string        `json:"Id"`
	InvoiceNumber    string        `json:"InvoiceNumber"`
	ContractID       string        `json:"ContractId"`
	IsInvoice        *bool         `json:"IsInvoice"`
	TotalGross       *float64      `json:"TotalGross"`
	Currency         string        `json:"Currency"`
	DueDate          string        `json:"DueDate"`
	DocumentDate     string        `json:"DocumentDate"`
	Created          string        `json:"Created"`
	SentAt           string        `json:"SentAt"`
	RecipientAddress *Address      `json:"RecipientAddress"`
	ItemList         []InvoiceItem `json:"ItemList"`
}

// InvoiceItem is a single invoice line item.
type InvoiceItem struct {
	Description        string   `json:"Description"`
	ProductDescription string   `json:"ProductDescription"`
	Quantity           *float64 `json:"Quantity"`
	PricePerUnit       *float64 `json:"PricePerUnit"`
	TotalGross         *float64 `json:"TotalGross"`
}

// Dunning is a dunning notice projection.
type Dunning struct {
	ID            string `json:"Id"`
	DunningNumber string `json:"DunningNumber"`
	SentAt        string `json:"SentAt"`
	CreationTime  string `json:"CreationTime"`
	DocumentDate  string `json:"DocumentDate"`
}

// PaymentRequest books an external payment against a contract.
type PaymentRequest struct {
	Amount      float64 `json:"Amount"`
	Currency    string  `json:"Currency"`
	Description string  `json:"Description"`
	BookingDate string  `json:"BookingDate,omitempty"`
}

// downloadLink is the response of the downloadlink endpoints. Field
// matching is case-insensitive, which covers the Url/url/URL variants
// the provider emits.
type downloadLink struct {
	URL string `json:"Url"`
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   float64 `json:"expires_in"`
}
