package paywise

// Amount is a monetary value as the collection service expects it:
// a 2-decimal fixed string plus ISO currency.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Debtor is the collection-service party record for a pursued customer.
type Debtor struct {
	ID string `json:"id"`
}

// DebtorAddress is a postal address in collection-service shape.
type DebtorAddress struct {
	Street  string `json:"street"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Organization names a business debtor.
type Organization struct {
	Name string `json:"name"`
}

// Person names a consumer debtor.
type Person struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CommunicationChannel is a way of reaching the debtor.
type CommunicationChannel struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

const (
	ActingAsBusiness = "business"
	ActingAsConsumer = "consumer"

	ChannelTypeEmail = "email"
)

// DebtorPayload creates a debtor record.
type DebtorPayload struct {
	YourReference         string                 `json:"your_reference"`
	ActingAs              string                 `json:"acting_as"`
	Addresses             []DebtorAddress        `json:"addresses"`
	Organization          *Organization          `json:"organization,omitempty"`
	Person                *Person                `json:"person,omitempty"`
	CommunicationChannels []CommunicationChannel `json:"communication_channels,omitempty"`
}

// Claim is a debt-collection case record.
type Claim struct {
	ID string `json:"id"`
}

// ClaimItem is an optional claim line item.
type ClaimItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Amount      Amount  `json:"amount"`
}

// MetadataTag attaches free-form context to a claim.
type MetadataTag struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ClaimPayload creates a claim. Built once per request, sent exactly once.
type ClaimPayload struct {
	Debtor              string        `json:"debtor"`
	YourReference       string        `json:"your_reference"`
	SubjectMatter       string        `json:"subject_matter"`
	OccurenceDate       string        `json:"occurence_date"`
	DocumentReference   string        `json:"document_reference"`
	DocumentDate        string        `json:"document_date"`
	DueDate             string        `json:"due_date"`
	ReminderDate        string        `json:"reminder_date"`
	DelayDate           string        `json:"delay_date"`
	TotalClaimAmount    Amount        `json:"total_claim_amount"`
	MainClaimAmount     Amount        `json:"main_claim_amount"`
	StartingApproach    string        `json:"starting_approach"`
	ClaimDisputed       bool          `json:"claim_disputed"`
	ObligationFulfilled bool          `json:"obligation_fulfilled"`
	Items               []ClaimItem   `json:"items,omitempty"`
	Metadata            []MetadataTag `json:"metadata,omitempty"`
}

// releaseRequest transitions a claim out of the draft submission state.
type releaseRequest struct {
	SubmissionState       string `json:"submission_state"`
	SendOrderConfirmation bool   `json:"send_order_confirmation"`
}

type debtorList struct {
	Results []Debtor `json:"results"`
}

type claimList struct {
	Results []Claim `json:"results"`
}
