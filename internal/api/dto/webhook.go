package dto

import (
	"github.com/finbridge/escalator/internal/types"
)

// EventTypePaymentEscalated is the only webhook event type this
// service reacts to.
const EventTypePaymentEscalated = "PaymentEscalated"

// EscalationEvent is the normalized webhook payload. Immutable once
// parsed; one instance per request.
type EscalationEvent struct {
	Event       string   `json:"Event"`
	ContractID  string   `json:"ContractId"`
	CustomerID  string   `json:"CustomerId"`
	DueDate     string   `json:"DueDate"`
	TriggerDays *float64 `json:"TriggerDays"`
}

// NormalizedTriggerDays truncates the trigger days to an integer;
// nil means the value was absent or not a finite number.
func (e *EscalationEvent) NormalizedTriggerDays() *int {
	return types.NormalizeTriggerDays(e.TriggerDays)
}

// DueDateOnly returns the event due date normalized to YYYY-MM-DD.
func (e *EscalationEvent) DueDateOnly() *string {
	return types.ToDateOnly(e.DueDate)
}

// HealthResponse answers the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// IgnoredResponse reports an event that was accepted but not acted on.
type IgnoredResponse struct {
	Status             string              `json:"status"`
	Reason             string              `json:"reason,omitempty"`
	TriggerDays        *int                `json:"triggerDays,omitempty"`
	AllowedTriggerDays types.TriggerDaySet `json:"allowedTriggerDays,omitempty"`
	DunningTriggerDays types.TriggerDaySet `json:"dunningTriggerDays,omitempty"`
}

// ClaimResponse reports the outcome of the claim flow.
type ClaimResponse struct {
	Status      string `json:"status"`
	ClaimID     string `json:"claimId"`
	TriggerDays *int   `json:"triggerDays,omitempty"`
}

// DunningResponse reports the outcome of the dunning flow.
type DunningResponse struct {
	Status            string `json:"status"`
	DunningID         string `json:"dunningId"`
	LetterxpressJobID string `json:"letterxpressJobId,omitempty"`
}
