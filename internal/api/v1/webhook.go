package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbridge/escalator/internal/api/dto"
	"github.com/finbridge/escalator/internal/config"
	ierr "github.com/finbridge/escalator/internal/errors"
	"github.com/finbridge/escalator/internal/logger"
	"github.com/finbridge/escalator/internal/service"
)

const sharedSecretHeader = "x-webhook-secret"

// WebhookHandler receives billing provider webhooks and routes them
// into the dunning or claim flow.
type WebhookHandler struct {
	cfg        *config.Configuration
	escalation service.EscalationService
	logger     *logger.Logger
}

func NewWebhookHandler(cfg *config.Configuration, escalation service.EscalationService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		escalation: escalation,
		logger:     log,
	}
}

// Health answers the liveness probe.
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// PaymentEscalated handles the PaymentEscalated webhook. Flow
// selection order: shared secret, event type, trigger-day eligibility
// (dunning wins over claim), required ids, provider credentials.
func (h *WebhookHandler) PaymentEscalated(c *gin.Context) {
	if secret := h.cfg.Webhook.SharedSecret; secret != "" {
		provided := c.GetHeader(sharedSecretHeader)
		if provided == "" || provided != secret {
			c.JSON(http.StatusUnauthorized, ierr.ErrorResponse{Error: "Unauthorized"})
			return
		}
	}

	var event dto.EscalationEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		// An empty body is treated as an empty event, not a parse error.
		if !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, ierr.ErrorResponse{Error: "Invalid JSON payload"})
			return
		}
		event = dto.EscalationEvent{}
	}

	if event.Event != dto.EventTypePaymentEscalated {
		c.JSON(http.StatusAccepted, dto.IgnoredResponse{Status: "ignored"})
		return
	}

	triggerDays := event.NormalizedTriggerDays()
	dunningEligible := h.cfg.Billwerk.DunningTriggerDays.Allows(triggerDays)
	claimEligible := h.cfg.Billwerk.ClaimTriggerDays.Allows(triggerDays)

	if !dunningEligible && !claimEligible {
		c.JSON(http.StatusAccepted, dto.IgnoredResponse{
			Status:             "ignored",
			Reason:             "trigger_days_not_allowed",
			TriggerDays:        triggerDays,
			AllowedTriggerDays: h.cfg.Billwerk.ClaimTriggerDays,
			DunningTriggerDays: h.cfg.Billwerk.DunningTriggerDays,
		})
		return
	}

	if event.ContractID == "" || event.CustomerID == "" {
		c.JSON(http.StatusUnprocessableEntity, ierr.ErrorResponse{Error: "Missing ContractId or CustomerId"})
		return
	}

	if dunningEligible {
		h.handleDunning(c, &event, triggerDays)
		return
	}
	h.handleClaim(c, &event, triggerDays)
}

func (h *WebhookHandler) handleDunning(c *gin.Context, event *dto.EscalationEvent, triggerDays *int) {
	if !h.cfg.HasBillwerkCredentials() || !h.cfg.HasLetterXpressCredentials() {
		c.JSON(http.StatusInternalServerError, ierr.ErrorResponse{Error: "Missing API credentials"})
		return
	}

	result, err := h.escalation.HandleDunningFlow(c.Request.Context(), event)
	if err != nil {
		h.logger.Errorw("dunning flow failed",
			"customer_id", event.CustomerID,
			"trigger_days", triggerDays,
			"error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.DunningResponse{
		Status:            "dunning_sent",
		DunningID:         result.DunningID,
		LetterxpressJobID: result.JobID,
	})
}

func (h *WebhookHandler) handleClaim(c *gin.Context, event *dto.EscalationEvent, triggerDays *int) {
	if !h.cfg.HasBillwerkCredentials() || !h.cfg.HasPaywiseCredentials() {
		c.JSON(http.StatusInternalServerError, ierr.ErrorResponse{Error: "Missing API credentials"})
		return
	}

	result, err := h.escalation.HandleClaimFlow(c.Request.Context(), event)
	if err != nil {
		h.logger.Errorw("claim flow failed",
			"contract_id", event.ContractID,
			"customer_id", event.CustomerID,
			"error", err)
		c.Error(err)
		return
	}

	if result.Status == service.ClaimStatusExists {
		c.JSON(http.StatusOK, dto.ClaimResponse{
			Status:  result.Status,
			ClaimID: result.ClaimID,
		})
		return
	}

	c.JSON(http.StatusCreated, dto.ClaimResponse{
		Status:      result.Status,
		ClaimID:     result.ClaimID,
		TriggerDays: triggerDays,
	})
}
