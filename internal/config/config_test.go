package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/escalator/internal/types"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, "https://app.billwerk.com", cfg.Billwerk.BaseURL)
	assert.Equal(t, types.TriggerDaySet{30}, cfg.Billwerk.ClaimTriggerDays)
	assert.Equal(t, types.TriggerDaySet{22}, cfg.Billwerk.DunningTriggerDays)
	assert.Equal(t, 25, cfg.Billwerk.DunningTake)
	assert.Equal(t, "extrajudicial", cfg.Paywise.StartingApproach)
	assert.Equal(t, "EUR", cfg.Paywise.DefaultCurrency)
	assert.Equal(t, "test", cfg.LetterXpress.Mode)

	assert.False(t, cfg.HasBillwerkCredentials())
	assert.False(t, cfg.HasPaywiseCredentials())
	assert.False(t, cfg.HasLetterXpressCredentials())
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("ESCALATOR_BILLWERK_CLIENT_ID", "client-id")
	t.Setenv("ESCALATOR_BILLWERK_CLIENT_SECRET", "client-secret")
	t.Setenv("ESCALATOR_BILLWERK_TRIGGER_DAYS", "30, 45")
	t.Setenv("ESCALATOR_BILLWERK_DUNNING_TRIGGER_DAYS", "14,22")
	t.Setenv("ESCALATOR_PAYWISE_TOKEN", "pw-token")
	t.Setenv("ESCALATOR_WEBHOOK_SHARED_SECRET", "hook-secret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.True(t, cfg.HasBillwerkCredentials())
	assert.True(t, cfg.HasPaywiseCredentials())
	assert.Equal(t, "hook-secret", cfg.Webhook.SharedSecret)
	assert.Equal(t, types.TriggerDaySet{30, 45}, cfg.Billwerk.ClaimTriggerDays)
	assert.Equal(t, types.TriggerDaySet{14, 22}, cfg.Billwerk.DunningTriggerDays)
}

func TestOAuthTokenURL(t *testing.T) {
	cfg := BillwerkConfig{BaseURL: "https://app.billwerk.com/"}
	assert.Equal(t, "https://app.billwerk.com/oauth/token/", cfg.OAuthTokenURL())

	cfg.BaseURL = "https://sandbox.billwerk.com"
	assert.Equal(t, "https://sandbox.billwerk.com/oauth/token/", cfg.OAuthTokenURL())
}

func TestValidateRejectsBadURLs(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Billwerk.BaseURL = "not a url"
	require.Error(t, cfg.Validate())
}
