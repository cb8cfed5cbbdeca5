package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/finbridge/escalator/internal/types"
)

type Configuration struct {
	Server       ServerConfig       `validate:"required"`
	Logging      LoggingConfig      `validate:"required"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
	Billwerk     BillwerkConfig     `mapstructure:"billwerk" validate:"required"`
	Paywise      PaywiseConfig      `mapstructure:"paywise" validate:"required"`
	LetterXpress LetterXpressConfig `mapstructure:"letterxpress" validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type WebhookConfig struct {
	// SharedSecret gates the inbound webhook when set.
	SharedSecret string `mapstructure:"shared_secret"`
}

type BillwerkConfig struct {
	BaseURL      string `mapstructure:"base_url" validate:"required,url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`

	// Raw allow-lists, comma or whitespace separated. Parsed once at
	// load time into the typed sets below.
	ClaimTriggerDaysRaw   string `mapstructure:"trigger_days"`
	DunningTriggerDaysRaw string `mapstructure:"dunning_trigger_days"`

	ClaimTriggerDays   types.TriggerDaySet `mapstructure:"-"`
	DunningTriggerDays types.TriggerDaySet `mapstructure:"-"`

	DunningTemplateID string `mapstructure:"dunning_template_id"`
	DunningTake       int    `mapstructure:"dunning_take"`
}

type PaywiseConfig struct {
	BaseURL          string `mapstructure:"base_url" validate:"required,url"`
	Token            string `mapstructure:"token"`
	StartingApproach string `mapstructure:"starting_approach"`
	DefaultCurrency  string `mapstructure:"default_currency"`
}

type LetterXpressConfig struct {
	BaseURL   string `mapstructure:"base_url" validate:"required,url"`
	Username  string `mapstructure:"username"`
	APIKey    string `mapstructure:"api_key"`
	Mode      string `mapstructure:"mode"`
	Color     string `mapstructure:"color"`
	PrintMode string `mapstructure:"print_mode"`
	Shipping  string `mapstructure:"shipping"`
	C4        int    `mapstructure:"c4"`
}

// HasBillwerkCredentials reports whether the OAuth client pair is configured.
func (c *Configuration) HasBillwerkCredentials() bool {
	return c.Billwerk.ClientID != "" && c.Billwerk.ClientSecret != ""
}

// HasPaywiseCredentials reports whether the collection service token is configured.
func (c *Configuration) HasPaywiseCredentials() bool {
	return c.Paywise.Token != ""
}

// HasLetterXpressCredentials reports whether the print service credentials are configured.
func (c *Configuration) HasLetterXpressCredentials() bool {
	return c.LetterXpress.Username != "" && c.LetterXpress.APIKey != ""
}

// OAuthTokenURL returns the client-credentials token endpoint derived
// from the Billwerk base URL.
func (c *BillwerkConfig) OAuthTokenURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/oauth/token/"
}

func NewConfig() (*Configuration, error) {
	// Local development keeps credentials in a .env file.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/escalator")

	v.SetEnvPrefix("ESCALATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Billwerk.ClaimTriggerDays = types.ParseTriggerDaySet(config.Billwerk.ClaimTriggerDaysRaw, 30)
	config.Billwerk.DunningTriggerDays = types.ParseTriggerDaySet(config.Billwerk.DunningTriggerDaysRaw, 22)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":3000")
	v.SetDefault("logging.level", "info")
	v.SetDefault("webhook.shared_secret", "")
	v.SetDefault("billwerk.base_url", "https://app.billwerk.com")
	v.SetDefault("billwerk.client_id", "")
	v.SetDefault("billwerk.client_secret", "")
	v.SetDefault("billwerk.trigger_days", "")
	v.SetDefault("billwerk.dunning_trigger_days", "")
	v.SetDefault("billwerk.dunning_template_id", "")
	v.SetDefault("billwerk.dunning_take", 25)
	v.SetDefault("paywise.base_url", "https://api.paywise.de")
	v.SetDefault("paywise.token", "")
	v.SetDefault("paywise.starting_approach", "extrajudicial")
	v.SetDefault("paywise.default_currency", "EUR")
	v.SetDefault("letterxpress.base_url", "https://api.letterxpress.de")
	v.SetDefault("letterxpress.username", "")
	v.SetDefault("letterxpress.api_key", "")
	v.SetDefault("letterxpress.mode", "test")
	v.SetDefault("letterxpress.color", "1")
	v.SetDefault("letterxpress.print_mode", "simplex")
	v.SetDefault("letterxpress.shipping", "national")
	v.SetDefault("letterxpress.c4", 0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a configuration suitable for tests and
// local scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Server:  ServerConfig{Address: ":3000"},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Billwerk: BillwerkConfig{
			BaseURL:            "https://app.billwerk.com",
			ClaimTriggerDays:   types.TriggerDaySet{30},
			DunningTriggerDays: types.TriggerDaySet{22},
			DunningTake:        25,
		},
		Paywise: PaywiseConfig{
			BaseURL:          "https://api.paywise.de",
			StartingApproach: "extrajudicial",
			DefaultCurrency:  "EUR",
		},
		LetterXpress: LetterXpressConfig{
			BaseURL:   "https://api.letterxpress.de",
			Mode:      "test",
			Color:     "1",
			PrintMode: "simplex",
			Shipping:  "national",
		},
	}
}
