package types

import (
	"math"
	"regexp"

	"github.com/shopspring/decimal"
)

// NormalizeAmount converts a provider amount to a positive decimal.
// Nil, non-finite, zero, and negative values normalize to nil.
func NormalizeAmount(value *float64) *decimal.Decimal {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	if *value <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(*value)
	return &d
}

// FormatAmount renders a provider amount as a 2-decimal fixed string,
// the format collection claims are denominated in. Returns nil when the
// value is absent or not finite.
func FormatAmount(value *float64) *string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	s := decimal.NewFromFloat(*value).StringFixed(2)
	return &s
}

// FirstPositiveAmount returns the first positive finite candidate.
func FirstPositiveAmount(candidates ...*float64) *float64 {
	for _, value := range candidates {
		if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
			continue
		}
		if *value > 0 {
			return value
		}
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename replaces characters that upload and print services
// reject in attachment names.
func SanitizeFilename(base string) string {
	if base == "" {
		base = "document"
	}
	return unsafeFilenameChars.ReplaceAllString(base, "_")
}
