package types

import (
	"time"
)

// DateOnlyFormat is the wire format for all provider-facing dates.
const DateOnlyFormat = "2006-01-02"

// dateLayouts are tried in order when normalizing provider timestamps.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	DateOnlyFormat,
}

// ToDateOnly normalizes a provider date value to YYYY-MM-DD.
// Returns nil when the value is empty or unparsable.
func ToDateOnly(value string) *string {
	if value == "" {
		return nil
	}
	if len(value) == len(DateOnlyFormat) {
		if _, err := time.Parse(DateOnlyFormat, value); err == nil {
			v := value
			return &v
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			v := t.UTC().Format(DateOnlyFormat)
			return &v
		}
	}
	return nil
}

// ParseSortTime parses a provider timestamp for ordering purposes.
// Unparsable or empty values sort as the zero time.
func ParseSortTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// TodayUTC returns the current UTC date in wire format.
func TodayUTC() string {
	return time.Now().UTC().Format(DateOnlyFormat)
}
