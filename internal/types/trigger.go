package types

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// TriggerDaySet is an allow-list of escalation trigger days.
// An empty set allows any value.
type TriggerDaySet []int

// NormalizeTriggerDays truncates the webhook's TriggerDays value to an
// integer. Absent or non-finite values normalize to nil ("unknown").
func NormalizeTriggerDays(value *float64) *int {
	if value == nil {
		return nil
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	days := int(math.Trunc(*value))
	return &days
}

// Allows reports whether the given trigger day is eligible against the
// set. An empty set allows everything; an unknown day never matches a
// non-empty set.
func (s TriggerDaySet) Allows(days *int) bool {
	if len(s) == 0 {
		return true
	}
	if days == nil {
		return false
	}
	return lo.Contains(s, *days)
}

// ParseTriggerDaySet parses a comma/whitespace separated allow-list,
// truncating fractional values and de-duplicating while preserving
// order. An unset value falls back to the default; an explicit value
// that parses to nothing also falls back.
func ParseTriggerDaySet(raw string, fallback ...int) TriggerDaySet {
	if strings.TrimSpace(raw) == "" {
		return TriggerDaySet(fallback)
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	days := make([]int, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		days = append(days, int(math.Trunc(value)))
	}

	if len(days) == 0 {
		return TriggerDaySet(fallback)
	}
	return TriggerDaySet(lo.Uniq(days))
}
