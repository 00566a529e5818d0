package normalize

import (
	"strconv"
	"strings"
)

// Coercion helpers shared by the enforcer and the store adapter. Any value
// that is empty or a sentinel maps to the declared type's zero; parse failure
// always falls back to the default instead of propagating an error.

func isSentinel(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "n/a", "--", "—", "-":
		return true
	}
	return false
}

// Int coerces a displayed value to an integer. Thousands separators and a
// leading '+' are stripped; fractional strings are truncated.
func Int(v string) int {
	if isSentinel(v) {
		return 0
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	cleaned = strings.TrimPrefix(cleaned, "+")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// Float coerces a displayed value to a float. Percent signs, thousands
// separators and a leading '+' are stripped first.
func Float(v string) float64 {
	if isSentinel(v) {
		return 0.0
	}
	cleaned := strings.TrimSpace(v)
	if strings.Contains(cleaned, "%") {
		cleaned = strings.ReplaceAll(cleaned, "%", "")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	cleaned = strings.TrimPrefix(strings.TrimSpace(cleaned), "+")
	if cleaned == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// String coerces a displayed value to a plain string, mapping sentinels to
// the empty string.
func String(v string) string {
	if isSentinel(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// FormatFloat renders a float the shortest way that round-trips, so repeated
// normalization passes settle on one representation.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatInt renders an int for storage in a display-string field.
func FormatInt(n int) string {
	return strconv.Itoa(n)
}
