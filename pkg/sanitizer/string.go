package sanitizer

import "strings"

// TrimAndNormalize trims s and collapses every run of whitespace, including
// tabs and newlines, into a single space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName is used for display names such as field and game titles.
// Case is kept as entered.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeLabel collapses whitespace and lower-cases, e.g. for game types.
func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}
