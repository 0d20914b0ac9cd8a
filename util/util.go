package util

import (
	"strings"
)

// NormalizeSource builds the source side of the mapping soft key.
// Upstream platforms are inconsistent in casing and separators, so
// "Google Ads", "google_ads" and "GOOGLE-ADS" all normalize to the
// same key. Used on both write and read paths, never inline.
func NormalizeSource(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// NormalizeExternalID builds the id side of the mapping soft key.
// External campaign ids are compared as trimmed text regardless of the
// platform's native type.
func NormalizeExternalID(externalID string) string {
	return strings.TrimSpace(externalID)
}

// SafeDivide guards the denominator. Zero-impression and zero-click
// days are common in the fact tables, so every derived rate goes
// through here and yields 0 instead of NaN or +Inf.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
