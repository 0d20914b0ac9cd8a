package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSource(t *testing.T) {
	assert.Equal(t, "google_ads", NormalizeSource("Google Ads"))
	assert.Equal(t, "google_ads", NormalizeSource("  google_ads  "))
	assert.Equal(t, "google_ads", NormalizeSource("GOOGLE-ADS"))
	assert.Equal(t, "bing_ads", NormalizeSource("Bing Ads"))
	assert.Equal(t, "", NormalizeSource("   "))
}

func TestNormalizeExternalID(t *testing.T) {
	assert.Equal(t, "123", NormalizeExternalID(" 123 "))
	assert.Equal(t, "ABC-1", NormalizeExternalID("ABC-1"))
	// Case is preserved; only whitespace drift is normalized on ids.
	assert.Equal(t, "Abc", NormalizeExternalID("Abc\t"))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, float64(0), SafeDivide(10, 0))
	assert.Equal(t, float64(0), SafeDivide(0, 0))
	assert.Equal(t, 2.5, SafeDivide(5, 2))
	assert.False(t, math.IsNaN(SafeDivide(0, 0)))
	assert.False(t, math.IsInf(SafeDivide(100, 0), 1))
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-01-01")
	assert.Nil(t, err)
	assert.Equal(t, 2024, parsed.Year())

	_, err = ParseDate("01/01/2024")
	assert.NotNil(t, err)
}

func TestDateRangeBounds(t *testing.T) {
	start, end, err := DateRangeBounds("2024-01-01", "2024-01-31")
	assert.Nil(t, err)
	assert.True(t, start.Before(end))

	// Open-ended ranges are allowed on either side.
	start, end, err = DateRangeBounds("", "2024-01-31")
	assert.Nil(t, err)
	assert.True(t, start.IsZero())
	assert.False(t, end.IsZero())

	_, _, err = DateRangeBounds("2024-02-01", "2024-01-01")
	assert.NotNil(t, err)
}
