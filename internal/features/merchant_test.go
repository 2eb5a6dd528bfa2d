package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerchantTag(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"all caps merchant", "UBER TRIP 999", "UBER"},
		{"merchant with tail", "STARBUCKS COFFEE SHOP", "STARBUCKS"},
		{"banking keyword at start", "ACH DEPOSIT PAYROLL", "ACH"},
		{"zelle payment", "ZELLE PAYMENT JOHN DOE", "ZELLE"},
		{"too short", "ab", ""},
		{"merchant with digits", "7-ELEVEN 23110", ""},
		{"ampersand name", "AT&T PAYMENT", "AT&T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MerchantTag(tt.description))
		})
	}
}

func TestMerchantTagCaseInsensitive(t *testing.T) {
	// Raw and normalized descriptions must yield the same tag.
	raw := MerchantTag("Starbucks Coffee #1234")
	lowered := MerchantTag("starbucks coffee #1234")
	assert.Equal(t, "STARBUCKS", raw)
	assert.Equal(t, raw, lowered)
}
