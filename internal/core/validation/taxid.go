package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// taxIDPrimes is the digit weight table for the modulo-11 check digit.
// The weights are applied right to left: the rightmost digit of the id is
// multiplied by 3, the next by 7, and so on. Do not re-derive these values;
// a subtly wrong table still yields plausible-looking but incorrect digits.
var taxIDPrimes = [...]int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

const (
	taxIDMinLength = 9
	taxIDMaxLength = 10
)

var taxIDFormatChars = regexp.MustCompile(`[.\s]`)

// CleanTaxID strips common formatting (dots, spaces) and a dash-suffixed
// check digit, returning the bare identifier.
func CleanTaxID(formatted string) string {
	// "900.123.456-8": the part after the last dash is the check digit.
	if i := strings.LastIndexByte(formatted, '-'); i >= 0 {
		formatted = formatted[:i]
	}
	clean := taxIDFormatChars.ReplaceAllString(formatted, "")
	if len(clean) > taxIDMaxLength {
		clean = clean[:taxIDMaxLength]
	}
	return clean
}

// ComputeCheckDigit calculates the modulo-11 check digit for a bare tax id.
func ComputeCheckDigit(taxID string) (string, error) {
	if taxID == "" {
		return "", fmt.Errorf("tax id must not be empty")
	}
	if len(taxID) < taxIDMinLength || len(taxID) > taxIDMaxLength {
		return "", fmt.Errorf("tax id must have between %d and %d digits, got %d", taxIDMinLength, taxIDMaxLength, len(taxID))
	}

	sum := 0
	for i := 0; i < len(taxID); i++ {
		c := taxID[i]
		if c < '0' || c > '9' {
			return "", fmt.Errorf("tax id must contain only digits")
		}
		sum += int(c-'0') * taxIDPrimes[len(taxID)-1-i]
	}

	remainder := sum % 11
	if remainder <= 1 {
		return "0", nil
	}
	return fmt.Sprint(11 - remainder), nil
}

// ValidTaxID reports whether the given check digit matches the computed one.
func ValidTaxID(taxID, checkDigit string) bool {
	computed, err := ComputeCheckDigit(taxID)
	if err != nil {
		return false
	}
	return computed == checkDigit
}

// FormatTaxID renders the id with its check digit, e.g. "900123456-5".
func FormatTaxID(taxID string) (string, error) {
	dv, err := ComputeCheckDigit(taxID)
	if err != nil {
		return "", err
	}
	return taxID + "-" + dv, nil
}

// MaskTaxID obscures an id for log output.
func MaskTaxID(taxID string) string {
	if len(taxID) < 4 {
		return "***"
	}
	return taxID[:3] + "***" + taxID[len(taxID)-2:]
}
