package order

import (
	"regexp"
	"time"
)

var (
	isoDateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}([+-]\d{2}:\d{2}|Z)$`)
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	scacPattern        = regexp.MustCompile(`^[A-Z0-9]{2,4}$`)
	creditorPattern    = regexp.MustCompile(`^\d{10}$`)
)

// IsISODateTime reports whether s is a second precision ISO 8601 timestamp with
// an explicit offset, e.g. 2025-09-25T00:00:00+02:00.
func IsISODateTime(s string) bool {
	_, ok := ParseDateTime(s)
	return ok
}

// ParseDateTime parses an ISO 8601 timestamp accepted by IsISODateTime.
func ParseDateTime(s string) (time.Time, bool) {
	if !isoDateTimePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsCountryCode reports whether s is a two letter upper case country code.
func IsCountryCode(s string) bool {
	return countryCodePattern.MatchString(s)
}

// IsSCAC reports whether s is a Standard Carrier Alpha Code: 2 to 4 upper case
// letters or digits.
func IsSCAC(s string) bool {
	return scacPattern.MatchString(s)
}

// IsCarrierCreditorNumber reports whether s is a ten digit creditor number.
func IsCarrierCreditorNumber(s string) bool {
	return creditorPattern.MatchString(s)
}
