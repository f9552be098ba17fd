package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// PhonePattern defines the accepted phone format: an optional leading +,
// then 7-15 digits, with spaces and dashes allowed as separators.
var PhonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)

// DatePattern defines the accepted date-of-birth format (YYYY-MM-DD).
var DatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Required checks that a mandatory string field is non-blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}

	return nil
}

// ValidatePhone checks that phone matches the accepted format.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone cannot be empty")
	}

	if !PhonePattern.MatchString(phone) {
		return fmt.Errorf("phone must contain 7-15 digits with an optional leading +")
	}

	return nil
}

// ValidateDate checks that date is in YYYY-MM-DD format.
// Empty dates are allowed; use Required separately where they are not.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}

	if !DatePattern.MatchString(date) {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}

	return nil
}

// ValidateAmount checks that a monetary amount (integer cents) is positive.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	return nil
}
