package domain

import (
	"fmt"
	"strings"
	"time"
)

// Validation constants
const (
	MaxServiceTypeLength = 50
	MaxTitleLength       = 200
	MaxNameLength        = 100
	MaxContactLength     = 20
)

// Accepted storage forms for expiry dates. Legacy rows carry the slash form.
var expiryDateFormats = []string{"2006-01-02", "01/02/2006"}

// ValidateRequestInput validates the fields of a new service request.
func ValidateRequestInput(serviceType, title, description string) error {
	serviceType = strings.TrimSpace(serviceType)
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if serviceType == "" {
		return fmt.Errorf("%w: service type is required", ErrValidation)
	}
	if len(serviceType) > MaxServiceTypeLength {
		return fmt.Errorf("%w: service type exceeds %d characters", ErrValidation, MaxServiceTypeLength)
	}
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, MaxTitleLength)
	}
	if description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}

	return nil
}

// ValidateAccountInput validates the fields of a new account.
func ValidateAccountInput(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLength)
	}

	return nil
}

// ParseExpiryDate parses a stored expiry date. A malformed date means "no
// expiry due", never an error.
func ParseExpiryDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range expiryDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
