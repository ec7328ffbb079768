package domain

import (
	"strings"

	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
)

// Address identifies an external caller or the registry vault. Addresses are
// opaque strings (hex account IDs in production); the registry never derives
// meaning from their contents beyond equality.
//
// Usage: construct via ParseAddress at trust boundaries; direct casting
// bypasses validation.
type Address string

// ParseAddress constructs an Address from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or whitespace.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	return Address(s), nil
}

// String returns the string representation of the address.
func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ""
}
