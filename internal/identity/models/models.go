package models

import (
	"strings"
	"time"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
)

// DID binds an address to a self-asserted identifier string.
//
// Invariants:
//   - Identifier is non-empty
//   - One DID per address, created once, never updated or deleted
type DID struct {
	Identifier string     `json:"identifier"`
	Owner      id.Address `json:"owner"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewDID constructs a DID, enforcing construction invariants.
func NewDID(identifier string, owner id.Address, now time.Time) (*DID, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identifier cannot be empty")
	}
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner address is required")
	}
	return &DID{Identifier: identifier, Owner: owner, CreatedAt: now}, nil
}

// Metadata is the per-address profile. It requires an existing DID and is
// overwritable, unlike the DID itself.
type Metadata struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
}

// NewMetadata constructs profile metadata, enforcing non-empty fields.
func NewMetadata(name, email, profilePicture string) (*Metadata, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if strings.TrimSpace(profilePicture) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile picture cannot be empty")
	}
	return &Metadata{Name: name, Email: email, ProfilePicture: profilePicture}, nil
}
