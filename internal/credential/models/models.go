package models

import (
	"strings"
	"time"

	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/commitment"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
)

// Credential is an issuer attestation appended to a subject's ledger. Records
// are immutable once appended; the ledger only grows.
//
// The commitments bind issuer, subject, claimed value, and issuance time. They
// are published for non-repudiation and are not re-derived during
// verification.
type Credential struct {
	Issuer           id.Address `json:"issuer"`
	Subject          id.Address `json:"subject"`
	Role             string     `json:"role"`
	Salary           int64      `json:"salary"`
	IssuedAt         time.Time  `json:"issued_at"`
	RoleCommitment   string     `json:"role_commitment"`
	SalaryCommitment string     `json:"salary_commitment"`
}

// NewCredential constructs a Credential and derives its commitments.
func NewCredential(issuer, subject id.Address, role string, salary int64, issuedAt time.Time) (*Credential, error) {
	if strings.TrimSpace(role) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "role cannot be empty")
	}
	if issuer.IsZero() || subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issuer and subject are required")
	}
	return &Credential{
		Issuer:           issuer,
		Subject:          subject,
		Role:             role,
		Salary:           salary,
		IssuedAt:         issuedAt,
		RoleCommitment:   commitment.Role(issuer, subject, role, issuedAt),
		SalaryCommitment: commitment.Salary(issuer, subject, salary, issuedAt),
	}, nil
}

// VerificationStep is the outcome of evaluating one ledger entry during a
// verification scan. Each step is observable: the scan emits one record per
// entry it touches.
type VerificationStep struct {
	Index   int
	Matched bool
}

// VerificationResult carries the final outcome of a scan together with every
// evaluated step.
type VerificationResult struct {
	Verified bool               `json:"verified"`
	Steps    []VerificationStep `json:"-"`
}
