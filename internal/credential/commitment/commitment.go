// Package commitment derives the hash commitments published alongside issued
// credentials. A commitment is a one-way binding of issuer, subject, claimed
// value, and issuance time; verifiers use it as a non-repudiation anchor
// rather than recomputing it during verification.
package commitment

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
)

func hash(issuer, subject id.Address, payload []byte, issuedAt time.Time) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(issuer.String()))
	h.Write([]byte(subject.String()))
	h.Write(payload)

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(issuedAt.Unix()))
	h.Write(ts[:])

	return hex.EncodeToString(h.Sum(nil))
}

// Role commits to a role label issued to subject at issuedAt.
func Role(issuer, subject id.Address, role string, issuedAt time.Time) string {
	return hash(issuer, subject, []byte(role), issuedAt)
}

// Salary commits to a salary figure issued to subject at issuedAt.
func Salary(issuer, subject id.Address, salary int64, issuedAt time.Time) string {
	var amount [8]byte
	binary.BigEndian.PutUint64(amount[:], uint64(salary))
	return hash(issuer, subject, amount[:], issuedAt)
}
