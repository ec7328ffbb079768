package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/tx"
)

// Postgres persists role assignments, role history, and the credential
// ledger. History and ledger tables carry no UPDATE or DELETE paths.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) conn(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return p.db
}

func (p *Postgres) AssignRole(ctx context.Context, user id.Address, role string) error {
	_, err := p.conn(ctx).ExecContext(ctx, `
		INSERT INTO role_assignments (address, role)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET role = EXCLUDED.role`,
		user.String(), role,
	)
	if err != nil {
		return fmt.Errorf("assigning role: %w", err)
	}
	return nil
}

func (p *Postgres) FindRole(ctx context.Context, user id.Address) (string, error) {
	var role string
	err := p.conn(ctx).QueryRowContext(ctx, `
		SELECT role FROM role_assignments WHERE address = $1`,
		user.String(),
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying role: %w", err)
	}
	return role, nil
}

func (p *Postgres) HolderOf(ctx context.Context, role string) (id.Address, error) {
	var address string
	err := p.conn(ctx).QueryRowContext(ctx, `
		SELECT address FROM role_assignments WHERE role = $1 LIMIT 1`,
		role,
	).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying role holder: %w", err)
	}
	return id.Address(address), nil
}

func (p *Postgres) AppendHistory(ctx context.Context, user id.Address, role string) error {
	_, err := p.conn(ctx).ExecContext(ctx, `
		INSERT INTO credential_history (address, role)
		VALUES ($1, $2)`,
		user.String(), role,
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

func (p *Postgres) ListHistory(ctx context.Context, user id.Address) ([]string, error) {
	rows, err := p.conn(ctx).QueryContext(ctx, `
		SELECT role FROM credential_history
		WHERE address = $1
		ORDER BY id`,
		user.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	history := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		history = append(history, role)
	}
	return history, rows.Err()
}

func (p *Postgres) AppendCredential(ctx context.Context, cred *models.Credential) error {
	_, err := p.conn(ctx).ExecContext(ctx, `
		INSERT INTO credentials (issuer, subject, role, salary, issued_at, role_commitment, salary_commitment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cred.Issuer.String(), cred.Subject.String(), cred.Role, cred.Salary,
		cred.IssuedAt, cred.RoleCommitment, cred.SalaryCommitment,
	)
	if err != nil {
		return fmt.Errorf("appending credential: %w", err)
	}
	return nil
}

func (p *Postgres) ListCredentials(ctx context.Context, subject id.Address) ([]models.Credential, error) {
	rows, err := p.conn(ctx).QueryContext(ctx, `
		SELECT issuer, subject, role, salary, issued_at, role_commitment, salary_commitment
		FROM credentials
		WHERE subject = $1
		ORDER BY id`,
		subject.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}
	defer rows.Close()

	creds := []models.Credential{}
	for rows.Next() {
		var cred models.Credential
		var issuer, subj string
		if err := rows.Scan(&issuer, &subj, &cred.Role, &cred.Salary, &cred.IssuedAt, &cred.RoleCommitment, &cred.SalaryCommitment); err != nil {
			return nil, fmt.Errorf("scanning credential row: %w", err)
		}
		cred.Issuer = id.Address(issuer)
		cred.Subject = id.Address(subj)
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}
