package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/tx"
)

// Postgres persists DIDs and profile metadata.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) conn(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return p.db
}

func (p *Postgres) CreateDID(ctx context.Context, did *models.DID) error {
	res, err := p.conn(ctx).ExecContext(ctx, `
		INSERT INTO dids (owner, identifier, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner) DO NOTHING`,
		did.Owner.String(), did.Identifier, did.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting did: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking insert result: %w", err)
	}
	if n == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (p *Postgres) FindDID(ctx context.Context, owner id.Address) (*models.DID, error) {
	var did models.DID
	var rawOwner string
	err := p.conn(ctx).QueryRowContext(ctx, `
		SELECT owner, identifier, created_at
		FROM dids
		WHERE owner = $1`,
		owner.String(),
	).Scan(&rawOwner, &did.Identifier, &did.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying did: %w", err)
	}
	did.Owner = id.Address(rawOwner)
	return &did, nil
}

func (p *Postgres) UpsertMetadata(ctx context.Context, owner id.Address, md *models.Metadata) error {
	_, err := p.conn(ctx).ExecContext(ctx, `
		INSERT INTO metadata (owner, name, email, profile_picture)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    profile_picture = EXCLUDED.profile_picture`,
		owner.String(), md.Name, md.Email, md.ProfilePicture,
	)
	if err != nil {
		return fmt.Errorf("upserting metadata: %w", err)
	}
	return nil
}

func (p *Postgres) FindMetadata(ctx context.Context, owner id.Address) (*models.Metadata, error) {
	var md models.Metadata
	err := p.conn(ctx).QueryRowContext(ctx, `
		SELECT name, email, profile_picture
		FROM metadata
		WHERE owner = $1`,
		owner.String(),
	).Scan(&md.Name, &md.Email, &md.ProfilePicture)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	return &md, nil
}
