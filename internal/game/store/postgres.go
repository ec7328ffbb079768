package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qxxq-lcvn/treasure-hunt/internal/game/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/tx"
)

// Postgres persists players and the treasure board.
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

func (p *Postgres) PutTreasures(ctx context.Context, treasures []models.Treasure) error {
	placed, err := p.Placed(ctx)
	if err != nil {
		return err
	}
	if placed {
		return sentinel.ErrConflict
	}
	for _, t := range treasures {
		_, err := p.conn(ctx).ExecContext(ctx, `
			INSERT INTO treasures (id, value, claimed, position)
			VALUES ($1, $2, $3, $4)`,
			int64(t.ID), t.Value, t.Claimed, t.Position,
		)
		if err != nil {
			return fmt.Errorf("inserting treasure %d: %w", t.ID, err)
		}
	}
	return nil
}

func (p *Postgres) Placed(ctx context.Context) (bool, error) {
	var count int
	err := p.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM treasures`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting treasures: %w", err)
	}
	return count > 0, nil
}

func (p *Postgres) FindTreasure(ctx context.Context, treasureID id.TreasureID) (*models.Treasure, error) {
	var t models.Treasure
	var rawID int64
	err := p.conn(ctx).QueryRowContext(ctx, `
		SELECT id, value, claimed, position
		FROM treasures
		WHERE id = $1`,
		int64(treasureID),
	).Scan(&rawID, &t.Value, &t.Claimed, &t.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying treasure: %w", err)
	}
	t.ID = id.TreasureID(rawID)
	return &t, nil
}

func (p *Postgres) UpdateTreasure(ctx context.Context, treasure *models.Treasure) error {
	res, err := p.conn(ctx).ExecContext(ctx, `
		UPDATE treasures SET claimed = $2 WHERE id = $1`,
		int64(treasure.ID), treasure.Claimed,
	)
	if err != nil {
		return fmt.Errorf("updating treasure: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) ListTreasures(ctx context.Context) ([]models.Treasure, error) {
	rows, err := p.conn(ctx).QueryContext(ctx, `
		SELECT id, value, claimed, position FROM treasures ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying treasures: %w", err)
	}
	defer rows.Close()

	treasures := []models.Treasure{}
	for rows.Next() {
		var t models.Treasure
		var rawID int64
		if err := rows.Scan(&rawID, &t.Value, &t.Claimed, &t.Position); err != nil {
			return nil, fmt.Errorf("scanning treasure row: %w", err)
		}
		t.ID = id.TreasureID(rawID)
		treasures = append(treasures, t)
	}
	return treasures, rows.Err()
}

func (p *Postgres) CreatePlayer(ctx context.Context, player *models.Player) error {
	res, err := p.conn(ctx).ExecContext(ctx, `
		INSERT INTO players (address, score, moves_remaining, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO NOTHING`,
		player.Address.String(), player.Score, player.MovesRemaining, player.Position,
	)
	if err != nil {
		return fmt.Errorf("inserting player: %w", err)
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

func (p *Postgres) FindPlayer(ctx context.Context, address id.Address) (*models.Player, error) {
	var player models.Player
	var rawAddress string
	err := p.conn(ctx).QueryRowContext(ctx, `
		SELECT address, score, moves_remaining, position
		FROM players
		WHERE address = $1`,
		address.String(),
	).Scan(&rawAddress, &player.Score, &player.MovesRemaining, &player.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	player.Address = id.Address(rawAddress)
	return &player, nil
}

func (p *Postgres) UpdatePlayer(ctx context.Context, player *models.Player) error {
	res, err := p.conn(ctx).ExecContext(ctx, `
		UPDATE players
		SET score = $2, moves_remaining = $3, position = $4
		WHERE address = $1`,
		player.Address.String(), player.Score, player.MovesRemaining, player.Position,
	)
	if err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
