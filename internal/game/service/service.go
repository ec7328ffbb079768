package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/qxxq-lcvn/treasure-hunt/internal/game/board"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/metrics"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/models"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/rng"
	"github.com/qxxq-lcvn/treasure-hunt/internal/token"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/tx"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

// Vault is the address placed treasures are minted to. Claims transfer
// ownership from the vault to the claimant.
const Vault = id.Address("0xvault")

type Store interface {
	PutTreasures(ctx context.Context, treasures []models.Treasure) error
	Placed(ctx context.Context) (bool, error)
	FindTreasure(ctx context.Context, treasureID id.TreasureID) (*models.Treasure, error)
	UpdateTreasure(ctx context.Context, treasure *models.Treasure) error
	ListTreasures(ctx context.Context) ([]models.Treasure, error)
	CreatePlayer(ctx context.Context, player *models.Player) error
	FindPlayer(ctx context.Context, address id.Address) (*models.Player, error)
	UpdatePlayer(ctx context.Context, player *models.Player) error
}

// IdentityGate answers whether an address has registered a DID.
type IdentityGate interface {
	HasDID(ctx context.Context, owner id.Address) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the board and the player state machine. Every mutating
// operation executes under the write side of a single serialization point and
// validates all preconditions before its first mutation, so concurrent
// callers observe all-or-nothing transitions: two players racing to claim the
// same treasure cannot both succeed.
type Service struct {
	store      Store
	identity   IdentityGate
	ledger     token.Ledger
	params     board.Params
	collection token.Collection
	tokenURI   string

	serializer *tx.Serializer
	source     rng.Source

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRNG swaps the placement entropy source. Tests pass a fixed seed;
// production keeps the default weak source, whose predictability is a known
// property of the placement scheme.
func WithRNG(source rng.Source) Option {
	return func(s *Service) {
		s.source = source
	}
}

// WithCollection names the token collection treasures are minted into.
func WithCollection(c token.Collection) Option {
	return func(s *Service) {
		s.collection = c
	}
}

// WithTokenURI sets the metadata URI applied to every minted treasure.
func WithTokenURI(uri string) Option {
	return func(s *Service) {
		s.tokenURI = uri
	}
}

// New constructs a Service.
func New(store Store, identity IdentityGate, ledger token.Ledger, params board.Params, opts ...Option) *Service {
	s := &Service{
		store:      store,
		identity:   identity,
		ledger:     ledger,
		params:     params,
		serializer: tx.NewSerializer(),
		source:     rng.NewWeak(),
		tracer:     otel.Tracer("game"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceTreasures initializes the board: shuffles grid cells, takes the first
// maxTreasures positions, mints each treasure token to the vault, and stamps
// the token URI. One-time; there is no re-seeding or re-placement.
func (s *Service) PlaceTreasures(ctx context.Context) ([]models.Treasure, error) {
	ctx, span := s.tracer.Start(ctx, "game.PlaceTreasures")
	defer span.End()

	var placed []models.Treasure
	err := s.serializer.Write(ctx, func(ctx context.Context) error {
		if err := s.params.Validate(); err != nil {
			return err
		}
		done, err := s.store.Placed(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check board state")
		}
		if done {
			return dErrors.New(dErrors.CodeConflict, "board already initialized")
		}

		treasures, err := board.Place(s.params, s.source)
		if err != nil {
			return err
		}

		for _, t := range treasures {
			if err := s.ledger.Mint(ctx, Vault, t.ID); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint treasure token")
			}
			if err := s.ledger.SetURI(ctx, t.ID, s.tokenURI); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set token URI")
			}
		}
		if err := s.store.PutTreasures(ctx, treasures); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "board already initialized")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store treasures")
		}

		for _, t := range treasures {
			s.emit(ctx, audit.Event{
				Actor:    requestcontext.Caller(ctx),
				Subject:  strconv.FormatInt(int64(t.ID), 10),
				Action:   string(audit.EventTreasurePlaced),
				Amount:   t.Value,
				Position: t.Position,
			})
		}
		placed = treasures
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("treasures", len(placed)))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "board initialized",
			"collection", s.collection.Name,
			"symbol", s.collection.Symbol,
			"treasures", len(placed),
			"grid_size", s.params.GridSize,
		)
	}
	s.metrics.AddTreasuresPlaced(len(placed))
	return placed, nil
}

// RegisterPlayer creates the caller's player state: score 0, ten moves, the
// origin cell. Requires a DID; one registration per address.
func (s *Service) RegisterPlayer(ctx context.Context) (*models.Player, error) {
	caller := requestcontext.Caller(ctx)

	var player *models.Player
	err := s.serializer.Write(ctx, func(ctx context.Context) error {
		ok, err := s.identity.HasDID(ctx, caller)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "caller has no DID")
		}

		player = models.NewPlayer(caller)
		if err := s.store.CreatePlayer(ctx, player); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "player already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create player")
		}

		s.emit(ctx, audit.Event{
			Actor:   caller,
			Subject: caller.String(),
			Action:  string(audit.EventPlayerRegistered),
			Amount:  int64(player.MovesRemaining),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementPlayersRegistered()
	return player, nil
}

// GetPlayer returns any address's player record. The caller must be a
// registered player; the query is not restricted to self.
func (s *Service) GetPlayer(ctx context.Context, address id.Address) (*models.Player, error) {
	caller := requestcontext.Caller(ctx)

	var player *models.Player
	err := s.serializer.Read(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindPlayer(ctx, caller); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeUnauthorized, "caller is not a registered player")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check caller registration")
		}

		p, err := s.store.FindPlayer(ctx, address)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "player not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load player")
		}
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// MovePlayer repositions the caller and spends one move.
func (s *Service) MovePlayer(ctx context.Context, position int) (*models.Player, error) {
	caller := requestcontext.Caller(ctx)
	if position < 0 || position >= s.params.GridSize {
		return nil, dErrors.New(dErrors.CodeValidation, "position outside the grid")
	}

	var player *models.Player
	err := s.serializer.Write(ctx, func(ctx context.Context) error {
		p, err := s.store.FindPlayer(ctx, caller)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeUnauthorized, "caller is not a registered player")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load player")
		}
		if err := p.CanSpendMove(); err != nil {
			s.metrics.IncrementMoves("exhausted")
			return dErrors.New(dErrors.CodeResourceExhausted, "move budget exhausted")
		}

		p.ApplyMove(position)
		if err := s.store.UpdatePlayer(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update player")
		}

		s.emit(ctx, audit.Event{
			Actor:    caller,
			Subject:  caller.String(),
			Action:   string(audit.EventPlayerMoved),
			Amount:   int64(p.MovesRemaining),
			Position: p.Position,
		})
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementMoves("ok")
	return player, nil
}

// ClaimTreasure resolves a claim: the caller must stand on the treasure's
// cell with moves left, and the treasure must be unclaimed. The token moves
// from the vault to the caller, the treasure's value is credited, and one
// move is spent, exactly like a plain move. All preconditions are checked
// before the first mutation.
func (s *Service) ClaimTreasure(ctx context.Context, treasureID id.TreasureID) (*models.Player, error) {
	start := time.Now()
	caller := requestcontext.Caller(ctx)

	ctx, span := s.tracer.Start(ctx, "game.ClaimTreasure",
		trace.WithAttributes(attribute.Int64("treasure_id", int64(treasureID))))
	defer span.End()

	var player *models.Player
	err := s.serializer.Write(ctx, func(ctx context.Context) error {
		p, err := s.store.FindPlayer(ctx, caller)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeUnauthorized, "caller is not a registered player")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load player")
		}
		if err := p.CanSpendMove(); err != nil {
			return dErrors.New(dErrors.CodeResourceExhausted, "move budget exhausted")
		}

		treasure, err := s.store.FindTreasure(ctx, treasureID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "treasure not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load treasure")
		}
		if err := treasure.CanClaim(); err != nil {
			return dErrors.New(dErrors.CodeConflict, "treasure already claimed")
		}
		if p.Position != treasure.Position {
			return dErrors.New(dErrors.CodeConflict, "player is not at the treasure position")
		}

		// Preconditions hold; the ledger transfer goes first so a ledger
		// failure aborts before any registry state changes.
		if err := s.ledger.Transfer(ctx, Vault, caller, treasureID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer treasure token")
		}

		treasure.ApplyClaim()
		if err := s.store.UpdateTreasure(ctx, treasure); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update treasure")
		}
		p.ApplyClaim(treasure.Value)
		if err := s.store.UpdatePlayer(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update player")
		}

		s.emit(ctx, audit.Event{
			Actor:    caller,
			Subject:  strconv.FormatInt(int64(treasureID), 10),
			Action:   string(audit.EventTreasureClaimed),
			Amount:   treasure.Value,
			Position: treasure.Position,
		})
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementTreasuresClaimed()
	s.metrics.ObserveClaim(start)
	return player, nil
}

// TreasurePosition returns a treasure's cell, claimed or not, for any caller.
func (s *Service) TreasurePosition(ctx context.Context, treasureID id.TreasureID) (int, error) {
	var position int
	err := s.serializer.Read(ctx, func(ctx context.Context) error {
		treasure, err := s.store.FindTreasure(ctx, treasureID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "treasure not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load treasure")
		}
		position = treasure.Position
		return nil
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, event.Action,
			"actor", event.Actor.String(),
			"subject", event.Subject,
			"log_type", "audit")
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, event)
}
