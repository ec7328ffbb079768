package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/metrics"
	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

type Store interface {
	CreateDID(ctx context.Context, did *models.DID) error
	FindDID(ctx context.Context, owner id.Address) (*models.DID, error)
	UpsertMetadata(ctx context.Context, owner id.Address, md *models.Metadata) error
	FindMetadata(ctx context.Context, owner id.Address) (*models.Metadata, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages DID registration and profile metadata. A DID is written
// once per address; metadata requires a DID and may be overwritten.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDID registers the caller's decentralized identifier. Each address
// gets exactly one; a second attempt conflicts.
func (s *Service) CreateDID(ctx context.Context, identifier string) (*models.DID, error) {
	start := time.Now()
	caller := requestcontext.Caller(ctx)

	did, err := models.NewDID(identifier, caller, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.CreateDID(ctx, did); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "address already has a DID")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create DID")
	}

	s.emit(ctx, audit.Event{
		Actor:   caller,
		Subject: caller.String(),
		Action:  string(audit.EventDIDCreated),
		Reason:  did.Identifier,
	})
	s.metrics.IncrementDIDCreated()
	s.metrics.ObserveCreateDID(start)
	return did, nil
}

// GetDID returns the DID registered by the given address.
func (s *Service) GetDID(ctx context.Context, owner id.Address) (*models.DID, error) {
	did, err := s.store.FindDID(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no DID registered for address")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load DID")
	}
	return did, nil
}

// HasDID reports whether the address holds a DID. Other modules use this as
// their identity gate.
func (s *Service) HasDID(ctx context.Context, owner id.Address) (bool, error) {
	_, err := s.store.FindDID(ctx, owner)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check DID")
	}
	return true, nil
}

// SetMetadata writes the caller's profile. Requires a registered DID and all
// three fields non-empty; repeated calls overwrite.
func (s *Service) SetMetadata(ctx context.Context, name, email, profilePicture string) (*models.Metadata, error) {
	caller := requestcontext.Caller(ctx)

	if _, err := s.store.FindDID(ctx, caller); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "create a DID before setting metadata")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check DID")
	}

	md, err := models.NewMetadata(name, email, profilePicture)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.UpsertMetadata(ctx, caller, md); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store metadata")
	}

	s.emit(ctx, audit.Event{
		Actor:   caller,
		Subject: caller.String(),
		Action:  string(audit.EventMetadataSet),
	})
	s.metrics.IncrementMetadataWrites()
	return md, nil
}

// GetMetadata returns the profile stored for the given address.
func (s *Service) GetMetadata(ctx context.Context, owner id.Address) (*models.Metadata, error) {
	md, err := s.store.FindMetadata(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no metadata stored for address")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load metadata")
	}
	return md, nil
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
