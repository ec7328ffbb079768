package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/metrics"
	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

// salaryThreshold is the fixed amount verifySalary compares ledger entries
// against. The committed salary hash is not consulted.
const salaryThreshold = 300

type Store interface {
	AssignRole(ctx context.Context, user id.Address, role string) error
	FindRole(ctx context.Context, user id.Address) (string, error)
	HolderOf(ctx context.Context, role string) (id.Address, error)
	AppendHistory(ctx context.Context, user id.Address, role string) error
	ListHistory(ctx context.Context, user id.Address) ([]string, error)
	AppendCredential(ctx context.Context, cred *models.Credential) error
	ListCredentials(ctx context.Context, subject id.Address) ([]models.Credential, error)
}

// IdentityGate answers whether an address has registered a DID. Verification
// queries require it of caller, subject, and issuer.
type IdentityGate interface {
	HasDID(ctx context.Context, owner id.Address) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns role assignment and the append-only credential ledger. Writes
// are gated on the super admin; verification queries are open to any caller
// holding a DID.
type Service struct {
	store          Store
	identity       IdentityGate
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

// New constructs a Service.
func New(store Store, identity IdentityGate, opts ...Option) *Service {
	s := &Service{
		store:    store,
		identity: identity,
		tracer:   otel.Tracer("credential"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeedSuperAdmin records the operator address with the reserved role label.
// The designation is written once: re-seeding the same holder is a no-op so
// restarts are safe, and seeding a different address fails.
func (s *Service) SeedSuperAdmin(ctx context.Context, operator id.Address) error {
	if operator.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "super admin address is required")
	}
	holder, err := s.store.HolderOf(ctx, id.RoleSuperAdmin)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check super admin")
	}
	if err == nil {
		if holder == operator {
			return nil
		}
		return dErrors.New(dErrors.CodeConflict, "super admin already designated")
	}
	if err := s.store.AssignRole(ctx, operator, id.RoleSuperAdmin); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed super admin")
	}
	return nil
}

func (s *Service) requireSuperAdmin(ctx context.Context, caller id.Address) error {
	role, err := s.store.FindRole(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not the super admin")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check caller role")
	}
	if role != id.RoleSuperAdmin {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the super admin")
	}
	return nil
}

func requireNonEmptyRole(role string) error {
	if strings.TrimSpace(role) == "" {
		return dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	return nil
}

// AssignCredential overwrites the user's active role and appends the label to
// their history. The salary is published in the assignment event but not
// stored; only issuance persists salary.
func (s *Service) AssignCredential(ctx context.Context, user id.Address, role string, salary int64) error {
	caller := requestcontext.Caller(ctx)
	if err := s.requireSuperAdmin(ctx, caller); err != nil {
		return err
	}
	if err := requireNonEmptyRole(role); err != nil {
		return err
	}
	if user.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "user address is required")
	}
	if role == id.RoleSuperAdmin {
		return dErrors.New(dErrors.CodeValidation, "role is reserved")
	}
	if user == caller {
		return dErrors.New(dErrors.CodeConflict, "cannot reassign the super admin")
	}

	if err := s.store.AssignRole(ctx, user, role); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign role")
	}
	if err := s.store.AppendHistory(ctx, user, role); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history")
	}

	s.emit(ctx, audit.Event{
		Actor:   caller,
		Subject: user.String(),
		Action:  string(audit.EventCredentialAssigned),
		Reason:  role,
		Amount:  salary,
	})
	s.metrics.IncrementAssigned()
	return nil
}

// IssueCredential appends a committed credential to the user's ledger and the
// role label to their history.
func (s *Service) IssueCredential(ctx context.Context, user id.Address, role string, salary int64) (*models.Credential, error) {
	caller := requestcontext.Caller(ctx)
	if err := s.requireSuperAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if err := requireNonEmptyRole(role); err != nil {
		return nil, err
	}

	cred, err := models.NewCredential(caller, user, role, salary, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.AppendCredential(ctx, cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append credential")
	}
	if err := s.store.AppendHistory(ctx, user, role); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history")
	}

	s.emit(ctx, audit.Event{
		Actor:      caller,
		Subject:    user.String(),
		Action:     string(audit.EventCredentialIssued),
		Reason:     role,
		Commitment: cred.RoleCommitment,
		Amount:     salary,
	})
	s.metrics.IncrementIssued()
	return cred, nil
}

// History returns the caller's full role history in append order.
func (s *Service) History(ctx context.Context) ([]string, error) {
	caller := requestcontext.Caller(ctx)
	history, err := s.store.ListHistory(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	return history, nil
}

// ActiveRole returns the user's currently assigned role.
func (s *Service) ActiveRole(ctx context.Context, user id.Address) (string, error) {
	role, err := s.store.FindRole(ctx, user)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "no role assigned")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	return role, nil
}

// VerifyRole scans the subject's ledger in issuance order. An entry matches
// when its issuer equals the named issuer and the subject's currently
// assigned role equals the queried role. The live assignment is what the
// query answers for; the role frozen inside each credential is not compared.
// Every evaluated entry emits a role_verified event; the first match wins.
func (s *Service) VerifyRole(ctx context.Context, subject id.Address, role string, issuer id.Address) (*models.VerificationResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "credential.VerifyRole",
		trace.WithAttributes(
			attribute.String("subject", subject.String()),
			attribute.String("issuer", issuer.String()),
		))
	defer span.End()

	if err := requireNonEmptyRole(role); err != nil {
		return nil, err
	}
	creds, err := s.verificationPreconditions(ctx, subject, issuer)
	if err != nil {
		return nil, err
	}

	liveRole, err := s.store.FindRole(ctx, subject)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject role")
	}

	caller := requestcontext.Caller(ctx)
	result := &models.VerificationResult{}
	for i, cred := range creds {
		matched := cred.Issuer == issuer && liveRole == role
		result.Steps = append(result.Steps, models.VerificationStep{Index: i, Matched: matched})
		s.emitVerification(ctx, audit.EventRoleVerified, caller, subject, matched)
		if matched {
			result.Verified = true
			break
		}
	}

	span.SetAttributes(
		attribute.Bool("verified", result.Verified),
		attribute.Int("scan_depth", len(result.Steps)),
	)
	s.metrics.ObserveVerification("role", result.Verified, len(result.Steps), start)
	return result, nil
}

// VerifySalary scans the subject's ledger in issuance order. An entry matches
// when its issuer equals the named issuer and its stored salary exceeds the
// fixed threshold; the queried amount only has to be positive. Emission
// behavior matches VerifyRole.
func (s *Service) VerifySalary(ctx context.Context, subject id.Address, salary int64, issuer id.Address) (*models.VerificationResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "credential.VerifySalary",
		trace.WithAttributes(
			attribute.String("subject", subject.String()),
			attribute.String("issuer", issuer.String()),
		))
	defer span.End()

	if salary <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "salary must be positive")
	}
	creds, err := s.verificationPreconditions(ctx, subject, issuer)
	if err != nil {
		return nil, err
	}

	caller := requestcontext.Caller(ctx)
	result := &models.VerificationResult{}
	for i, cred := range creds {
		matched := cred.Issuer == issuer && cred.Salary > salaryThreshold
		result.Steps = append(result.Steps, models.VerificationStep{Index: i, Matched: matched})
		s.emitVerification(ctx, audit.EventSalaryVerified, caller, subject, matched)
		if matched {
			result.Verified = true
			break
		}
	}

	span.SetAttributes(
		attribute.Bool("verified", result.Verified),
		attribute.Int("scan_depth", len(result.Steps)),
	)
	s.metrics.ObserveVerification("salary", result.Verified, len(result.Steps), start)
	return result, nil
}

// verificationPreconditions enforces the shared guards of both verification
// queries: caller, subject, and issuer each hold a DID, and the subject has
// at least one issued credential.
func (s *Service) verificationPreconditions(ctx context.Context, subject, issuer id.Address) ([]models.Credential, error) {
	caller := requestcontext.Caller(ctx)

	for _, check := range []struct {
		addr id.Address
		who  string
	}{
		{subject, "subject"},
		{issuer, "issuer"},
		{caller, "caller"},
	} {
		ok, err := s.identity.HasDID(ctx, check.addr)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, check.who+" has no DID")
		}
	}

	creds, err := s.store.ListCredentials(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credentials")
	}
	if len(creds) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "subject has no credentials")
	}
	return creds, nil
}

func (s *Service) emitVerification(ctx context.Context, action audit.AuditEvent, caller, subject id.Address, matched bool) {
	decision := "false"
	if matched {
		decision = "true"
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Actor:    caller,
		Subject:  subject.String(),
		Action:   string(action),
		Decision: decision,
	})
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
