package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qxxq-lcvn/treasure-hunt/internal/credential/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/httputil"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

// Service defines the interface for credential operations.
type Service interface {
	AssignCredential(ctx context.Context, user id.Address, role string, salary int64) error
	IssueCredential(ctx context.Context, user id.Address, role string, salary int64) (*models.Credential, error)
	History(ctx context.Context) ([]string, error)
	VerifyRole(ctx context.Context, subject id.Address, role string, issuer id.Address) (*models.VerificationResult, error)
	VerifySalary(ctx context.Context, subject id.Address, salary int64, issuer id.Address) (*models.VerificationResult, error)
}

// Handler wires credential endpoints to the credential service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a credential handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts credential endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials/assign", h.HandleAssign)
	r.Post("/credentials/issue", h.HandleIssue)
	r.Get("/credentials/history", h.HandleHistory)
	r.Post("/credentials/verify-role", h.HandleVerifyRole)
	r.Post("/credentials/verify-salary", h.HandleVerifySalary)
}

type credentialRequest struct {
	User   string `json:"user"`
	Role   string `json:"role"`
	Salary int64  `json:"salary"`
}

type verifyRoleRequest struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
	Issuer  string `json:"issuer"`
}

type verifySalaryRequest struct {
	Subject string `json:"subject"`
	Salary  int64  `json:"salary"`
	Issuer  string `json:"issuer"`
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (id.Address, bool) {
	caller := requestcontext.Caller(r.Context())
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return caller, true
}

// HandleAssign handles POST /credentials/assign requests.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[credentialRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := id.ParseAddress(req.User)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user address"))
		return
	}

	if err := h.service.AssignCredential(ctx, user, req.Role, req.Salary); err != nil {
		h.logger.ErrorContext(ctx, "credential assignment failed",
			"request_id", requestID,
			"caller", caller.String(),
			"user", user.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "credential assigned",
		"request_id", requestID,
		"caller", caller.String(),
		"user", user.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// HandleIssue handles POST /credentials/issue requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[credentialRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := id.ParseAddress(req.User)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user address"))
		return
	}

	cred, err := h.service.IssueCredential(ctx, user, req.Role, req.Salary)
	if err != nil {
		h.logger.ErrorContext(ctx, "credential issuance failed",
			"request_id", requestID,
			"caller", caller.String(),
			"user", user.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, cred)
}

// HandleHistory handles GET /credentials/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := h.requireCaller(w, r); !ok {
		return
	}

	history, err := h.service.History(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"history": history})
}

// HandleVerifyRole handles POST /credentials/verify-role requests.
func (h *Handler) HandleVerifyRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if _, ok := h.requireCaller(w, r); !ok {
		return
	}
	req, ok := httputil.Decode[verifyRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	subject, err := id.ParseAddress(req.Subject)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid subject address"))
		return
	}
	issuer, err := id.ParseAddress(req.Issuer)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid issuer address"))
		return
	}

	result, err := h.service.VerifyRole(ctx, subject, req.Role, issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleVerifySalary handles POST /credentials/verify-salary requests.
func (h *Handler) HandleVerifySalary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if _, ok := h.requireCaller(w, r); !ok {
		return
	}
	req, ok := httputil.Decode[verifySalaryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	subject, err := id.ParseAddress(req.Subject)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid subject address"))
		return
	}
	issuer, err := id.ParseAddress(req.Issuer)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid issuer address"))
		return
	}

	result, err := h.service.VerifySalary(ctx, subject, req.Salary, issuer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
