package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qxxq-lcvn/treasure-hunt/internal/identity/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/httputil"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

// Service defines the interface for identity operations.
type Service interface {
	CreateDID(ctx context.Context, identifier string) (*models.DID, error)
	GetDID(ctx context.Context, owner id.Address) (*models.DID, error)
	SetMetadata(ctx context.Context, name, email, profilePicture string) (*models.Metadata, error)
	GetMetadata(ctx context.Context, owner id.Address) (*models.Metadata, error)
}

// Handler wires identity endpoints to the identity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an identity handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts identity endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/dids", h.HandleCreateDID)
	r.Get("/identity/dids/me", h.HandleGetMyDID)
	r.Put("/identity/metadata", h.HandleSetMetadata)
	r.Get("/identity/metadata", h.HandleGetMetadata)
}

type createDIDRequest struct {
	Identifier string `json:"identifier"`
}

type setMetadataRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
}

// HandleCreateDID handles POST /identity/dids requests.
func (h *Handler) HandleCreateDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[createDIDRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	did, err := h.service.CreateDID(ctx, req.Identifier)
	if err != nil {
		h.logger.ErrorContext(ctx, "did creation failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "did created",
		"request_id", requestID,
		"caller", caller.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, did)
}

// HandleGetMyDID handles GET /identity/dids/me requests.
func (h *Handler) HandleGetMyDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	did, err := h.service.GetDID(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, did)
}

// HandleSetMetadata handles PUT /identity/metadata requests.
func (h *Handler) HandleSetMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[setMetadataRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	md, err := h.service.SetMetadata(ctx, req.Name, req.Email, req.ProfilePicture)
	if err != nil {
		h.logger.ErrorContext(ctx, "metadata write failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, md)
}

// HandleGetMetadata handles GET /identity/metadata requests. An address query
// parameter reads another profile; without one it reads the caller's own.
func (h *Handler) HandleGetMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	owner := caller
	if raw := r.URL.Query().Get("address"); raw != "" {
		parsed, err := id.ParseAddress(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid address"))
			return
		}
		owner = parsed
	}

	md, err := h.service.GetMetadata(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, md)
}
