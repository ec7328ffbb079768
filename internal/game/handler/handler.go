package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qxxq-lcvn/treasure-hunt/internal/game/models"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/httputil"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

// Service defines the interface for game operations.
type Service interface {
	RegisterPlayer(ctx context.Context) (*models.Player, error)
	GetPlayer(ctx context.Context, address id.Address) (*models.Player, error)
	MovePlayer(ctx context.Context, position int) (*models.Player, error)
	ClaimTreasure(ctx context.Context, treasureID id.TreasureID) (*models.Player, error)
	TreasurePosition(ctx context.Context, treasureID id.TreasureID) (int, error)
}

// Handler wires game endpoints to the game service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a game handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated game endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/game/players", h.HandleRegisterPlayer)
	r.Get("/game/players/{address}", h.HandleGetPlayer)
	r.Post("/game/players/me/moves", h.HandleMovePlayer)
	r.Post("/game/treasures/{treasureID}/claim", h.HandleClaimTreasure)
}

// RegisterPublic mounts the endpoints open to unauthenticated callers.
// Treasure positions are readable regardless of claimed status and caller.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/game/treasures/{treasureID}/position", h.HandleTreasurePosition)
}

type moveRequest struct {
	Position int `json:"position"`
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (id.Address, bool) {
	caller := requestcontext.Caller(r.Context())
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return caller, true
}

func treasureIDParam(r *http.Request) (id.TreasureID, error) {
	raw := chi.URLParam(r, "treasureID")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid treasure id")
	}
	treasureID := id.TreasureID(n)
	if !treasureID.IsValid() {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid treasure id")
	}
	return treasureID, nil
}

// HandleRegisterPlayer handles POST /game/players requests.
func (h *Handler) HandleRegisterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	player, err := h.service.RegisterPlayer(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "player registration failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, player)
}

// HandleGetPlayer handles GET /game/players/{address} requests.
func (h *Handler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := h.requireCaller(w, r); !ok {
		return
	}
	address, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid player address"))
		return
	}

	player, err := h.service.GetPlayer(ctx, address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, player)
}

// HandleMovePlayer handles POST /game/players/me/moves requests.
func (h *Handler) HandleMovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[moveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	player, err := h.service.MovePlayer(ctx, req.Position)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "player moved",
		"request_id", requestID,
		"caller", caller.String(),
		"position", player.Position,
		"moves_remaining", player.MovesRemaining,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, player)
}

// HandleClaimTreasure handles POST /game/treasures/{treasureID}/claim requests.
func (h *Handler) HandleClaimTreasure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	treasureID, err := treasureIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	player, err := h.service.ClaimTreasure(ctx, treasureID)
	if err != nil {
		h.logger.ErrorContext(ctx, "treasure claim failed",
			"request_id", requestID,
			"caller", caller.String(),
			"treasure_id", int64(treasureID),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, player)
}

// HandleTreasurePosition handles GET /game/treasures/{treasureID}/position requests.
func (h *Handler) HandleTreasurePosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	treasureID, err := treasureIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	position, err := h.service.TreasurePosition(ctx, treasureID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"position": position})
}
