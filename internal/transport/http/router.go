// Package httptransport assembles the public HTTP surface: middleware chain,
// authenticated domain routes, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	credentialhandler "github.com/qxxq-lcvn/treasure-hunt/internal/credential/handler"
	gamehandler "github.com/qxxq-lcvn/treasure-hunt/internal/game/handler"
	identityhandler "github.com/qxxq-lcvn/treasure-hunt/internal/identity/handler"
	"github.com/qxxq-lcvn/treasure-hunt/internal/platform/jwt"
	"github.com/qxxq-lcvn/treasure-hunt/internal/platform/middleware"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger     *slog.Logger
	JWT        *jwt.Service
	Identity   *identityhandler.Handler
	Credential *credentialhandler.Handler
	Game       *gamehandler.Handler
}

// tokenValidator adapts the JWT service to the middleware's validator shape.
type tokenValidator struct {
	svc *jwt.Service
}

func (v tokenValidator) ValidateToken(tokenString string) (string, error) {
	claims, err := v.svc.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Address, nil
}

// NewRouter wires all public endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/token", handleToken(deps))

	deps.Game.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCaller(tokenValidator{svc: deps.JWT}, deps.Logger))
		deps.Identity.Register(r)
		deps.Credential.Register(r)
		deps.Game.Register(r)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tokenRequest struct {
	Address string `json:"address"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// handleToken exchanges an address for a bearer token. Proof of address
// ownership (wallet signature login) is handled upstream of this service;
// the endpoint only binds the claim into a signed token.
func handleToken(deps Deps) http.HandlerFunc {
	const tokenTTL = time.Hour

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req, ok := httputil.Decode[tokenRequest](w, r, deps.Logger, ctx, "")
		if !ok {
			return
		}
		if req.Address == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "address is required"))
			return
		}

		token, err := deps.JWT.GenerateToken(req.Address, tokenTTL)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, tokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(tokenTTL.Seconds()),
		})
	}
}
