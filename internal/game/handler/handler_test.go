package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/qxxq-lcvn/treasure-hunt/internal/game/board"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/models"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/rng"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/service"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/store"
	identityservice "github.com/qxxq-lcvn/treasure-hunt/internal/identity/service"
	identitystore "github.com/qxxq-lcvn/treasure-hunt/internal/identity/store"
	"github.com/qxxq-lcvn/treasure-hunt/internal/token"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/requestcontext"
)

type gameFixture struct {
	router    http.Handler
	identity  *identityservice.Service
	treasures []models.Treasure
}

func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()

	identity := identityservice.New(identitystore.NewMemory())
	svc := service.New(
		store.NewMemory(),
		identity,
		token.NewInMemoryLedger(token.Collection{Name: "Treasure Hunt", Symbol: "HUNT"}),
		board.Params{GridSize: 10, MaxTreasures: 3, InitialValue: 100},
		service.WithRNG(rng.NewFixed(7)),
	)
	treasures, err := svc.PlaceTreasures(t.Context())
	if err != nil {
		t.Fatalf("placing treasures: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller := req.Header.Get("X-Test-Caller"); caller != "" {
				req = req.WithContext(requestcontext.WithCaller(req.Context(), id.Address(caller)))
			}
			next.ServeHTTP(w, req)
		})
	})
	h := New(svc, logger)
	h.Register(r)
	h.RegisterPublic(r)

	return &gameFixture{router: r, identity: identity, treasures: treasures}
}

func (f *gameFixture) registerDID(t *testing.T, addr id.Address) {
	t.Helper()
	ctx := requestcontext.WithCaller(t.Context(), addr)
	if _, err := f.identity.CreateDID(ctx, "did:hunt:"+string(addr)); err != nil {
		t.Fatalf("registering DID for %s: %v", addr, err)
	}
}

func (f *gameFixture) do(t *testing.T, method, caller, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set("X-Test-Caller", caller)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterPlayerRequiresDID(t *testing.T) {
	f := newGameFixture(t)

	rec := f.do(t, http.MethodPost, "0xalice", "/game/players", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 registering without DID, got %d", rec.Code)
	}

	f.registerDID(t, "0xalice")
	rec = f.do(t, http.MethodPost, "0xalice", "/game/players", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering player, got %d: %s", rec.Code, rec.Body.String())
	}

	var player struct {
		MovesRemaining int `json:"moves_remaining"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&player); err != nil {
		t.Fatalf("failed to decode player: %v", err)
	}
	if player.MovesRemaining != models.InitialMoves {
		t.Fatalf("expected %d initial moves, got %d", models.InitialMoves, player.MovesRemaining)
	}

	rec = f.do(t, http.MethodPost, "0xalice", "/game/players", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate registration, got %d", rec.Code)
	}
}

func TestMoveAndClaimFlow(t *testing.T) {
	f := newGameFixture(t)
	f.registerDID(t, "0xalice")

	rec := f.do(t, http.MethodPost, "0xalice", "/game/players", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering player, got %d", rec.Code)
	}

	target := f.treasures[0]

	// Position endpoint is open to anyone.
	posRec := f.do(t, http.MethodGet, "", fmt.Sprintf("/game/treasures/%d/position", target.ID), nil)
	if posRec.Code != http.StatusOK {
		t.Fatalf("expected 200 reading position, got %d", posRec.Code)
	}
	var pos struct {
		Position int `json:"position"`
	}
	if err := json.NewDecoder(posRec.Body).Decode(&pos); err != nil {
		t.Fatalf("failed to decode position: %v", err)
	}
	if pos.Position != target.Position {
		t.Fatalf("expected position %d, got %d", target.Position, pos.Position)
	}

	moveRec := f.do(t, http.MethodPost, "0xalice", "/game/players/me/moves",
		map[string]int{"position": target.Position})
	if moveRec.Code != http.StatusOK {
		t.Fatalf("expected 200 moving, got %d: %s", moveRec.Code, moveRec.Body.String())
	}

	claimRec := f.do(t, http.MethodPost, "0xalice", fmt.Sprintf("/game/treasures/%d/claim", target.ID), nil)
	if claimRec.Code != http.StatusOK {
		t.Fatalf("expected 200 claiming, got %d: %s", claimRec.Code, claimRec.Body.String())
	}
	var claimed struct {
		Score          int64 `json:"score"`
		MovesRemaining int   `json:"moves_remaining"`
	}
	if err := json.NewDecoder(claimRec.Body).Decode(&claimed); err != nil {
		t.Fatalf("failed to decode claim response: %v", err)
	}
	if claimed.Score != target.Value {
		t.Fatalf("expected score %d, got %d", target.Value, claimed.Score)
	}
	if claimed.MovesRemaining != models.InitialMoves-2 {
		t.Fatalf("expected %d moves after move+claim, got %d", models.InitialMoves-2, claimed.MovesRemaining)
	}

	// Replayed claim conflicts.
	claimRec = f.do(t, http.MethodPost, "0xalice", fmt.Sprintf("/game/treasures/%d/claim", target.ID), nil)
	if claimRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second claim, got %d", claimRec.Code)
	}
}

func TestClaimUnknownTreasure(t *testing.T) {
	f := newGameFixture(t)
	f.registerDID(t, "0xalice")
	f.do(t, http.MethodPost, "0xalice", "/game/players", nil)

	rec := f.do(t, http.MethodPost, "0xalice", "/game/treasures/999/claim", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 claiming unknown treasure, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "0xalice", "/game/treasures/zero/claim", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed treasure id, got %d", rec.Code)
	}
}

func TestGetPlayerRequiresRegistration(t *testing.T) {
	f := newGameFixture(t)
	f.registerDID(t, "0xalice")
	f.do(t, http.MethodPost, "0xalice", "/game/players", nil)

	rec := f.do(t, http.MethodGet, "0xbob", "/game/players/0xalice", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unregistered caller, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "0xalice", "/game/players/0xalice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for registered caller, got %d", rec.Code)
	}
}
