// Package e2e exercises the registry over its public HTTP surface. Every
// scenario gets a fresh in-process server wired against in-memory stores
// with a fixed placement seed, so treasure positions are known to the steps.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	credentialhandler "github.com/qxxq-lcvn/treasure-hunt/internal/credential/handler"
	credentialservice "github.com/qxxq-lcvn/treasure-hunt/internal/credential/service"
	credentialstore "github.com/qxxq-lcvn/treasure-hunt/internal/credential/store"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/board"
	gamehandler "github.com/qxxq-lcvn/treasure-hunt/internal/game/handler"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/models"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/rng"
	gameservice "github.com/qxxq-lcvn/treasure-hunt/internal/game/service"
	gamestore "github.com/qxxq-lcvn/treasure-hunt/internal/game/store"
	identityhandler "github.com/qxxq-lcvn/treasure-hunt/internal/identity/handler"
	identityservice "github.com/qxxq-lcvn/treasure-hunt/internal/identity/service"
	identitystore "github.com/qxxq-lcvn/treasure-hunt/internal/identity/store"
	"github.com/qxxq-lcvn/treasure-hunt/internal/platform/jwt"
	"github.com/qxxq-lcvn/treasure-hunt/internal/token"
	httptransport "github.com/qxxq-lcvn/treasure-hunt/internal/transport/http"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/publisher"
	auditmemory "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/store/memory"
)

const (
	superAdminName = "admin"

	gridSize      = 100
	maxTreasures  = 3
	initialValue  = 100
	placementSeed = 42
)

// TestContext carries the in-process server and per-scenario request state.
// Step packages consume it through their own narrow interfaces.
type TestContext struct {
	server    *httptest.Server
	client    *http.Client
	treasures []models.Treasure

	tokens  map[string]string
	current string

	lastStatus int
	lastBody   []byte
}

// NewTestContext creates an empty context. Call Reset before the first
// scenario to boot the server.
func NewTestContext() *TestContext {
	return &TestContext{}
}

// Reset tears down the previous scenario's server and boots a fully wired
// in-memory replacement: fresh stores, seeded super admin, placed board.
func (tc *TestContext) Reset() error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auditStore := auditmemory.NewInMemoryStore()
	sink := publisher.NewPublisher(auditStore)

	identitySvc := identityservice.New(identitystore.NewMemory(),
		identityservice.WithLogger(logger),
		identityservice.WithAuditPublisher(sink),
	)
	credentialSvc := credentialservice.New(credentialstore.NewMemory(), identitySvc,
		credentialservice.WithLogger(logger),
		credentialservice.WithAuditPublisher(sink),
	)

	ledger := token.NewInMemoryLedger(token.Collection{Name: "Treasure Hunt", Symbol: "HUNT"})
	gameSvc := gameservice.New(gamestore.NewMemory(), identitySvc, ledger,
		board.Params{GridSize: gridSize, MaxTreasures: maxTreasures, InitialValue: initialValue},
		gameservice.WithLogger(logger),
		gameservice.WithAuditPublisher(sink),
		gameservice.WithRNG(rng.NewFixed(placementSeed)),
	)

	ctx := context.Background()
	if err := credentialSvc.SeedSuperAdmin(ctx, id.Address(addressOf(superAdminName))); err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}
	treasures, err := gameSvc.PlaceTreasures(ctx)
	if err != nil {
		return fmt.Errorf("place treasures: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     logger,
		JWT:        jwt.NewService("e2e-signing-key", "treasure-hunt"),
		Identity:   identityhandler.New(identitySvc, logger),
		Credential: credentialhandler.New(credentialSvc, logger),
		Game:       gamehandler.New(gameSvc, logger),
	})

	tc.Close()
	tc.server = httptest.NewServer(router)
	tc.client = tc.server.Client()
	tc.treasures = treasures
	tc.tokens = make(map[string]string)
	tc.current = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	return nil
}

// Close shuts the scenario's server down.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
}

func addressOf(name string) string {
	return "0x" + name
}

// Address maps a scenario persona to its on-registry address.
func (tc *TestContext) Address(name string) string {
	return addressOf(name)
}

// SuperAdmin returns the seeded super-admin address.
func (tc *TestContext) SuperAdmin() string {
	return addressOf(superAdminName)
}

// Authenticate obtains a bearer token for the persona and makes it the
// current caller.
func (tc *TestContext) Authenticate(name string) error {
	tc.current = ""
	if err := tc.POST("/auth/token", map[string]string{"address": addressOf(name)}); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusOK {
		return fmt.Errorf("token exchange for %q returned status %d", name, tc.lastStatus)
	}
	bearer, err := tc.ResponseField("access_token")
	if err != nil {
		return err
	}
	tc.tokens[name] = bearer.(string)
	tc.current = name
	return nil
}

// ActAs switches the current caller to an already authenticated persona.
func (tc *TestContext) ActAs(name string) error {
	if _, ok := tc.tokens[name]; !ok {
		return fmt.Errorf("%q is not authenticated", name)
	}
	tc.current = name
	return nil
}

// AsAnonymous drops the current caller so requests go out unauthenticated.
func (tc *TestContext) AsAnonymous() {
	tc.current = ""
}

// POST sends a JSON request and records the response.
func (tc *TestContext) POST(path string, body any) error {
	return tc.send(http.MethodPost, path, body)
}

// PUT sends a JSON request and records the response.
func (tc *TestContext) PUT(path string, body any) error {
	return tc.send(http.MethodPut, path, body)
}

func (tc *TestContext) send(method, path string, body any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET sends a request and records the response.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.server.URL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	if tc.current != "" {
		req.Header.Set("Authorization", "Bearer "+tc.tokens[tc.current])
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	return nil
}

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// ResponseField extracts a top-level field from the most recent JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var payload map[string]any
	if err := json.Unmarshal(tc.lastBody, &payload); err != nil {
		return nil, fmt.Errorf("parse response body %q: %w", string(tc.lastBody), err)
	}
	value, ok := payload[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q: %s", field, string(tc.lastBody))
	}
	return value, nil
}

// TreasurePosition reveals where the fixed-seed placement put a treasure.
func (tc *TestContext) TreasurePosition(treasureID int) (int, error) {
	for _, t := range tc.treasures {
		if int(t.ID) == treasureID {
			return t.Position, nil
		}
	}
	return 0, fmt.Errorf("no treasure with id %d", treasureID)
}

// TreasureValue reveals the placement value of a treasure.
func (tc *TestContext) TreasureValue(treasureID int) (int64, error) {
	for _, t := range tc.treasures {
		if int(t.ID) == treasureID {
			return t.Value, nil
		}
	}
	return 0, fmt.Errorf("no treasure with id %d", treasureID)
}
