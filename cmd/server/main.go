// Command server wires the treasure-hunt registry: identity, credential, and
// game services behind one HTTP surface. Backends are chosen from the
// environment; with no Postgres/Redis/Kafka configured everything runs in
// memory, which is the single-node development mode.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	credentialhandler "github.com/qxxq-lcvn/treasure-hunt/internal/credential/handler"
	credentialmetrics "github.com/qxxq-lcvn/treasure-hunt/internal/credential/metrics"
	credentialservice "github.com/qxxq-lcvn/treasure-hunt/internal/credential/service"
	credentialstore "github.com/qxxq-lcvn/treasure-hunt/internal/credential/store"
	"github.com/qxxq-lcvn/treasure-hunt/internal/game/board"
	gamehandler "github.com/qxxq-lcvn/treasure-hunt/internal/game/handler"
	gamemetrics "github.com/qxxq-lcvn/treasure-hunt/internal/game/metrics"
	gameservice "github.com/qxxq-lcvn/treasure-hunt/internal/game/service"
	gamestore "github.com/qxxq-lcvn/treasure-hunt/internal/game/store"
	identityhandler "github.com/qxxq-lcvn/treasure-hunt/internal/identity/handler"
	identitymetrics "github.com/qxxq-lcvn/treasure-hunt/internal/identity/metrics"
	identityservice "github.com/qxxq-lcvn/treasure-hunt/internal/identity/service"
	identitystore "github.com/qxxq-lcvn/treasure-hunt/internal/identity/store"
	"github.com/qxxq-lcvn/treasure-hunt/internal/platform/config"
	"github.com/qxxq-lcvn/treasure-hunt/internal/platform/httpserver"
	"github.com/qxxq-lcvn/treasure-hunt/internal/platform/jwt"
	"github.com/qxxq-lcvn/treasure-hunt/internal/platform/logger"
	"github.com/qxxq-lcvn/treasure-hunt/internal/token"
	httptransport "github.com/qxxq-lcvn/treasure-hunt/internal/transport/http"
	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	dErrors "github.com/qxxq-lcvn/treasure-hunt/pkg/domain-errors"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	auditkafka "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/kafka"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/publisher"
	auditmemory "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/store/memory"
	auditpostgres "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/store/postgres"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// Stores: Postgres when configured, in-memory otherwise.
	var (
		identityStore   identityservice.Store
		credentialStore credentialservice.Store
		gameStore       gameservice.Store
		auditStore      audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		identityStore = identitystore.NewPostgres(db)
		credentialStore = credentialstore.NewPostgres(db)
		gameStore = gamestore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		log.Info("using postgres backend")
	} else {
		identityStore = identitystore.NewMemory()
		credentialStore = credentialstore.NewMemory()
		gameStore = gamestore.NewMemory()
		auditStore = auditmemory.NewInMemoryStore()
		log.Info("using in-memory backend")
	}

	// Token ledger: Redis when configured.
	collection := token.Collection{Name: cfg.CollectionName, Symbol: cfg.CollectionSymbol}
	var ledger token.Ledger
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		ledger = token.NewRedisLedger(client, collection)
		log.Info("using redis token ledger")
	} else {
		ledger = token.NewInMemoryLedger(collection)
	}

	// Audit: store-backed publisher, plus Kafka fanout when brokers are set.
	storePublisher := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256))
	defer storePublisher.Close()

	var auditPublisher publisher.Emitter = storePublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := auditkafka.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		defer kafkaPublisher.Close()
		auditPublisher = publisher.Fanout{storePublisher, kafkaPublisher}
		log.Info("audit events fan out to kafka", "topic", cfg.AuditTopic)
	}

	// Domain services.
	identitySvc := identityservice.New(identityStore,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditPublisher),
		identityservice.WithMetrics(identitymetrics.New()),
	)
	credentialSvc := credentialservice.New(credentialStore, identitySvc,
		credentialservice.WithLogger(log),
		credentialservice.WithAuditPublisher(auditPublisher),
		credentialservice.WithMetrics(credentialmetrics.New()),
	)
	gameSvc := gameservice.New(gameStore, identitySvc, ledger,
		board.Params{
			GridSize:     cfg.GridSize,
			MaxTreasures: cfg.MaxTreasures,
			InitialValue: cfg.InitialValue,
		},
		gameservice.WithLogger(log),
		gameservice.WithAuditPublisher(auditPublisher),
		gameservice.WithMetrics(gamemetrics.New()),
		gameservice.WithCollection(collection),
		gameservice.WithTokenURI(cfg.TokenURI),
	)

	// Bootstrap: super admin designation and the one-time board placement.
	if err := credentialSvc.SeedSuperAdmin(ctx, id.Address(cfg.SuperAdmin)); err != nil {
		return err
	}
	if _, err := gameSvc.PlaceTreasures(ctx); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return err
		}
		log.Info("board already initialized, skipping placement")
	}

	jwtSvc := jwt.NewService(cfg.JWTSigningKey, "treasure-hunt")
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		JWT:        jwtSvc,
		Identity:   identityhandler.New(identitySvc, log),
		Credential: credentialhandler.New(credentialSvc, log),
		Game:       gamehandler.New(gameSvc, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting treasure-hunt registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
