package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/member"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/domain/settlement"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/eventfeed"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	idgen "github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type repositories struct {
	matches      match.Repository
	results      result.Repository
	predictions  prediction.Repository
	members      member.Repository
	leaderboards leaderboard.Repository

	db *sqlx.DB
}

// NewHTTPServer wires repositories, services and the HTTP router. With
// DB_URL set the postgres repositories back everything; without it the
// service runs fully in memory on seed fixtures.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	repos, err := buildRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var readCache *cache.Store
	if cfg.CacheEnabled {
		readCache = cache.NewStore(cfg.CacheTTL)
	}

	deadline, err := usecase.NewDeadlinePolicy(cfg.CutoffWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("build deadline policy: %w", err)
	}

	leaderboardSvc := usecase.NewLeaderboardService(repos.members, repos.predictions, repos.leaderboards, readCache, logger)
	settlementSvc := usecase.NewSettlementService(repos.results, repos.predictions, leaderboardSvc, publisher, logger, cfg.SettlementWorkers)
	resultSvc := usecase.NewResultService(repos.matches, repos.results, repos.predictions, settlementSvc, idgen.NewRandomGenerator(), logger)
	predictionSvc := usecase.NewPredictionService(repos.matches, repos.predictions, deadline, idgen.NewRandomGenerator(), logger)
	disputeSvc := usecase.NewDisputeService(repos.results, repos.predictions, settlementSvc, leaderboardSvc, logger)

	handler := httpapi.NewHandler(resultSvc, predictionSvc, settlementSvc, leaderboardSvc, disputeSvc, cfg.SettlementSLA, cfg.BulkIngestWorkers, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func() error {
		if repos.db != nil {
			return repos.db.Close()
		}
		return nil
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config) (repositories, error) {
	if cfg.DBURL == "" {
		now := time.Now().UTC()
		memberRepo := memory.NewMemberRepository()
		if err := memory.SeedMemberships(context.Background(), memberRepo, now); err != nil {
			return repositories{}, fmt.Errorf("seed memberships: %w", err)
		}
		return repositories{
			matches:      memory.NewMatchRepository(memory.SeedMatches(now)),
			results:      memory.NewResultRepository(),
			predictions:  memory.NewPredictionRepository(),
			members:      memberRepo,
			leaderboards: memory.NewLeaderboardRepository(),
		}, nil
	}

	db, err := otelsqlx.Open("postgres", cfg.DBURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return repositories{
		matches:      postgres.NewMatchRepository(db),
		results:      postgres.NewResultRepository(db),
		predictions:  postgres.NewPredictionRepository(db),
		members:      postgres.NewMemberRepository(db),
		leaderboards: postgres.NewLeaderboardRepository(db),
		db:           db,
	}, nil
}

func buildPublisher(cfg config.Config, logger *logging.Logger) (settlement.Publisher, error) {
	if !cfg.EventFeedEnabled {
		return eventfeed.NopPublisher{}, nil
	}

	publisher, err := eventfeed.NewWebhookPublisher(eventfeed.WebhookPublisherConfig{
		TargetURL: cfg.EventFeedTargetURL,
		AuthToken: cfg.EventFeedAuthToken,
		Timeout:   cfg.EventFeedTimeout,
		Breaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: cfg.EventFeedCircuitFailureCount,
			OpenTimeout:      cfg.EventFeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.EventFeedCircuitHalfOpenMaxReq,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build event feed publisher: %w", err)
	}
	return publisher, nil
}
