package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const defaultSettlementSLAWindow = 5 * time.Minute

type Handler struct {
	resultService      *usecase.ResultService
	predictionService  *usecase.PredictionService
	settlementService  *usecase.SettlementService
	leaderboardService *usecase.LeaderboardService
	disputeService     *usecase.DisputeService
	logger             *logging.Logger
	validator          *validator.Validate

	defaultSettlementSLA time.Duration
	// bulkIngestWorkers applies when a bulk request does not carry its
	// own worker count; zero defers to the ingest service default.
	bulkIngestWorkers int
}

func NewHandler(
	resultService *usecase.ResultService,
	predictionService *usecase.PredictionService,
	settlementService *usecase.SettlementService,
	leaderboardService *usecase.LeaderboardService,
	disputeService *usecase.DisputeService,
	settlementSLA time.Duration,
	bulkIngestWorkers int,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if settlementSLA <= 0 {
		settlementSLA = defaultSettlementSLAWindow
	}
	if bulkIngestWorkers < 0 {
		bulkIngestWorkers = 0
	}

	return &Handler{
		resultService:      resultService,
		predictionService:  predictionService,
		settlementService:  settlementService,
		leaderboardService: leaderboardService,
		disputeService:     disputeService,
		logger:             logger,
		validator:          validator.New(),

		defaultSettlementSLA: settlementSLA,
		bulkIngestWorkers:    bulkIngestWorkers,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
