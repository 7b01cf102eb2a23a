package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type submitPredictionRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	GroupID   string `json:"group_id" validate:"required"`
	Winner    string `json:"winner" validate:"required,oneof=HOME AWAY DRAW"`
	HomeScore *int   `json:"home_score" validate:"omitempty,min=0"`
	AwayScore *int   `json:"away_score" validate:"omitempty,min=0"`
}

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: actor is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req submitPredictionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	pred, err := h.predictionService.Submit(ctx, usecase.SubmitPredictionInput{
		UserID:    actor,
		MatchID:   req.MatchID,
		GroupID:   req.GroupID,
		Winner:    result.Winner(req.Winner),
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed", "user_id", actor, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, predictionToDTO(pred))
}
