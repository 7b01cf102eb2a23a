package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type recordFinalScoreRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	HomeScore int    `json:"home_score" validate:"min=0"`
	AwayScore int    `json:"away_score" validate:"min=0"`
}

func (h *Handler) RecordFinalScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordFinalScore")
	defer span.End()

	var req recordFinalScoreRequest
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

	res, err := h.resultService.RecordFinalScore(ctx, req.MatchID, req.HomeScore, req.AwayScore)
	if err != nil {
		h.logger.WarnContext(ctx, "record final score failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, resultToDTO(res))
}

type bulkRecordRequest struct {
	Rows []bulkRecordRowRequest `json:"rows" validate:"required,min=1,dive"`
	// Workers caps the ingest pool; zero means the service default.
	Workers int `json:"workers" validate:"min=0"`
}

type bulkRecordRowRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	HomeScore int    `json:"home_score" validate:"min=0"`
	AwayScore int    `json:"away_score" validate:"min=0"`
}

func (h *Handler) BulkRecordFinalScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BulkRecordFinalScores")
	defer span.End()

	var req bulkRecordRequest
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

	inputs := make([]usecase.FinalScoreInput, 0, len(req.Rows))
	for _, row := range req.Rows {
		inputs = append(inputs, usecase.FinalScoreInput{
			MatchID:   row.MatchID,
			HomeScore: row.HomeScore,
			AwayScore: row.AwayScore,
		})
	}

	workers := req.Workers
	if workers <= 0 {
		workers = h.bulkIngestWorkers
	}

	summary, err := h.resultService.BulkRecordFinalScores(ctx, inputs, workers)
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk record final scores failed", "rows", len(inputs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) ConfirmResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfirmResult")
	defer span.End()

	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: actor is missing from request context", usecase.ErrUnauthorized))
		return
	}
	resultID := strings.TrimSpace(r.PathValue("resultID"))

	res, err := h.resultService.Confirm(ctx, resultID, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm result failed", "result_id", resultID, "actor", actor, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(res))
}

func (h *Handler) FinalizeResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeResult")
	defer span.End()

	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: actor is missing from request context", usecase.ErrUnauthorized))
		return
	}
	resultID := strings.TrimSpace(r.PathValue("resultID"))

	res, err := h.resultService.Finalize(ctx, resultID, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize result failed", "result_id", resultID, "actor", actor, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(res))
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetResult")
	defer span.End()

	resultID := strings.TrimSpace(r.PathValue("resultID"))

	res, err := h.resultService.GetByID(ctx, resultID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(res))
}

func (h *Handler) GetSettlementStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSettlementStatus")
	defer span.End()

	resultID := strings.TrimSpace(r.PathValue("resultID"))

	run, ok := h.settlementService.Status(resultID)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no settlement run for result %s", usecase.ErrNotFound, resultID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, run)
}
