package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type fileDisputeRequest struct {
	Reason      string `json:"reason" validate:"required,max=500"`
	EvidenceRef string `json:"evidence_ref" validate:"required,max=500"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH"`
}

func (h *Handler) FileDispute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FileDispute")
	defer span.End()

	if _, ok := actorFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: actor is missing from request context", usecase.ErrUnauthorized))
		return
	}
	resultID := strings.TrimSpace(r.PathValue("resultID"))

	var req fileDisputeRequest
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

	priority := result.NormalizePriority(result.DisputePriority(req.Priority))
	res, err := h.disputeService.FileDispute(ctx, resultID, req.Reason, req.EvidenceRef, priority)
	if err != nil {
		h.logger.WarnContext(ctx, "file dispute failed", "result_id", resultID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(res))
}

type resolveDisputeRequest struct {
	Upheld bool `json:"upheld"`
	// HomeScore and AwayScore are the corrected line, required only when
	// the dispute is overturned.
	HomeScore int `json:"home_score" validate:"min=0"`
	AwayScore int `json:"away_score" validate:"min=0"`
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveDispute")
	defer span.End()

	if _, ok := actorFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: actor is missing from request context", usecase.ErrUnauthorized))
		return
	}
	resultID := strings.TrimSpace(r.PathValue("resultID"))

	var req resolveDisputeRequest
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

	res, err := h.disputeService.Resolve(ctx, resultID, usecase.DisputeDecision{
		Upheld:    req.Upheld,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "resolve dispute failed", "result_id", resultID, "upheld", req.Upheld, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(res))
}
