package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// ListOverdueSettlements is the SLA monitoring hook: it reports predictions
// still pending past the given window after their result was confirmed.
func (h *Handler) ListOverdueSettlements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOverdueSettlements")
	defer span.End()

	sla := h.defaultSettlementSLA
	if raw := strings.TrimSpace(r.URL.Query().Get("sla")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid sla duration %q: %v", usecase.ErrInvalidInput, raw, err))
			return
		}
		sla = parsed
	}

	overdue, err := h.settlementService.ListOverdueSettlements(ctx, sla)
	if err != nil {
		h.logger.ErrorContext(ctx, "list overdue settlements failed", "sla", sla.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"sla":     sla.String(),
		"count":   len(overdue),
		"overdue": overdue,
	})
}

// RetrySettlement re-runs settlement for a confirmed result. Safe to call
// after a partial failure: already-settled predictions are skipped.
func (h *Handler) RetrySettlement(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RetrySettlement")
	defer span.End()

	resultID := strings.TrimSpace(r.PathValue("resultID"))

	summary, err := h.settlementService.Settle(ctx, resultID)
	if err != nil {
		h.logger.ErrorContext(ctx, "retry settlement failed", "result_id", resultID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"result_id": summary.ResultID,
		"settled":   summary.Settled,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	})
}
