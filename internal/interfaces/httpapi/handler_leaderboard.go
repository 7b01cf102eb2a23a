package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))

	entries, err := h.leaderboardService.GetLeaderboard(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, leaderboardEntryToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecomputeLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeLeaderboard")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))

	if err := h.leaderboardService.Recompute(ctx, groupID); err != nil {
		h.logger.ErrorContext(ctx, "recompute leaderboard failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"group_id": groupID, "status": "recomputed"})
}
