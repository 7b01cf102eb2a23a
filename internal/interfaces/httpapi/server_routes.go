package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/results/{resultID}", handler.GetResult)
	mux.HandleFunc("GET /v1/results/{resultID}/settlement", handler.GetSettlementStatus)
	mux.HandleFunc("GET /v1/groups/{groupID}/leaderboard", handler.GetLeaderboard)
}

func registerActorRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("POST /v1/predictions", RequireActor(http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("POST /v1/results", RequireActor(http.HandlerFunc(handler.RecordFinalScore)))
	mux.Handle("POST /v1/results/{resultID}/confirm", RequireActor(http.HandlerFunc(handler.ConfirmResult)))
	mux.Handle("POST /v1/results/{resultID}/finalize", RequireActor(http.HandlerFunc(handler.FinalizeResult)))
	mux.Handle("POST /v1/results/{resultID}/disputes", RequireActor(http.HandlerFunc(handler.FileDispute)))
	mux.Handle("POST /v1/results/{resultID}/disputes/resolve", RequireActor(http.HandlerFunc(handler.ResolveDispute)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/bulk-results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.BulkRecordFinalScores)))
	mux.Handle("POST /v1/internal/jobs/settlements/{resultID}/retry", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RetrySettlement)))
	mux.Handle("POST /v1/internal/jobs/groups/{groupID}/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecomputeLeaderboard)))
	mux.Handle("GET /v1/internal/settlements/overdue", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListOverdueSettlements)))
}
