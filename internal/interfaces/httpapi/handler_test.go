package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const testJobToken = "job-token-test"

// newTestRouter wires the full HTTP stack over in-memory repositories.
func newTestRouter(t *testing.T, matches []match.Match) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	matchRepo := memory.NewMatchRepository(matches)
	resultRepo := memory.NewResultRepository()
	predictionRepo := memory.NewPredictionRepository()
	memberRepo := memory.NewMemberRepository()
	boardRepo := memory.NewLeaderboardRepository()

	leaderboardSvc := usecase.NewLeaderboardService(memberRepo, predictionRepo, boardRepo, nil, logger)
	settlementSvc := usecase.NewSettlementService(resultRepo, predictionRepo, leaderboardSvc, nil, logger, 4)
	resultSvc := usecase.NewResultService(matchRepo, resultRepo, predictionRepo, settlementSvc, idgen.NewRandomGenerator(), logger)
	predictionSvc := usecase.NewPredictionService(matchRepo, predictionRepo, usecase.DefaultDeadlinePolicy(), idgen.NewRandomGenerator(), logger)
	disputeSvc := usecase.NewDisputeService(resultRepo, predictionRepo, settlementSvc, leaderboardSvc, logger)

	handler := NewHandler(resultSvc, predictionSvc, settlementSvc, leaderboardSvc, disputeSvc, 5*time.Minute, 2, logger)
	return NewRouter(handler, logger, []string{"*"}, testJobToken)
}

func doRequest(t *testing.T, router http.Handler, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if envelope["apiVersion"] != "2.0" {
		t.Fatalf("apiVersion = %v, want 2.0", envelope["apiVersion"])
	}
	return envelope
}

func dataField(t *testing.T, envelope map[string]any, key string) any {
	t.Helper()

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("envelope has no data object: %v", envelope)
	}
	return data[key]
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if dataField(t, envelope, "status") != "ok" {
		t.Fatalf("data.status = %v, want ok", dataField(t, envelope, "status"))
	}
}

func TestRouter_ResultLifecycle(t *testing.T) {
	now := time.Now().UTC()
	router := newTestRouter(t, []match.Match{{
		ID:         "match-1",
		HomeTeamID: "team-home",
		AwayTeamID: "team-away",
		KickoffAt:  now.Add(-2 * time.Hour),
		Status:     match.StatusFinished,
	}})

	rec := doRequest(t, router, http.MethodPost, "/v1/results", "operator-1",
		`{"match_id":"match-1","home_score":2,"away_score":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	resultID, _ := dataField(t, envelope, "id").(string)
	if resultID == "" {
		t.Fatalf("response has no result id: %v", envelope)
	}
	if dataField(t, envelope, "status") != "PENDING" {
		t.Fatalf("data.status = %v, want PENDING", dataField(t, envelope, "status"))
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/results/"+resultID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/confirm", "operator-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	envelope = decodeEnvelope(t, rec)
	if dataField(t, envelope, "status") != "CONFIRMED" {
		t.Fatalf("data.status = %v, want CONFIRMED", dataField(t, envelope, "status"))
	}
	if dataField(t, envelope, "confirmed_by") != "operator-1" {
		t.Fatalf("data.confirmed_by = %v, want operator-1", dataField(t, envelope, "confirmed_by"))
	}

	// Confirming again maps to 409 ABORTED.
	rec = doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/confirm", "operator-2", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second confirm status = %d, want 409", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/results/unknown-id", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown result status = %d, want 404", rec.Code)
	}
}

func TestRouter_SubmitPrediction(t *testing.T) {
	now := time.Now().UTC()
	router := newTestRouter(t, []match.Match{{
		ID:         "match-1",
		HomeTeamID: "team-home",
		AwayTeamID: "team-away",
		KickoffAt:  now.Add(3 * time.Hour),
		Status:     match.StatusScheduled,
	}})

	body := `{"match_id":"match-1","group_id":"group-1","winner":"HOME","home_score":2,"away_score":1}`

	t.Run("requires an actor", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/predictions", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("creates the prediction", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/predictions", "user-1", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		if dataField(t, envelope, "user_id") != "user-1" {
			t.Fatalf("data.user_id = %v, want user-1", dataField(t, envelope, "user_id"))
		}
		if dataField(t, envelope, "status") != "PENDING" {
			t.Fatalf("data.status = %v, want PENDING", dataField(t, envelope, "status"))
		}
	})

	t.Run("duplicate maps to 409", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/predictions", "user-1", body)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("invalid winner maps to 400", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/predictions", "user-2",
			`{"match_id":"match-1","group_id":"group-1","winner":"BOTH"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown json field maps to 400", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/predictions", "user-2",
			`{"match_id":"match-1","group_id":"group-1","winner":"HOME","bogus":1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestRouter_SubmissionClosedMapsTo422(t *testing.T) {
	now := time.Now().UTC()
	router := newTestRouter(t, []match.Match{{
		ID:        "match-1",
		KickoffAt: now.Add(10 * time.Minute),
		Status:    match.StatusScheduled,
	}})

	rec := doRequest(t, router, http.MethodPost, "/v1/predictions", "user-1",
		`{"match_id":"match-1","group_id":"group-1","winner":"HOME"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_InternalJobRoutes(t *testing.T) {
	router := newTestRouter(t, nil)

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/groups/group-1/recompute", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/groups/group-1/recompute", nil)
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("bulk ingest defaults to the configured worker count", func(t *testing.T) {
		now := time.Now().UTC()
		bulkRouter := newTestRouter(t, []match.Match{
			{ID: "match-1", KickoffAt: now.Add(-2 * time.Hour), Status: match.StatusFinished},
			{ID: "match-2", KickoffAt: now.Add(-2 * time.Hour), Status: match.StatusFinished},
			{ID: "match-3", KickoffAt: now.Add(-2 * time.Hour), Status: match.StatusFinished},
		})

		body := `{"rows":[` +
			`{"match_id":"match-1","home_score":1,"away_score":0},` +
			`{"match_id":"match-2","home_score":0,"away_score":0},` +
			`{"match_id":"match-3","home_score":2,"away_score":3}]}`
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/bulk-results", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		bulkRouter.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		envelope := decodeEnvelope(t, rec)
		if success, _ := dataField(t, envelope, "success_count").(float64); success != 3 {
			t.Fatalf("data.success_count = %v, want 3", dataField(t, envelope, "success_count"))
		}
		// No workers field in the body, so the handler falls back to the
		// count it was constructed with rather than the service default.
		if workerCount, _ := dataField(t, envelope, "worker_count").(float64); workerCount != 2 {
			t.Fatalf("data.worker_count = %v, want 2", dataField(t, envelope, "worker_count"))
		}
	})

	t.Run("overdue listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/internal/settlements/overdue?sla=1m", nil)
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		if count, ok := dataField(t, envelope, "count").(float64); !ok || count != 0 {
			t.Fatalf("data.count = %v, want 0", dataField(t, envelope, "count"))
		}
	})
}

func TestRouter_DisputeLifecycle(t *testing.T) {
	now := time.Now().UTC()
	router := newTestRouter(t, []match.Match{
		{ID: "match-1", KickoffAt: now.Add(-2 * time.Hour), Status: match.StatusFinished},
		{ID: "match-2", KickoffAt: now.Add(-2 * time.Hour), Status: match.StatusFinished},
	})

	confirmResult := func(t *testing.T, matchID string) string {
		t.Helper()
		rec := doRequest(t, router, http.MethodPost, "/v1/results", "operator-1",
			`{"match_id":"`+matchID+`","home_score":2,"away_score":1}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("record status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		resultID, _ := dataField(t, decodeEnvelope(t, rec), "id").(string)
		rec = doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/confirm", "operator-1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("confirm status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		return resultID
	}

	resultID := confirmResult(t, "match-1")
	disputeBody := `{"reason":"away goal missed","evidence_ref":"video-42","priority":"HIGH"}`

	t.Run("requires an actor", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/disputes", "", disputeBody)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing reason maps to 400", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/disputes", "user-1",
			`{"evidence_ref":"video-42"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("files the dispute", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/disputes", "user-1", disputeBody)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		if dataField(t, envelope, "status") != "DISPUTED" {
			t.Fatalf("data.status = %v, want DISPUTED", dataField(t, envelope, "status"))
		}
		dispute, ok := dataField(t, envelope, "dispute").(map[string]any)
		if !ok {
			t.Fatalf("response has no dispute object: %v", envelope)
		}
		if dispute["reason"] != "away goal missed" || dispute["priority"] != "HIGH" {
			t.Fatalf("dispute = %v, want reason and HIGH priority", dispute)
		}
	})

	t.Run("second dispute maps to 409", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/disputes", "user-2", disputeBody)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("upheld resolution finalizes the result", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/disputes/resolve", "operator-1",
			`{"upheld":true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		if dataField(t, envelope, "status") != "RESOLVED" {
			t.Fatalf("data.status = %v, want RESOLVED", dataField(t, envelope, "status"))
		}

		rec = doRequest(t, router, http.MethodPost, "/v1/results/"+resultID+"/disputes", "user-3", disputeBody)
		if rec.Code != http.StatusConflict {
			t.Fatalf("dispute after resolution status = %d, want 409", rec.Code)
		}
	})

	t.Run("overturned resolution corrects the score", func(t *testing.T) {
		overturnedID := confirmResult(t, "match-2")
		rec := doRequest(t, router, http.MethodPost, "/v1/results/"+overturnedID+"/disputes", "user-1",
			`{"reason":"late equalizer","evidence_ref":"video-43"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("dispute status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		dispute, _ := dataField(t, envelope, "dispute").(map[string]any)
		if dispute["priority"] != "NORMAL" {
			t.Fatalf("dispute.priority = %v, want default NORMAL", dispute["priority"])
		}

		rec = doRequest(t, router, http.MethodPost, "/v1/results/"+overturnedID+"/disputes/resolve", "operator-1",
			`{"upheld":false,"home_score":2,"away_score":2}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("resolve status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		envelope = decodeEnvelope(t, rec)
		if dataField(t, envelope, "status") != "CONFIRMED" {
			t.Fatalf("data.status = %v, want CONFIRMED", dataField(t, envelope, "status"))
		}
		if home, _ := dataField(t, envelope, "home_score").(float64); home != 2 {
			t.Fatalf("data.home_score = %v, want 2", dataField(t, envelope, "home_score"))
		}
		if away, _ := dataField(t, envelope, "away_score").(float64); away != 2 {
			t.Fatalf("data.away_score = %v, want 2", dataField(t, envelope, "away_score"))
		}
	})
}

func TestRouter_Leaderboard(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodGet, "/v1/groups/group-1/leaderboard", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	entries, ok := envelope["data"].([]any)
	if !ok {
		t.Fatalf("data should be an array, got %v", envelope["data"])
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d, want 0 for an empty group", len(entries))
	}
}
