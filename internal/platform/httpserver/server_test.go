package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	contestregistry "inkwell/contexts/contest-judging/contest-registry"
	judgeregistry "inkwell/contexts/contest-judging/judge-registry"
	submissionmanager "inkwell/contexts/contest-judging/submission-manager"
	votingengine "inkwell/contexts/contest-judging/voting-engine"
	votingentities "inkwell/contexts/contest-judging/voting-engine/domain/entities"
	votingports "inkwell/contexts/contest-judging/voting-engine/ports"
	"inkwell/internal/platform/db"
	"inkwell/internal/platform/observability"

	"github.com/prometheus/client_golang/prometheus"
)

const testSecret = "httpserver-test-secret-0123456789abcdef"

func newTestServer(health func(context.Context) error) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	return New(Options{
		Registry:    contestregistry.NewInMemoryModule(nil, logger),
		Submissions: submissionmanager.NewInMemoryModule(logger),
		Judges:      judgeregistry.NewInMemoryModule(logger),
		Voting:      votingengine.NewInMemoryModule(logger),
		Auth:        NewAuthenticator(testSecret),
		Metrics:     observability.NewMetrics("inkwell-test", reg),
		Gatherer:    reg,
		Health:      health,
		Logger:      logger,
		Addr:        ":0",
	})
}

func bearer(t *testing.T, identity Identity) string {
	t.Helper()
	token, err := NewAuthenticator(testSecret).Issue(identity, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func serve(server *Server, method, path, authorization, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rr.Body.String())
	}
	return resp.Code
}

func TestCreateContestRequiresBearerToken(t *testing.T) {
	server := newTestServer(nil)
	body := `{"title":"Spring Stories","is_public":true}`

	rr := serve(server, http.MethodPost, "/contests", "", body)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "unauthorized" {
		t.Fatalf("expected unauthorized, got %s", code)
	}

	rr = serve(server, http.MethodPost, "/contests", "Bearer not-a-token", body)
	if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != "invalid_token" {
		t.Fatalf("expected 401 invalid_token, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(server, http.MethodPost, "/contests", bearer(t, Identity{UserID: 10}), body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListContestsAllowsAnonymousButRejectsBadToken(t *testing.T) {
	server := newTestServer(nil)

	if rr := serve(server, http.MethodGet, "/contests", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected anonymous listing, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := serve(server, http.MethodGet, "/contests", "Basic abc", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", rr.Code)
	}
	if rr := serve(server, http.MethodGet, "/contests?limit=-1", "", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rr.Code)
	}
}

func TestTokenFromOtherIssuerIsRejected(t *testing.T) {
	server := newTestServer(nil)
	token, err := NewAuthenticator("another-secret-0123456789abcdefghijkl").Issue(Identity{UserID: 10}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rr := serve(server, http.MethodPost, "/contests", "Bearer "+token, `{"title":"x"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequestBodyRejectsUnknownFields(t *testing.T) {
	server := newTestServer(nil)
	rr := serve(server, http.MethodPost, "/contests", bearer(t, Identity{UserID: 10}), `{"title":"x","prize":100}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_json" {
		t.Fatalf("expected 400 invalid_json, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPathIDMustBePositive(t *testing.T) {
	server := newTestServer(nil)
	for _, path := range []string{"/contests/abc", "/contests/0", "/contests/-4"} {
		rr := serve(server, http.MethodGet, path, "", "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rr.Code)
		}
	}
}

func TestContestNotFoundMapsTo404(t *testing.T) {
	server := newTestServer(nil)
	rr := serve(server, http.MethodGet, "/contests/42", "", "")
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "contest_not_found" {
		t.Fatalf("expected 404 contest_not_found, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInternalRoutesRequireOperator(t *testing.T) {
	server := newTestServer(nil)
	paths := []string{"/internal/contests/sweep", "/internal/texts/7/deleted"}
	for _, path := range paths {
		if rr := serve(server, http.MethodPost, path, "", ""); rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rr.Code)
		}
		if rr := serve(server, http.MethodPost, path, bearer(t, Identity{UserID: 10}), ""); rr.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, rr.Code)
		}
	}
	rr := serve(server, http.MethodPost, "/internal/contests/sweep", bearer(t, Identity{UserID: 1, Privileged: true}), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected operator sweep to succeed, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAIVoteSetRequiresExecutorRole(t *testing.T) {
	server := newTestServer(nil)
	store := server.voting.Store
	store.SetContest(votingports.ContestProjection{
		ContestID: 1,
		CreatorID: 10,
		Status:    votingentities.ContestStatusEvaluation,
	}, true)
	store.SetSubmissions(1, []votingports.SubmissionRef{
		{SubmissionID: 1, AnonymousCode: "TXT-00000001", OwnerID: 101, AuthorID: 101, Active: true},
	})
	store.SetJudges(1, "agent:21:gpt-4o")

	body := `{"judge":{"kind":"ai","agent_id":21,"model":"gpt-4o"},"entries":[{"submission_id":1,"place":1}]}`
	rr := serve(server, http.MethodPost, "/contests/1/votes", bearer(t, Identity{UserID: 11}), body)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a human token, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(server, http.MethodPost, "/contests/1/votes", bearer(t, Identity{UserID: 500, AIExecutor: true}), body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected executor vote to succeed, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"contest_closed":true`)) {
		t.Fatalf("expected the only judge to close the contest, body=%s", rr.Body.String())
	}
}

func TestInfraErrorMapping(t *testing.T) {
	server := newTestServer(nil)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("cast vote set: %w", db.ErrTransactionConflict), http.StatusServiceUnavailable, "transaction_conflict"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		server.writeInfraError(rr, httptest.NewRequest(http.MethodGet, "/contests", nil), tc.err)
		if rr.Code != tc.status || errorCode(t, rr) != tc.code {
			t.Fatalf("%v: expected %d %s, got %d body=%s", tc.err, tc.status, tc.code, rr.Code, rr.Body.String())
		}
	}
}

func TestVotingErrorsKeepConflictsRetryable(t *testing.T) {
	server := newTestServer(nil)
	rr := httptest.NewRecorder()
	closeErr := fmt.Errorf("%w: contest status transition contended", db.ErrTransactionConflict)
	server.writeVotingDomainError(rr, httptest.NewRequest(http.MethodPost, "/contests/1/votes", nil), closeErr)
	if rr.Code != http.StatusServiceUnavailable || errorCode(t, rr) != "transaction_conflict" {
		t.Fatalf("expected 503 transaction_conflict, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthReflectsDependencies(t *testing.T) {
	if rr := serve(newTestServer(nil), http.MethodGet, "/healthz", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rr.Code)
	}
	failing := newTestServer(func(context.Context) error { return errors.New("postgres down") })
	if rr := serve(failing, http.MethodGet, "/healthz", "", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	server := newTestServer(nil)
	serve(server, http.MethodGet, "/contests", "", "")

	rr := serve(server, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `route="GET /contests"`) {
		t.Fatalf("expected route label for GET /contests, body=%s", rr.Body.String())
	}
}
