package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	contesthttp "inkwell/contexts/contest-judging/contest-registry/transport/http"
	judgehttp "inkwell/contexts/contest-judging/judge-registry/transport/http"
	submissioncommands "inkwell/contexts/contest-judging/submission-manager/application/commands"
	submissionentities "inkwell/contexts/contest-judging/submission-manager/domain/entities"
	submissionhttp "inkwell/contexts/contest-judging/submission-manager/transport/http"
	votinghttp "inkwell/contexts/contest-judging/voting-engine/transport/http"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/httpserver"
)

const testSecret = "bootstrap-test-secret-0123456789abcdef"

type harness struct {
	t       *testing.T
	rt      *Runtime
	handler http.Handler
	auth    httpserver.Authenticator
}

func testConfig() config.Config {
	return config.Config{
		ServiceName:     "inkwell-test",
		JWTSecret:       testSecret,
		TxMaxAttempts:   3,
		SweepInterval:   time.Minute,
		RelayInterval:   time.Minute,
		OutboxBatchSize: 100,
		MetricsEnabled:  true,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessFrom(t, testConfig())
}

func newHarnessFrom(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt, err := Build(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return &harness{
		t:       t,
		rt:      rt,
		handler: NewServer(rt, ":0").Handler(),
		auth:    httpserver.NewAuthenticator(testSecret),
	}
}

func (h *harness) token(identity httpserver.Identity) string {
	h.t.Helper()
	token, err := h.auth.Issue(identity, time.Hour)
	if err != nil {
		h.t.Fatalf("issue token: %v", err)
	}
	return token
}

// do sends body as JSON and decodes the response into out when out is set.
func (h *harness) do(method, path string, identity *httpserver.Identity, body any, out any) int {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if identity != nil {
		req.Header.Set("Authorization", "Bearer "+h.token(*identity))
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			h.t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func (h *harness) expect(want int, method, path string, identity *httpserver.Identity, body any, out any) {
	h.t.Helper()
	if got := h.do(method, path, identity, body, out); got != want {
		h.t.Fatalf("%s %s: expected %d, got %d", method, path, want, got)
	}
}

func waitFor(t *testing.T, what string, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestContestLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := h.rt.StartConsumers(ctx); err != nil {
		t.Fatalf("start consumers: %v", err)
	}

	creator := &httpserver.Identity{UserID: 10}
	judge := &httpserver.Identity{UserID: 11}
	executor := &httpserver.Identity{UserID: 500, AIExecutor: true}

	var created contesthttp.ContestResponse
	h.expect(http.StatusCreated, http.MethodPost, "/contests", creator, contesthttp.CreateContestRequest{
		Title:    "Spring Stories",
		IsPublic: true,
	}, &created)
	contestPath := "/contests/" + strconv.FormatInt(created.Contest.ContestID, 10)
	if created.Contest.Status != "open" {
		t.Fatalf("expected open contest, got %s", created.Contest.Status)
	}

	submissionIDs := make([]int64, 0, 3)
	for i := int64(1); i <= 3; i++ {
		author := 100 + i
		h.rt.Modules.Submissions.Store.SetText(submissionentities.Text{
			TextID:   i,
			OwnerID:  author,
			AuthorID: author,
			Title:    "Story " + strconv.FormatInt(i, 10),
			Content:  "Once upon a time.",
		})
		var submitted submissionhttp.SubmitResponse
		h.expect(http.StatusCreated, http.MethodPost, contestPath+"/submissions",
			&httpserver.Identity{UserID: author}, submissionhttp.SubmitRequest{TextID: i}, &submitted)
		submissionIDs = append(submissionIDs, submitted.Submission.SubmissionID)
	}

	h.expect(http.StatusCreated, http.MethodPost, contestPath+"/judges", creator,
		judgehttp.AssignJudgeRequest{Judge: judgehttp.JudgeDTO{Kind: "human", UserID: 11}}, nil)
	h.expect(http.StatusCreated, http.MethodPost, contestPath+"/judges", creator,
		judgehttp.AssignJudgeRequest{Judge: judgehttp.JudgeDTO{Kind: "ai", AgentID: 21, Model: "gpt-4o"}}, nil)

	var detail contesthttp.ContestDetailResponse
	h.expect(http.StatusOK, http.MethodGet, contestPath, nil, nil, &detail)
	if detail.ParticipantCount != 3 || detail.TextCount != 3 {
		t.Fatalf("expected 3 participants and 3 texts, got %+v", detail)
	}

	h.expect(http.StatusOK, http.MethodPost, contestPath+"/transitions", creator,
		contesthttp.TransitionRequest{Status: "evaluation"}, nil)
	h.expect(http.StatusForbidden, http.MethodGet, contestPath+"/ranking", nil, nil, nil)

	place := func(n int) *int { return &n }
	var first votinghttp.CastVoteSetResponse
	h.expect(http.StatusOK, http.MethodPost, contestPath+"/votes", judge, votinghttp.CastVoteSetRequest{
		Entries: []votinghttp.VoteEntryDTO{
			{SubmissionID: submissionIDs[0], Place: place(1)},
			{SubmissionID: submissionIDs[1], Place: place(2)},
			{SubmissionID: submissionIDs[2], Place: place(3)},
		},
	}, &first)
	if first.ContestClosed {
		t.Fatalf("contest closed before every judge voted")
	}

	// A human token cannot vote on behalf of an agent.
	h.expect(http.StatusForbidden, http.MethodPost, contestPath+"/votes", judge, votinghttp.CastVoteSetRequest{
		Judge:   &votinghttp.JudgeDTO{Kind: "ai", AgentID: 21, Model: "gpt-4o"},
		Entries: []votinghttp.VoteEntryDTO{{SubmissionID: submissionIDs[0], Place: place(1)}},
	}, nil)

	var last votinghttp.CastVoteSetResponse
	h.expect(http.StatusOK, http.MethodPost, contestPath+"/votes", executor, votinghttp.CastVoteSetRequest{
		Judge: &votinghttp.JudgeDTO{Kind: "ai", AgentID: 21, Model: "gpt-4o"},
		Entries: []votinghttp.VoteEntryDTO{
			{SubmissionID: submissionIDs[1], Place: place(1)},
			{SubmissionID: submissionIDs[0], Place: place(2)},
			{SubmissionID: submissionIDs[2], Place: place(3)},
		},
	}, &last)
	if !last.ContestClosed {
		t.Fatalf("expected the final vote set to close the contest")
	}

	h.expect(http.StatusOK, http.MethodGet, contestPath, nil, nil, &detail)
	if detail.Contest.Status != "closed" {
		t.Fatalf("expected closed contest, got %s", detail.Contest.Status)
	}

	if err := h.rt.Modules.Registry.OutboxRelay.RunOnce(ctx); err != nil {
		t.Fatalf("relay status events: %v", err)
	}
	waitFor(t, "frozen ranking", func() bool {
		_, found, err := h.rt.Modules.Voting.Store.GetFinalRanking(ctx, created.Contest.ContestID)
		return err == nil && found
	})

	var ranking votinghttp.RankingResponse
	h.expect(http.StatusOK, http.MethodGet, contestPath+"/ranking", nil, nil, &ranking)
	if !ranking.Final || ranking.Masked {
		t.Fatalf("expected a final unmasked ranking, got %+v", ranking)
	}
	wantPoints := []int{5, 5, 2}
	wantRanks := []int{1, 1, 3}
	if len(ranking.Entries) != len(wantPoints) {
		t.Fatalf("expected %d ranking entries, got %d", len(wantPoints), len(ranking.Entries))
	}
	for i, entry := range ranking.Entries {
		if entry.Points != wantPoints[i] || entry.Rank != wantRanks[i] {
			t.Fatalf("entry %d: expected rank %d with %d points, got %+v", i, wantRanks[i], wantPoints[i], entry)
		}
		if entry.AuthorID == nil {
			t.Fatalf("entry %d: expected author revealed after closure", i)
		}
	}

	var history contesthttp.ListHistoryResponse
	h.expect(http.StatusOK, http.MethodGet, contestPath+"/history", creator, nil, &history)
	if len(history.Items) != 2 || history.Items[1].ToStatus != "closed" {
		t.Fatalf("expected open->evaluation->closed history, got %+v", history.Items)
	}

	h.expect(http.StatusNoContent, http.MethodDelete, contestPath, creator, nil, nil)
	h.expect(http.StatusNotFound, http.MethodGet, contestPath, nil, nil, nil)
	if err := h.rt.Modules.Registry.OutboxRelay.RunOnce(ctx); err != nil {
		t.Fatalf("relay delete event: %v", err)
	}
	waitFor(t, "contest purge", func() bool {
		votes, err := h.rt.Modules.Voting.Store.ListVotes(ctx, created.Contest.ContestID)
		if err != nil || len(votes) != 0 {
			return false
		}
		submissions, err := h.rt.Modules.Submissions.Store.ListByContest(ctx, created.Contest.ContestID)
		if err != nil || len(submissions) != 0 {
			return false
		}
		judges, err := h.rt.Modules.Judges.Store.ListAssignments(ctx, created.Contest.ContestID)
		return err == nil && len(judges) == 0
	})

	// Texts outlive the contest.
	if _, err := h.rt.Modules.Submissions.Store.GetText(ctx, 1); err != nil {
		t.Fatalf("expected text to survive contest deletion: %v", err)
	}
}

func TestOperatorRoutesOverHTTP(t *testing.T) {
	h := newHarness(t)
	author := &httpserver.Identity{UserID: 101}

	h.expect(http.StatusUnauthorized, http.MethodPost, "/internal/contests/sweep", nil, nil, nil)
	h.expect(http.StatusForbidden, http.MethodPost, "/internal/contests/sweep", author, nil, nil)

	var sweep contesthttp.SweepResponse
	h.expect(http.StatusOK, http.MethodPost, "/internal/contests/sweep", &httpserver.Identity{UserID: 1, Privileged: true}, nil, &sweep)
	if sweep.MovedCount != 0 {
		t.Fatalf("expected nothing to sweep, got %d", sweep.MovedCount)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to be served, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("http_requests_total")) {
		t.Fatalf("expected request metrics to be exported")
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9090": ":9090", ":7070": ":7070", " 8081 ": ":8081"}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTransitionWaitsForInFlightSubmit(t *testing.T) {
	h := newHarness(t)
	creator := &httpserver.Identity{UserID: 10}
	var created contesthttp.ContestResponse
	h.expect(http.StatusCreated, http.MethodPost, "/contests", creator, contesthttp.CreateContestRequest{
		Title:    "Night Letters",
		IsPublic: true,
	}, &created)
	contestID := created.Contest.ContestID
	contestPath := "/contests/" + strconv.FormatInt(contestID, 10)
	h.rt.Modules.Submissions.Store.SetText(submissionentities.Text{TextID: 7, OwnerID: 107, AuthorID: 107, Title: "Lamps", Content: "Dusk."})

	submit := h.rt.Modules.Submissions.Handler.Submit
	held := make(chan struct{})
	release := make(chan struct{})
	submitted := make(chan error, 1)
	go func() {
		submitted <- submit.Locker.WithContestLock(context.Background(), contestID, func(ctx context.Context) error {
			close(held)
			<-release
			_, err := submit.Execute(ctx, submissioncommands.SubmitCommand{
				ContestID: contestID,
				TextID:    7,
				Actor:     submissionentities.Actor{UserID: 107},
			})
			return err
		})
	}()
	<-held

	moved := make(chan int, 1)
	go func() {
		moved <- h.do(http.MethodPost, contestPath+"/transitions", creator,
			contesthttp.TransitionRequest{Status: "evaluation"}, nil)
	}()
	select {
	case code := <-moved:
		t.Fatalf("transition finished during an in-flight submit with %d", code)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-submitted; err != nil {
		t.Fatalf("submit under the held lock failed: %v", err)
	}
	if code := <-moved; code != http.StatusOK {
		t.Fatalf("expected transition to apply after the submit, got %d", code)
	}

	// Once in evaluation, new submissions are refused.
	h.rt.Modules.Submissions.Store.SetText(submissionentities.Text{TextID: 8, OwnerID: 108, AuthorID: 108, Title: "Late", Content: "Too late."})
	h.expect(http.StatusConflict, http.MethodPost, contestPath+"/submissions",
		&httpserver.Identity{UserID: 108}, submissionhttp.SubmitRequest{TextID: 8}, nil)
}
