package votingengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	votingengine "inkwell/contexts/contest-judging/voting-engine"
	"inkwell/contexts/contest-judging/voting-engine/application/commands"
	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	"inkwell/contexts/contest-judging/voting-engine/ports"
	httptransport "inkwell/contexts/contest-judging/voting-engine/transport/http"
	contractsv1 "inkwell/contracts/events/v1"
	"inkwell/internal/platform/messaging"
)

const (
	contestID = int64(1)
	creatorID = int64(10)
	humanID   = int64(11)
	agentID   = int64(21)
	model     = "gpt-4o"
)

var (
	human    = entities.Actor{UserID: humanID}
	executor = entities.Actor{UserID: 500, AIExecutor: true}
	creator  = entities.Actor{UserID: creatorID}
	stranger = entities.Actor{UserID: 99}
	operator = entities.Actor{UserID: 1, Privileged: true}
	aiJudge  = &httptransport.JudgeDTO{Kind: "ai", AgentID: agentID, Model: model}
)

type metricsRecorder struct {
	mu        sync.Mutex
	closures  map[string]int
	voteSets  int
	cacheHits int
}

func (m *metricsRecorder) VoteSetCast(string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voteSets++
}

func (m *metricsRecorder) ContestClosed(trigger string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closures == nil {
		m.closures = map[string]int{}
	}
	m.closures[trigger]++
}

func (m *metricsRecorder) RankingCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	}
}

func (m *metricsRecorder) closed(trigger string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closures[trigger]
}

type mapCache struct {
	mu    sync.Mutex
	items map[int64]entities.FinalRanking
}

func (c *mapCache) Get(_ context.Context, contestID int64) (entities.FinalRanking, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[contestID]
	return item, ok, nil
}

func (c *mapCache) Set(_ context.Context, ranking entities.FinalRanking) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[int64]entities.FinalRanking{}
	}
	c.items[ranking.ContestID] = ranking
	return nil
}

func (c *mapCache) Delete(_ context.Context, contestID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, contestID)
	return nil
}

type fixture struct {
	module  votingengine.Module
	metrics *metricsRecorder
	cache   *mapCache
}

func newFixture(t *testing.T, submissions int, minVotes *int, judgeKeys ...string) fixture {
	t.Helper()
	base := votingengine.NewInMemoryModule(nil)
	store := base.Store
	metrics := &metricsRecorder{}
	cache := &mapCache{}
	module := votingengine.NewModule(votingengine.Dependencies{
		Votes:       store,
		Rankings:    store,
		Cache:       cache,
		Contests:    store,
		Submissions: store,
		Judges:      store,
		Locker:      store,
		Metrics:     metrics,
		Clock:       store,
		IDGenerator: store,
	})
	module.Store = store

	store.SetContest(ports.ContestProjection{
		ContestID:        contestID,
		CreatorID:        creatorID,
		Status:           entities.ContestStatusEvaluation,
		MinVotesRequired: minVotes,
	}, true)
	refs := make([]ports.SubmissionRef, 0, submissions)
	for i := 1; i <= submissions; i++ {
		refs = append(refs, ports.SubmissionRef{
			SubmissionID:  int64(i),
			AnonymousCode: "TXT-0000000" + string(rune('0'+i)),
			OwnerID:       int64(100 + i),
			AuthorID:      int64(100 + i),
			Active:        true,
		})
	}
	store.SetSubmissions(contestID, refs)
	if len(judgeKeys) == 0 {
		judgeKeys = []string{entities.HumanJudge(humanID).Key(), entities.AIJudge(agentID, model).Key()}
	}
	store.SetJudges(contestID, judgeKeys...)
	return fixture{module: module, metrics: metrics, cache: cache}
}

func place(p int) *int { return &p }

func placements(order ...int64) []httptransport.VoteEntryDTO {
	out := make([]httptransport.VoteEntryDTO, 0, len(order))
	for i, submissionID := range order {
		out = append(out, httptransport.VoteEntryDTO{SubmissionID: submissionID, Place: place(i + 1)})
	}
	return out
}

func cast(f fixture, actor entities.Actor, judge *httptransport.JudgeDTO, entries []httptransport.VoteEntryDTO) (httptransport.CastVoteSetResponse, error) {
	return f.module.Handler.CastVoteSetHandler(context.Background(), actor, contestID, httptransport.CastVoteSetRequest{
		Judge:       judge,
		Entries:     entries,
		BaseVersion: "v1",
	})
}

func status(t *testing.T, f fixture) entities.ContestStatus {
	t.Helper()
	contest, err := f.module.Store.GetContest(context.Background(), contestID)
	if err != nil {
		t.Fatalf("get contest: %v", err)
	}
	return contest.Status
}

func TestThreeTextsTwoJudgesScenario(t *testing.T) {
	f := newFixture(t, 3, nil)

	first, err := cast(f, human, nil, placements(1, 2, 3))
	if err != nil {
		t.Fatalf("human vote failed: %v", err)
	}
	if first.ContestClosed || status(t, f) != entities.ContestStatusEvaluation {
		t.Fatalf("contest must stay in evaluation after the first judge")
	}

	second, err := cast(f, executor, aiJudge, placements(2, 1, 3))
	if err != nil {
		t.Fatalf("ai vote failed: %v", err)
	}
	if !second.ContestClosed || status(t, f) != entities.ContestStatusClosed {
		t.Fatalf("expected auto-close after the last judge, got %+v", second)
	}
	if second.Votes[0].BaseVersion != "v1" || second.JudgeKey != "agent:21:gpt-4o" {
		t.Fatalf("unexpected ai vote set %+v", second)
	}

	ranking, err := f.module.Handler.GetRankingHandler(context.Background(), stranger, contestID, "")
	if err != nil {
		t.Fatalf("ranking failed: %v", err)
	}
	if !ranking.Final || ranking.Masked || ranking.FrozenAt == "" || len(ranking.Entries) != 3 {
		t.Fatalf("unexpected final ranking %+v", ranking)
	}
	want := []struct {
		submissionID int64
		rank, points int
	}{{1, 1, 5}, {2, 1, 5}, {3, 3, 2}}
	for i, w := range want {
		got := ranking.Entries[i]
		if got.SubmissionID != w.submissionID || got.Rank != w.rank || got.Points != w.points {
			t.Fatalf("row %d: got %+v want %+v", i, got, w)
		}
		if got.AuthorID == nil || *got.AuthorID != 100+w.submissionID {
			t.Fatalf("row %d: expected identity after close, got %+v", i, got)
		}
	}
	if f.metrics.closed(commands.TriggerVote) != 1 {
		t.Fatalf("expected one closure, got %v", f.metrics.closures)
	}

	if _, err := f.module.Handler.GetRankingHandler(context.Background(), stranger, contestID, ""); err != nil {
		t.Fatalf("second ranking read failed: %v", err)
	}
	if f.metrics.cacheHits != 1 {
		t.Fatalf("expected second read to hit the cache, got %d hits", f.metrics.cacheHits)
	}

	if _, err := cast(f, human, nil, placements(3, 2, 1)); !errors.Is(err, domainerrors.ErrContestNotInEvaluation) {
		t.Fatalf("expected votes to be rejected after close, got %v", err)
	}
}

func TestCastVoteSetFailureModes(t *testing.T) {
	f := newFixture(t, 5, nil)

	if _, err := cast(f, human, nil, nil); !errors.Is(err, domainerrors.ErrIncompletePlacement) {
		t.Fatalf("expected empty set to miss the required places, got %v", err)
	}
	repeated := []httptransport.VoteEntryDTO{{SubmissionID: 1, Place: place(1)}, {SubmissionID: 2, Place: place(1)}}
	if _, err := cast(f, human, nil, repeated); !errors.Is(err, domainerrors.ErrInvalidVoteSet) {
		t.Fatalf("expected repeated place to be malformed, got %v", err)
	}
	if _, err := cast(f, human, nil, []httptransport.VoteEntryDTO{{SubmissionID: 1, Place: place(4)}}); !errors.Is(err, domainerrors.ErrInvalidVoteSet) {
		t.Fatalf("expected place 4 to be malformed, got %v", err)
	}
	if _, err := cast(f, stranger, nil, placements(1, 2, 3)); !errors.Is(err, domainerrors.ErrNotAssignedJudge) {
		t.Fatalf("expected not assigned judge, got %v", err)
	}
	if _, err := cast(f, human, nil, placements(1, 2, 42)); !errors.Is(err, domainerrors.ErrUnknownSubmission) {
		t.Fatalf("expected unknown submission, got %v", err)
	}
	if _, err := cast(f, human, nil, placements(1, 2)); !errors.Is(err, domainerrors.ErrIncompletePlacement) {
		t.Fatalf("expected incomplete placement with five submissions, got %v", err)
	}
	if _, err := cast(f, human, aiJudge, placements(1, 2, 3)); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ai vote from a plain user to be forbidden, got %v", err)
	}
	if _, err := f.module.Handler.CastVoteSetHandler(context.Background(), human, 404, httptransport.CastVoteSetRequest{Entries: placements(1, 2, 3)}); !errors.Is(err, domainerrors.ErrContestNotFound) {
		t.Fatalf("expected contest not found, got %v", err)
	}

	f.module.Store.SetContestStatus(contestID, entities.ContestStatusOpen)
	if _, err := cast(f, human, nil, placements(1, 2, 3)); !errors.Is(err, domainerrors.ErrContestNotInEvaluation) {
		t.Fatalf("expected not in evaluation, got %v", err)
	}
	votes, _ := f.module.Store.ListVotes(context.Background(), contestID)
	if len(votes) != 0 {
		t.Fatalf("failed casts must not store votes, got %d", len(votes))
	}
}

func TestPlacementFollowsActiveSubmissions(t *testing.T) {
	f := newFixture(t, 3, nil)
	f.module.Store.SetSubmissions(contestID, []ports.SubmissionRef{
		{SubmissionID: 1, Active: true},
		{SubmissionID: 2, Active: true},
		{SubmissionID: 3, Active: false},
	})

	if _, err := cast(f, human, nil, placements(1, 2, 3)); !errors.Is(err, domainerrors.ErrUnknownSubmission) {
		t.Fatalf("expected a place on a withdrawn submission to be rejected, got %v", err)
	}
	entries := append(placements(2, 1), httptransport.VoteEntryDTO{SubmissionID: 3, Comment: "withdrawn but memorable"})
	resp, err := cast(f, human, nil, entries)
	if err != nil {
		t.Fatalf("two active submissions need only places 1 and 2: %v", err)
	}
	if len(resp.Votes) != 3 {
		t.Fatalf("expected comment-only entry to be kept, got %+v", resp.Votes)
	}
}

func TestEmptyVoteSetsCloseContestWithoutSubmissions(t *testing.T) {
	f := newFixture(t, 0, nil)

	first, err := cast(f, human, nil, nil)
	if err != nil {
		t.Fatalf("empty vote set must be accepted without active submissions: %v", err)
	}
	if first.ContestClosed || len(first.Votes) != 0 {
		t.Fatalf("unexpected first vote set %+v", first)
	}
	set, err := f.module.Handler.GetVoteSetHandler(context.Background(), human, contestID, nil)
	if err != nil || len(set.Votes) != 0 {
		t.Fatalf("expected an empty recorded vote set, got %+v err=%v", set, err)
	}

	second, err := cast(f, executor, aiJudge, []httptransport.VoteEntryDTO{})
	if err != nil {
		t.Fatalf("empty ai vote set failed: %v", err)
	}
	if !second.ContestClosed || status(t, f) != entities.ContestStatusClosed {
		t.Fatalf("expected the last empty vote set to close the contest, got %+v", second)
	}
	ranking, err := f.module.Handler.GetRankingHandler(context.Background(), stranger, contestID, "")
	if err != nil || len(ranking.Entries) != 0 {
		t.Fatalf("expected an empty ranking, got %+v err=%v", ranking, err)
	}
}

func TestRevoteReplacesPreviousSet(t *testing.T) {
	f := newFixture(t, 4, nil)

	if _, err := cast(f, human, nil, placements(1, 2, 3)); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	resp, err := cast(f, human, nil, placements(4, 3, 2))
	if err != nil || !resp.Replaced {
		t.Fatalf("expected replacement, got %+v err=%v", resp, err)
	}

	set, err := f.module.Handler.GetVoteSetHandler(context.Background(), human, contestID, nil)
	if err != nil {
		t.Fatalf("read vote set failed: %v", err)
	}
	byPlace := map[int]int64{}
	for _, vote := range set.Votes {
		if vote.Place == nil {
			continue
		}
		if _, dup := byPlace[*vote.Place]; dup {
			t.Fatalf("place %d used twice after revote", *vote.Place)
		}
		byPlace[*vote.Place] = vote.SubmissionID
	}
	if len(set.Votes) != 3 || byPlace[1] != 4 || byPlace[2] != 3 || byPlace[3] != 2 {
		t.Fatalf("expected only the latest vote set, got %+v", set.Votes)
	}

	if _, err := f.module.Handler.GetVoteSetHandler(context.Background(), stranger, contestID, &httptransport.JudgeDTO{Kind: "human", UserID: humanID}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected other users to be denied, got %v", err)
	}
	if _, err := f.module.Handler.GetVoteSetHandler(context.Background(), executor, contestID, aiJudge); !errors.Is(err, domainerrors.ErrVoteSetNotFound) {
		t.Fatalf("expected missing ai vote set, got %v", err)
	}
}

func TestConcurrentFinalVotesCloseOnce(t *testing.T) {
	for round := 0; round < 20; round++ {
		keys := []string{"user:11", "user:12", "user:13", "user:14"}
		f := newFixture(t, 3, nil, keys...)

		var wg sync.WaitGroup
		errs := make(chan error, len(keys))
		for i := range keys {
			actor := entities.Actor{UserID: int64(11 + i)}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := cast(f, actor, nil, placements(1, 2, 3)); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("round %d: concurrent vote failed: %v", round, err)
		}
		if status(t, f) != entities.ContestStatusClosed {
			t.Fatalf("round %d: expected closed contest", round)
		}
		if got := f.metrics.closed(commands.TriggerVote); got != 1 {
			t.Fatalf("round %d: expected exactly one close, got %d", round, got)
		}
	}
}

func TestMinVotesRequiredBlocksClosure(t *testing.T) {
	three := 3
	f := newFixture(t, 2, &three)
	if _, err := cast(f, human, nil, placements(1, 2)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	resp, err := cast(f, executor, aiJudge, placements(2, 1))
	if err != nil || resp.ContestClosed {
		t.Fatalf("expected contest to stay open for a third judge, got %+v err=%v", resp, err)
	}
	closed, err := f.module.Handler.EvaluateClosure.Execute(context.Background(), contestID)
	if err != nil || closed {
		t.Fatalf("expected closure check to stay negative, got %v err=%v", closed, err)
	}
}

func TestUnassignedLastJudgeClosesOnReevaluation(t *testing.T) {
	f := newFixture(t, 2, nil)
	if _, err := cast(f, human, nil, placements(1, 2)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	f.module.Store.SetJudges(contestID, entities.HumanJudge(humanID).Key())

	resp, err := f.module.Handler.EvaluateClosureHandler(context.Background(), operator, contestID)
	if err != nil || !resp.Closed {
		t.Fatalf("expected close once the missing judge is gone, got %+v err=%v", resp, err)
	}
	if f.metrics.closed(commands.TriggerReassess) != 1 {
		t.Fatalf("expected reassess closure, got %v", f.metrics.closures)
	}
}

func TestLiveRankingDuringEvaluation(t *testing.T) {
	f := newFixture(t, 3, nil)
	if _, err := cast(f, human, nil, placements(3, 1, 2)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if _, err := f.module.Handler.GetRankingHandler(context.Background(), stranger, contestID, ""); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected stranger to be denied live totals, got %v", err)
	}
	live, err := f.module.Handler.GetRankingHandler(context.Background(), creator, contestID, "")
	if err != nil || live.Final || !live.Masked || live.Entries[0].SubmissionID != 3 || live.Entries[0].AuthorID != nil {
		t.Fatalf("expected masked live ranking for creator, got %+v err=%v", live, err)
	}
	if live.Entries[0].AnonymousCode == "" {
		t.Fatalf("expected anonymous code on masked rows")
	}
	opView, err := f.module.Handler.GetRankingHandler(context.Background(), operator, contestID, "")
	if err != nil || opView.Masked || opView.Entries[0].AuthorID == nil {
		t.Fatalf("expected operator to see identities, got %+v err=%v", opView, err)
	}

	f.module.Store.SetContestStatus(contestID, entities.ContestStatusOpen)
	if _, err := f.module.Handler.GetRankingHandler(context.Background(), operator, contestID, ""); !errors.Is(err, domainerrors.ErrRankingUnavailable) {
		t.Fatalf("expected ranking to be unavailable while open, got %v", err)
	}
}

func statusEvent(t *testing.T, from, to entities.ContestStatus) ports.EventEnvelope {
	t.Helper()
	event, err := messaging.NewEnvelope(contractsv1.TopicContestStatusChanged, "contest-registry", "contest_id", "1",
		contractsv1.ContestStatusChanged{ContestID: contestID, FromStatus: string(from), ToStatus: string(to), ChangedBy: 1, ChangedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	return event
}

func TestForcedCloseFreezesAndReopenDropsRanking(t *testing.T) {
	f := newFixture(t, 3, nil)
	if _, err := cast(f, human, nil, placements(1, 2, 3)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	f.module.Store.SetContestStatus(contestID, entities.ContestStatusClosed)
	if err := f.module.StatusChangedWorker.Handle(context.Background(), statusEvent(t, entities.ContestStatusEvaluation, entities.ContestStatusClosed)); err != nil {
		t.Fatalf("status change failed: %v", err)
	}
	frozen, ok, err := f.module.Store.GetFinalRanking(context.Background(), contestID)
	if err != nil || !ok || frozen.Standings[0].SubmissionID != 1 || frozen.Standings[0].Points != 3 {
		t.Fatalf("expected frozen ranking after forced close, got %+v ok=%v err=%v", frozen, ok, err)
	}
	if f.metrics.closed(commands.TriggerForced) != 1 {
		t.Fatalf("expected forced closure metric, got %v", f.metrics.closures)
	}

	if err := f.module.StatusChangedWorker.Handle(context.Background(), statusEvent(t, entities.ContestStatusEvaluation, entities.ContestStatusClosed)); err != nil {
		t.Fatalf("redelivered status change failed: %v", err)
	}
	if f.metrics.closed(commands.TriggerForced) != 1 {
		t.Fatalf("redelivery must not refreeze, got %v", f.metrics.closures)
	}

	f.module.Store.SetContestStatus(contestID, entities.ContestStatusEvaluation)
	if err := f.module.StatusChangedWorker.Handle(context.Background(), statusEvent(t, entities.ContestStatusClosed, entities.ContestStatusEvaluation)); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, ok, _ := f.module.Store.GetFinalRanking(context.Background(), contestID); ok {
		t.Fatalf("expected frozen ranking to be dropped after reopen")
	}
}

func TestContestDeletedPurgesVotes(t *testing.T) {
	f := newFixture(t, 3, nil)
	if _, err := cast(f, human, nil, placements(1, 2, 3)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	event, err := messaging.NewEnvelope(contractsv1.TopicContestDeleted, "contest-registry", "contest_id", "1",
		contractsv1.ContestDeleted{ContestID: contestID, DeletedBy: creatorID, DeletedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if err := f.module.ContestDeletedWorker.Handle(context.Background(), event); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if votes, _ := f.module.Store.ListVotes(context.Background(), contestID); len(votes) != 0 {
		t.Fatalf("expected votes to be purged, got %d", len(votes))
	}
}
