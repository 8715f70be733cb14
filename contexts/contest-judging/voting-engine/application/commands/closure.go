package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/voting-engine/application"
	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

const (
	TriggerVote     = "vote"
	TriggerReassess = "reassess"
	TriggerForced   = "forced"
)

// Closer checks the closure condition and freezes rankings. Every method
// expects the caller to hold the contest lock.
type Closer struct {
	Votes       ports.VoteRepository
	Rankings    ports.RankingRepository
	Cache       ports.RankingCache
	Contests    ports.ContestDirectory
	Submissions ports.SubmissionDirectory
	Judges      ports.JudgeDirectory
	Metrics     ports.Metrics
	Clock       ports.Clock
	Logger      *slog.Logger
}

// CloseIfComplete closes a contest in evaluation once every assigned judge
// voted. The status change is a compare-and-set, so two callers that both see
// the condition close the contest once.
func (c Closer) CloseIfComplete(ctx context.Context, contest ports.ContestProjection, trigger string) (bool, error) {
	if contest.Status != entities.ContestStatusEvaluation {
		return false, nil
	}
	assigned, err := c.Judges.ListAssignedKeys(ctx, contest.ContestID)
	if err != nil {
		return false, err
	}
	voters, err := c.Votes.ListVoters(ctx, contest.ContestID)
	if err != nil {
		return false, err
	}
	voted := make(map[string]struct{}, len(voters))
	for _, key := range voters {
		voted[key] = struct{}{}
	}
	if !entities.ClosureReached(assigned, voted, contest.MinVotesRequired) {
		return false, nil
	}

	changed, err := c.Contests.CloseContest(ctx, contest.ContestID)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	if _, err := c.Freeze(ctx, contest.ContestID); err != nil {
		return false, err
	}

	application.ResolveMetrics(c.Metrics).ContestClosed(trigger)
	application.ResolveLogger(c.Logger).Info("contest closed after judging",
		"event", "contest_judging_closed",
		"module", "contest-judging/voting-engine",
		"layer", "application",
		"contest_id", contest.ContestID,
		"trigger", trigger,
		"judge_count", len(assigned),
	)
	return true, nil
}

// Freeze stores the ranking computed from the current votes.
func (c Closer) Freeze(ctx context.Context, contestID int64) (entities.FinalRanking, error) {
	votes, err := c.Votes.ListVotes(ctx, contestID)
	if err != nil {
		return entities.FinalRanking{}, err
	}
	standings, err := LiveStandings(ctx, c.Submissions, contestID, votes)
	if err != nil {
		return entities.FinalRanking{}, err
	}
	ranking := entities.FinalRanking{
		ContestID: contestID,
		Standings: standings,
		FrozenAt:  c.Clock.Now().UTC(),
	}
	if err := c.Rankings.SaveFinalRanking(ctx, ranking); err != nil {
		return entities.FinalRanking{}, err
	}
	c.invalidate(ctx, contestID)
	return ranking, nil
}

// Unfreeze drops a frozen ranking after an operator reopened the contest.
func (c Closer) Unfreeze(ctx context.Context, contestID int64) error {
	if err := c.Rankings.DeleteFinalRanking(ctx, contestID); err != nil {
		return err
	}
	c.invalidate(ctx, contestID)
	return nil
}

func (c Closer) invalidate(ctx context.Context, contestID int64) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.Delete(ctx, contestID); err != nil {
		application.ResolveLogger(c.Logger).Warn("ranking cache invalidation failed",
			"event", "contest_ranking_cache_invalidate_failed",
			"module", "contest-judging/voting-engine",
			"layer", "application",
			"contest_id", contestID,
			"error", err.Error(),
		)
	}
}

// LiveStandings ranks the active submissions of a contest.
func LiveStandings(
	ctx context.Context,
	submissions ports.SubmissionDirectory,
	contestID int64,
	votes []entities.Vote,
) ([]entities.Standing, error) {
	refs, err := submissions.ListSubmissions(ctx, contestID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		if ref.Active {
			ids = append(ids, ref.SubmissionID)
		}
	}
	return entities.Aggregate(ids, votes), nil
}
