package commands

import (
	"context"
	"log/slog"
	"strings"

	application "inkwell/contexts/contest-judging/voting-engine/application"
	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

type CastVoteSetCommand struct {
	ContestID   int64
	Judge       entities.JudgeIdentity
	Entries     []entities.VoteEntry
	BaseVersion string
}

type CastVoteSetResult struct {
	Votes    []entities.Vote
	Replaced bool
	Closed   bool
}

type CastVoteSetUseCase struct {
	Votes       ports.VoteRepository
	Contests    ports.ContestDirectory
	Submissions ports.SubmissionDirectory
	Judges      ports.JudgeDirectory
	Closer      Closer
	Locker      ports.ContestLocker
	Metrics     ports.Metrics
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Execute replaces the judge's vote set and closes the contest when this was
// the last missing vote. Everything after the shape check runs under the
// contest lock, in one transaction when the store supports it.
func (uc CastVoteSetUseCase) Execute(ctx context.Context, cmd CastVoteSetCommand) (CastVoteSetResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Judge.Valid() {
		return CastVoteSetResult{}, domainerrors.ErrInvalidJudge
	}
	if !entities.WellFormed(cmd.Entries) {
		return CastVoteSetResult{}, domainerrors.ErrInvalidVoteSet
	}
	judgeKey := cmd.Judge.Key()
	baseVersion := strings.TrimSpace(cmd.BaseVersion)
	if cmd.Judge.Kind == entities.JudgeKindHuman {
		baseVersion = ""
	}

	var result CastVoteSetResult
	err := uc.Locker.WithContestLock(ctx, cmd.ContestID, func(ctx context.Context) error {
		contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
		if err != nil {
			return err
		}
		if contest.Status != entities.ContestStatusEvaluation {
			return domainerrors.ErrContestNotInEvaluation
		}
		assigned, err := uc.Judges.IsAssigned(ctx, contest.ContestID, cmd.Judge)
		if err != nil {
			return err
		}
		if !assigned {
			return domainerrors.ErrNotAssignedJudge
		}
		refs, err := uc.Submissions.ListSubmissions(ctx, contest.ContestID)
		if err != nil {
			return err
		}
		if err := checkReferences(cmd.Entries, refs); err != nil {
			return err
		}

		replaced, err := uc.Votes.HasVoteSet(ctx, contest.ContestID, judgeKey)
		if err != nil {
			return err
		}
		castAt := uc.Clock.Now().UTC()
		votes := make([]entities.Vote, 0, len(cmd.Entries))
		for _, entry := range cmd.Entries {
			voteID, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return err
			}
			votes = append(votes, entities.Vote{
				VoteID:       voteID,
				ContestID:    contest.ContestID,
				SubmissionID: entry.SubmissionID,
				Judge:        cmd.Judge,
				Place:        entry.Place,
				Comment:      strings.TrimSpace(entry.Comment),
				BaseVersion:  baseVersion,
				CastAt:       castAt,
			})
		}
		if err := uc.Votes.ReplaceVoteSet(ctx, contest.ContestID, judgeKey, castAt, votes); err != nil {
			return err
		}

		closed, err := uc.Closer.CloseIfComplete(ctx, contest, TriggerVote)
		if err != nil {
			return err
		}
		result = CastVoteSetResult{Votes: votes, Replaced: replaced, Closed: closed}
		return nil
	})
	if err != nil {
		return CastVoteSetResult{}, err
	}

	application.ResolveMetrics(uc.Metrics).VoteSetCast(string(cmd.Judge.Kind), result.Replaced)
	logger.Info("vote set cast",
		"event", "contest_vote_set_cast",
		"module", "contest-judging/voting-engine",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"judge_key", judgeKey,
		"judge_kind", string(cmd.Judge.Kind),
		"entry_count", len(result.Votes),
		"replaced", result.Replaced,
		"closed", result.Closed,
	)
	return result, nil
}

// checkReferences rejects unknown submissions and places on withdrawn ones,
// then applies the min(3, N) placement rule over active submissions.
func checkReferences(entries []entities.VoteEntry, refs []ports.SubmissionRef) error {
	byID := make(map[int64]ports.SubmissionRef, len(refs))
	active := 0
	for _, ref := range refs {
		byID[ref.SubmissionID] = ref
		if ref.Active {
			active++
		}
	}
	for _, entry := range entries {
		ref, ok := byID[entry.SubmissionID]
		if !ok || (entry.Place != nil && !ref.Active) {
			return domainerrors.ErrUnknownSubmission
		}
	}
	if !entities.PlacementComplete(entries, active) {
		return domainerrors.ErrIncompletePlacement
	}
	return nil
}
