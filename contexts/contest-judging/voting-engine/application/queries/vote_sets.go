package queries

import (
	"context"
	"log/slog"

	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

type VoteSetQuery struct {
	ContestID int64
	Judge     entities.JudgeIdentity
	Actor     entities.Actor
}

// GetVoteSetUseCase returns a judge's current vote set to that judge, to the
// AI executor for AI judges, and to operators.
type GetVoteSetUseCase struct {
	Votes    ports.VoteRepository
	Contests ports.ContestDirectory
	Logger   *slog.Logger
}

func (uc GetVoteSetUseCase) Execute(ctx context.Context, query VoteSetQuery) ([]entities.Vote, error) {
	if !query.Judge.Valid() {
		return nil, domainerrors.ErrInvalidJudge
	}
	if !canReadVoteSet(query.Actor, query.Judge) {
		return nil, domainerrors.ErrForbidden
	}
	if _, err := uc.Contests.GetContest(ctx, query.ContestID); err != nil {
		return nil, err
	}
	votes, err := uc.Votes.ListVoteSet(ctx, query.ContestID, query.Judge.Key())
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		voted, err := uc.Votes.HasVoteSet(ctx, query.ContestID, query.Judge.Key())
		if err != nil {
			return nil, err
		}
		if !voted {
			return nil, domainerrors.ErrVoteSetNotFound
		}
	}
	return votes, nil
}

func canReadVoteSet(actor entities.Actor, judge entities.JudgeIdentity) bool {
	if actor.Privileged {
		return true
	}
	if judge.Kind == entities.JudgeKindAI {
		return actor.AIExecutor
	}
	return actor.UserID != 0 && actor.UserID == judge.UserID
}

// VoteLedgerUseCase answers the judge registry's vote set lookups.
type VoteLedgerUseCase struct {
	Votes ports.VoteRepository
}

func (uc VoteLedgerUseCase) HasVoteSet(ctx context.Context, contestID int64, judgeKey string) (bool, error) {
	return uc.Votes.HasVoteSet(ctx, contestID, judgeKey)
}
