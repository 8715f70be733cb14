package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/voting-engine/application"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

// DropVoteSetUseCase removes one judge's votes when an operator unassigns a
// judge that already voted. It joins the caller's contest lock.
type DropVoteSetUseCase struct {
	Votes  ports.VoteRepository
	Locker ports.ContestLocker
	Logger *slog.Logger
}

func (uc DropVoteSetUseCase) Execute(ctx context.Context, contestID int64, judgeKey string) error {
	return uc.Locker.WithContestLock(ctx, contestID, func(ctx context.Context) error {
		removed, err := uc.Votes.DeleteVoteSet(ctx, contestID, judgeKey)
		if err != nil {
			return err
		}
		application.ResolveLogger(uc.Logger).Info("vote set dropped",
			"event", "contest_vote_set_dropped",
			"module", "contest-judging/voting-engine",
			"layer", "application",
			"contest_id", contestID,
			"judge_key", judgeKey,
			"removed_count", removed,
		)
		return nil
	})
}
