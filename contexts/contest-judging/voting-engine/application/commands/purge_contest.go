package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/voting-engine/application"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

type PurgeContestUseCase struct {
	Votes  ports.VoteRepository
	Closer Closer
	Logger *slog.Logger
}

func (uc PurgeContestUseCase) Execute(ctx context.Context, contestID int64) error {
	removed, err := uc.Votes.DeleteByContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := uc.Closer.Unfreeze(ctx, contestID); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("contest votes purged",
		"event", "contest_votes_purged",
		"module", "contest-judging/voting-engine",
		"layer", "application",
		"contest_id", contestID,
		"removed_count", removed,
	)
	return nil
}
