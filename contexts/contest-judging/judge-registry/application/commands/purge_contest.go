package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/judge-registry/application"
	"inkwell/contexts/contest-judging/judge-registry/ports"
)

type PurgeContestUseCase struct {
	Assignments ports.AssignmentRepository
	Logger      *slog.Logger
}

func (uc PurgeContestUseCase) Execute(ctx context.Context, contestID int64) error {
	removed, err := uc.Assignments.DeleteByContest(ctx, contestID)
	if err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("contest judges purged",
		"event", "contest_judges_purged",
		"module", "contest-judging/judge-registry",
		"layer", "application",
		"contest_id", contestID,
		"removed_count", removed,
	)
	return nil
}
