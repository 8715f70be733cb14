package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/submission-manager/application"
	"inkwell/contexts/contest-judging/submission-manager/ports"
)

type PurgeContestUseCase struct {
	Submissions ports.SubmissionRepository
	Logger      *slog.Logger
}

func (uc PurgeContestUseCase) Execute(ctx context.Context, contestID int64) error {
	removed, err := uc.Submissions.DeleteByContest(ctx, contestID)
	if err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("contest submissions purged",
		"event", "contest_submissions_purged",
		"module", "contest-judging/submission-manager",
		"layer", "application",
		"contest_id", contestID,
		"removed_count", removed,
	)
	return nil
}
