package commands

import (
	"context"
	"errors"
	"log/slog"

	application "inkwell/contexts/contest-judging/submission-manager/application"
	domainerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	"inkwell/contexts/contest-judging/submission-manager/ports"
)

type TextDeletedResult struct {
	Deleted    int
	Tombstoned int
}

// HandleTextDeletedUseCase resolves every submission of a removed text with
// the same rule a withdrawal uses, contest by contest.
type HandleTextDeletedUseCase struct {
	Submissions ports.SubmissionRepository
	Contests    ports.ContestDirectory
	Locker      ports.ContestLocker
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (uc HandleTextDeletedUseCase) Execute(ctx context.Context, textID int64) (TextDeletedResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	items, err := uc.Submissions.ListByText(ctx, textID)
	if err != nil {
		return TextDeletedResult{}, err
	}

	result := TextDeletedResult{}
	for _, item := range items {
		err := uc.Locker.WithContestLock(ctx, item.ContestID, func(ctx context.Context) error {
			contest, err := uc.Contests.GetContest(ctx, item.ContestID)
			if err != nil {
				return err
			}
			current, err := uc.Submissions.GetSubmission(ctx, item.SubmissionID)
			if err != nil {
				return err
			}
			outcome, err := resolveWithdrawal(ctx, uc.Submissions, contest, current, uc.Clock.Now())
			if err != nil {
				return err
			}
			switch outcome {
			case WithdrawDeleted:
				result.Deleted++
			case WithdrawTombstoned:
				result.Tombstoned++
			}
			return nil
		})
		if errors.Is(err, domainerrors.ErrContestNotFound) || errors.Is(err, domainerrors.ErrSubmissionNotFound) {
			continue
		}
		if err != nil {
			logger.Error("text deletion resolution failed",
				"event", "contest_text_deleted_failed",
				"module", "contest-judging/submission-manager",
				"layer", "application",
				"text_id", textID,
				"contest_id", item.ContestID,
				"submission_id", item.SubmissionID,
				"error", err.Error(),
			)
			return result, err
		}
	}

	logger.Info("text deletion resolved",
		"event", "contest_text_deleted_resolved",
		"module", "contest-judging/submission-manager",
		"layer", "application",
		"text_id", textID,
		"deleted_count", result.Deleted,
		"tombstoned_count", result.Tombstoned,
	)
	return result, nil
}
