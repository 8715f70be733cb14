package commands

import (
	"context"
	"log/slog"
	"time"

	application "inkwell/contexts/contest-judging/submission-manager/application"
	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	"inkwell/contexts/contest-judging/submission-manager/ports"
)

type WithdrawCommand struct {
	ContestID    int64
	SubmissionID int64
	Actor        entities.Actor
}

type WithdrawOutcome string

const (
	WithdrawDeleted    WithdrawOutcome = "deleted"
	WithdrawTombstoned WithdrawOutcome = "tombstoned"
	// WithdrawUnchanged is a repeated withdrawal of a tombstoned submission.
	WithdrawUnchanged WithdrawOutcome = "unchanged"
)

type WithdrawUseCase struct {
	Submissions ports.SubmissionRepository
	Contests    ports.ContestDirectory
	Locker      ports.ContestLocker
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (uc WithdrawUseCase) Execute(ctx context.Context, cmd WithdrawCommand) (WithdrawOutcome, error) {
	logger := application.ResolveLogger(uc.Logger)
	var outcome WithdrawOutcome
	err := uc.Locker.WithContestLock(ctx, cmd.ContestID, func(ctx context.Context) error {
		contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
		if err != nil {
			return err
		}
		submission, err := uc.Submissions.GetSubmission(ctx, cmd.SubmissionID)
		if err != nil {
			return err
		}
		if submission.ContestID != contest.ContestID {
			return domainerrors.ErrSubmissionNotFound
		}
		if !cmd.Actor.Privileged && !cmd.Actor.Owns(submission) {
			return domainerrors.ErrForbidden
		}
		outcome, err = resolveWithdrawal(ctx, uc.Submissions, contest, submission, uc.Clock.Now())
		return err
	})
	if err != nil {
		return "", err
	}

	logger.Info("submission withdrawn",
		"event", "contest_submission_withdrawn",
		"module", "contest-judging/submission-manager",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"submission_id", cmd.SubmissionID,
		"outcome", string(outcome),
		"actor_id", cmd.Actor.UserID,
	)
	return outcome, nil
}

// resolveWithdrawal deletes the link while the contest is open. Afterwards
// the submission is tombstoned so votes already cast stay intact.
func resolveWithdrawal(
	ctx context.Context,
	submissions ports.SubmissionRepository,
	contest ports.ContestProjection,
	submission entities.Submission,
	now time.Time,
) (WithdrawOutcome, error) {
	if contest.Status == entities.ContestStatusOpen {
		if err := submissions.DeleteSubmission(ctx, submission.SubmissionID); err != nil {
			return "", err
		}
		return WithdrawDeleted, nil
	}
	if submission.Tombstoned {
		return WithdrawUnchanged, nil
	}
	if err := submissions.TombstoneSubmission(ctx, submission.SubmissionID, now.UTC()); err != nil {
		return "", err
	}
	return WithdrawTombstoned, nil
}
