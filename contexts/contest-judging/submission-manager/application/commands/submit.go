package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/submission-manager/application"
	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	"inkwell/contexts/contest-judging/submission-manager/ports"
)

type SubmitCommand struct {
	ContestID int64
	TextID    int64
	Actor     entities.Actor
}

type SubmitUseCase struct {
	Submissions ports.SubmissionRepository
	Contests    ports.ContestDirectory
	Judges      ports.JudgeDirectory
	Texts       ports.TextCatalog
	Locker      ports.ContestLocker
	Clock       ports.Clock
	Logger      *slog.Logger
}

// Execute links a text to a contest. Checks run in a fixed order so callers
// always see the first failing rule; operators skip ownership, status and
// contest restriction checks but never the uniqueness of (contest, text).
func (uc SubmitUseCase) Execute(ctx context.Context, cmd SubmitCommand) (entities.Submission, error) {
	logger := application.ResolveLogger(uc.Logger)
	var created entities.Submission
	err := uc.Locker.WithContestLock(ctx, cmd.ContestID, func(ctx context.Context) error {
		contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
		if err != nil {
			return err
		}
		text, err := uc.Texts.GetText(ctx, cmd.TextID)
		if err != nil {
			return err
		}
		privileged := cmd.Actor.Privileged
		if !privileged && (cmd.Actor.UserID == 0 || text.OwnerID != cmd.Actor.UserID) {
			return domainerrors.ErrForbidden
		}
		if !privileged && contest.Status != entities.ContestStatusOpen {
			return domainerrors.ErrContestNotOpen
		}
		if _, found, err := uc.Submissions.FindByContestAndText(ctx, contest.ContestID, text.TextID); err != nil {
			return err
		} else if found {
			return domainerrors.ErrDuplicateSubmission
		}
		if !privileged && contest.OneSubmissionPerAuthor {
			count, err := uc.Submissions.CountActiveByAuthor(ctx, contest.ContestID, text.AuthorID)
			if err != nil {
				return err
			}
			if count > 0 {
				return domainerrors.ErrAuthorLimitExceeded
			}
		}
		if !privileged && contest.JudgesExcludedAsAuthors {
			for _, userID := range distinctIDs(cmd.Actor.UserID, text.AuthorID) {
				assigned, err := uc.Judges.IsUserAssigned(ctx, contest.ContestID, userID)
				if err != nil {
					return err
				}
				if assigned {
					return domainerrors.ErrJudgeCannotAuthor
				}
			}
		}

		created, err = uc.Submissions.CreateSubmission(ctx, entities.Submission{
			ContestID:   contest.ContestID,
			TextID:      text.TextID,
			OwnerID:     text.OwnerID,
			AuthorID:    text.AuthorID,
			SubmittedAt: uc.Clock.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return entities.Submission{}, err
	}

	logger.Info("text submitted to contest",
		"event", "contest_submission_created",
		"module", "contest-judging/submission-manager",
		"layer", "application",
		"contest_id", created.ContestID,
		"submission_id", created.SubmissionID,
		"text_id", created.TextID,
		"actor_id", cmd.Actor.UserID,
	)
	return created, nil
}

func distinctIDs(a, b int64) []int64 {
	if a == b {
		return []int64{a}
	}
	return []int64{a, b}
}
