package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/contest-registry/application"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
	contractsv1 "inkwell/contracts/events/v1"
)

type DeleteContestCommand struct {
	ContestID int64
	Actor     entities.Actor
}

// DeleteContestUseCase removes the contest and announces contest.deleted so
// submissions, judges and votes are purged. Texts are never touched.
type DeleteContestUseCase struct {
	Contests ports.ContestRepository
	Outbox   ports.OutboxWriter
	Tx       ports.Transactor
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc DeleteContestUseCase) Execute(ctx context.Context, cmd DeleteContestCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
	if err != nil {
		return err
	}
	if !cmd.Actor.CanManage(contest) {
		return domainerrors.ErrForbidden
	}

	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		now := uc.Clock.Now().UTC()
		if err := uc.Contests.DeleteContest(ctx, contest.ContestID); err != nil {
			return err
		}
		return appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.TopicContestDeleted, contest.ContestID, now,
			contractsv1.ContestDeleted{
				ContestID: contest.ContestID,
				DeletedBy: cmd.Actor.UserID,
				DeletedAt: now,
			})
	})
	if err != nil {
		return err
	}

	logger.Info("contest deleted",
		"event", "contest_deleted",
		"module", "contest-judging/contest-registry",
		"layer", "application",
		"contest_id", contest.ContestID,
		"actor_id", cmd.Actor.UserID,
	)
	return nil
}
