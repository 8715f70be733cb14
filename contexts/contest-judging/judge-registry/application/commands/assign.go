package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/judge-registry/application"
	"inkwell/contexts/contest-judging/judge-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	"inkwell/contexts/contest-judging/judge-registry/ports"
)

type AssignJudgeCommand struct {
	ContestID int64
	Judge     entities.JudgeIdentity
	Actor     entities.Actor
}

type AssignJudgeUseCase struct {
	Assignments ports.AssignmentRepository
	Contests    ports.ContestDirectory
	Locker      ports.ContestLocker
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (uc AssignJudgeUseCase) Execute(ctx context.Context, cmd AssignJudgeCommand) (entities.Assignment, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Judge.Valid() {
		return entities.Assignment{}, domainerrors.ErrInvalidJudge
	}

	var assignment entities.Assignment
	err := uc.Locker.WithContestLock(ctx, cmd.ContestID, func(ctx context.Context) error {
		contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
		if err != nil {
			return err
		}
		if !canManage(cmd.Actor, contest) {
			return domainerrors.ErrForbidden
		}
		assigned, err := uc.Assignments.IsAssigned(ctx, contest.ContestID, cmd.Judge.Key())
		if err != nil {
			return err
		}
		if assigned {
			return domainerrors.ErrJudgeAlreadyAssigned
		}
		assignment = entities.Assignment{
			ContestID:  contest.ContestID,
			Judge:      cmd.Judge,
			AssignedBy: cmd.Actor.UserID,
			AssignedAt: uc.Clock.Now().UTC(),
		}
		return uc.Assignments.CreateAssignment(ctx, assignment)
	})
	if err != nil {
		return entities.Assignment{}, err
	}

	logger.Info("judge assigned",
		"event", "contest_judge_assigned",
		"module", "contest-judging/judge-registry",
		"layer", "application",
		"contest_id", assignment.ContestID,
		"judge_key", assignment.Judge.Key(),
		"judge_kind", string(assignment.Judge.Kind),
		"actor_id", cmd.Actor.UserID,
	)
	return assignment, nil
}

func canManage(actor entities.Actor, contest ports.ContestProjection) bool {
	return actor.Privileged || (actor.UserID != 0 && actor.UserID == contest.CreatorID)
}
