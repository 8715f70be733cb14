package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/judge-registry/application"
	"inkwell/contexts/contest-judging/judge-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	"inkwell/contexts/contest-judging/judge-registry/ports"
)

type UnassignJudgeCommand struct {
	ContestID int64
	Judge     entities.JudgeIdentity
	Actor     entities.Actor
}

type UnassignJudgeResult struct {
	// VoteSetDropped is set when an operator removed a judge that had voted.
	VoteSetDropped bool
}

type UnassignJudgeUseCase struct {
	Assignments ports.AssignmentRepository
	Contests    ports.ContestDirectory
	Votes       ports.VoteLedger
	Closure     ports.ClosureTrigger
	Locker      ports.ContestLocker
	Logger      *slog.Logger
}

// Execute removes an assignment. Once the contest lock is released a contest
// in evaluation gets its closure check re-run, because the removed judge may
// have been the last one missing.
func (uc UnassignJudgeUseCase) Execute(ctx context.Context, cmd UnassignJudgeCommand) (UnassignJudgeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Judge.Valid() {
		return UnassignJudgeResult{}, domainerrors.ErrInvalidJudge
	}
	key := cmd.Judge.Key()

	var (
		result UnassignJudgeResult
		status entities.ContestStatus
	)
	err := uc.Locker.WithContestLock(ctx, cmd.ContestID, func(ctx context.Context) error {
		contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
		if err != nil {
			return err
		}
		if !canManage(cmd.Actor, contest) {
			return domainerrors.ErrForbidden
		}
		assigned, err := uc.Assignments.IsAssigned(ctx, contest.ContestID, key)
		if err != nil {
			return err
		}
		if !assigned {
			return domainerrors.ErrJudgeNotFound
		}
		voted, err := uc.Votes.HasVoteSet(ctx, contest.ContestID, key)
		if err != nil {
			return err
		}
		if voted && !cmd.Actor.Privileged {
			return domainerrors.ErrJudgeAlreadyVoted
		}
		if err := uc.Assignments.DeleteAssignment(ctx, contest.ContestID, key); err != nil {
			return err
		}
		if voted {
			if err := uc.Votes.DropVoteSet(ctx, contest.ContestID, key); err != nil {
				return err
			}
			result.VoteSetDropped = true
		}
		status = contest.Status
		return nil
	})
	if err != nil {
		return UnassignJudgeResult{}, err
	}

	logger.Info("judge unassigned",
		"event", "contest_judge_unassigned",
		"module", "contest-judging/judge-registry",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"judge_key", key,
		"vote_set_dropped", result.VoteSetDropped,
		"actor_id", cmd.Actor.UserID,
	)

	if status == entities.ContestStatusEvaluation && uc.Closure != nil {
		if err := uc.Closure.EvaluateClosure(ctx, cmd.ContestID); err != nil {
			logger.Warn("closure re-evaluation after unassign failed",
				"event", "contest_judge_unassign_closure_failed",
				"module", "contest-judging/judge-registry",
				"layer", "application",
				"contest_id", cmd.ContestID,
				"error", err.Error(),
			)
		}
	}
	return result, nil
}
