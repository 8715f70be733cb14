package queries

import (
	"context"
	"log/slog"

	"inkwell/contexts/contest-judging/judge-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	"inkwell/contexts/contest-judging/judge-registry/ports"
)

type ListJudgesQuery struct {
	ContestID int64
	Actor     entities.Actor
}

// ListJudgesUseCase returns the assignments of a contest to its creator or an
// operator.
type ListJudgesUseCase struct {
	Assignments ports.AssignmentRepository
	Contests    ports.ContestDirectory
	Logger      *slog.Logger
}

func (uc ListJudgesUseCase) Execute(ctx context.Context, query ListJudgesQuery) ([]entities.Assignment, error) {
	contest, err := uc.Contests.GetContest(ctx, query.ContestID)
	if err != nil {
		return nil, err
	}
	if !query.Actor.Privileged && (query.Actor.UserID == 0 || query.Actor.UserID != contest.CreatorID) {
		return nil, domainerrors.ErrForbidden
	}
	return uc.Assignments.ListAssignments(ctx, contest.ContestID)
}

// AssignmentsUseCase serves the internal membership reads of the other
// contest-judging services. None of them check the caller.
type AssignmentsUseCase struct {
	Assignments ports.AssignmentRepository
}

func (uc AssignmentsUseCase) IsAssigned(ctx context.Context, contestID int64, judge entities.JudgeIdentity) (bool, error) {
	if !judge.Valid() {
		return false, nil
	}
	return uc.Assignments.IsAssigned(ctx, contestID, judge.Key())
}

func (uc AssignmentsUseCase) IsUserAssigned(ctx context.Context, contestID int64, userID int64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return uc.Assignments.IsUserAssigned(ctx, contestID, userID)
}

func (uc AssignmentsUseCase) ListAssignedKeys(ctx context.Context, contestID int64) ([]string, error) {
	items, err := uc.Assignments.ListAssignments(ctx, contestID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Judge.Key())
	}
	return keys, nil
}
