package queries

import (
	"context"
	"log/slog"

	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
)

type ListHistoryUseCase struct {
	Contests ports.ContestRepository
	History  ports.HistoryRepository
	Logger   *slog.Logger
}

func (uc ListHistoryUseCase) Execute(ctx context.Context, contestID int64, actor entities.Actor) ([]entities.StateHistory, error) {
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(contest) {
		return nil, domainerrors.ErrForbidden
	}
	return uc.History.ListStates(ctx, contestID)
}
