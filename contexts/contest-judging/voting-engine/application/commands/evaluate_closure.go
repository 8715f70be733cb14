package commands

import (
	"context"
	"log/slog"

	"inkwell/contexts/contest-judging/voting-engine/ports"
)

// EvaluateClosureUseCase re-runs the closure check outside a vote, e.g. after
// a judge was unassigned.
type EvaluateClosureUseCase struct {
	Contests ports.ContestDirectory
	Closer   Closer
	Locker   ports.ContestLocker
	Logger   *slog.Logger
}

func (uc EvaluateClosureUseCase) Execute(ctx context.Context, contestID int64) (bool, error) {
	var closed bool
	err := uc.Locker.WithContestLock(ctx, contestID, func(ctx context.Context) error {
		contest, err := uc.Contests.GetContest(ctx, contestID)
		if err != nil {
			return err
		}
		closed, err = uc.Closer.CloseIfComplete(ctx, contest, TriggerReassess)
		return err
	})
	return closed, err
}
