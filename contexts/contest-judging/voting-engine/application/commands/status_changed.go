package commands

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/voting-engine/application"
	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

type StatusChange struct {
	ContestID int64
	From      entities.ContestStatus
	To        entities.ContestStatus
}

// ApplyStatusChangeUseCase keeps frozen rankings in line with status changes
// made outside the engine. A close without a frozen ranking (an operator
// forcing the status) freezes the current votes; leaving closed drops the
// frozen ranking.
type ApplyStatusChangeUseCase struct {
	Contests ports.ContestDirectory
	Rankings ports.RankingRepository
	Closer   Closer
	Locker   ports.ContestLocker
	Metrics  ports.Metrics
	Logger   *slog.Logger
}

func (uc ApplyStatusChangeUseCase) Execute(ctx context.Context, change StatusChange) error {
	logger := application.ResolveLogger(uc.Logger)
	return uc.Locker.WithContestLock(ctx, change.ContestID, func(ctx context.Context) error {
		contest, err := uc.Contests.GetContest(ctx, change.ContestID)
		if err != nil {
			return err
		}
		_, frozen, err := uc.Rankings.GetFinalRanking(ctx, contest.ContestID)
		if err != nil {
			return err
		}

		switch {
		case contest.Status == entities.ContestStatusClosed && !frozen:
			if _, err := uc.Closer.Freeze(ctx, contest.ContestID); err != nil {
				return err
			}
			application.ResolveMetrics(uc.Metrics).ContestClosed(TriggerForced)
			logger.Info("ranking frozen after forced close",
				"event", "contest_ranking_frozen",
				"module", "contest-judging/voting-engine",
				"layer", "application",
				"contest_id", contest.ContestID,
				"from_status", string(change.From),
			)
		case contest.Status != entities.ContestStatusClosed && frozen:
			if err := uc.Closer.Unfreeze(ctx, contest.ContestID); err != nil {
				return err
			}
			logger.Info("frozen ranking dropped after reopen",
				"event", "contest_ranking_unfrozen",
				"module", "contest-judging/voting-engine",
				"layer", "application",
				"contest_id", contest.ContestID,
				"to_status", string(contest.Status),
			)
		}
		return nil
	})
}
