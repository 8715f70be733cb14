package commands

import (
	"context"
	"log/slog"
	"strings"

	application "inkwell/contexts/contest-judging/contest-registry/application"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
	contractsv1 "inkwell/contracts/events/v1"
)

const maxTransitionAttempts = 3

type TransitionCommand struct {
	ContestID int64
	Target    entities.ContestStatus
	Actor     entities.Actor
	Reason    string
	// ExpectedFrom turns the call into a conditional step: when the contest
	// no longer holds this status the call is a no-op.
	ExpectedFrom entities.ContestStatus
}

type TransitionResult struct {
	Contest entities.Contest
	From    entities.ContestStatus
	Changed bool
}

type TransitionUseCase struct {
	Contests ports.ContestRepository
	History  ports.HistoryRepository
	Outbox   ports.OutboxWriter
	Tx       ports.Transactor
	Locker   ports.ContestLocker
	Metrics  ports.Metrics
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc TransitionUseCase) Execute(ctx context.Context, cmd TransitionCommand) (TransitionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Target.Valid() {
		return TransitionResult{}, domainerrors.ErrInvalidTransition
	}

	var result TransitionResult
	err := uc.Locker.WithContestLock(ctx, cmd.ContestID, func(ctx context.Context) error {
		var err error
		result, err = uc.execute(ctx, cmd, logger)
		return err
	})
	if err != nil {
		return TransitionResult{}, err
	}
	return result, nil
}

func (uc TransitionUseCase) execute(ctx context.Context, cmd TransitionCommand, logger *slog.Logger) (TransitionResult, error) {
	contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
	if err != nil {
		return TransitionResult{}, err
	}
	if !cmd.Actor.CanManage(contest) {
		return TransitionResult{}, domainerrors.ErrForbidden
	}

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		from := contest.Status
		if from == cmd.Target {
			return TransitionResult{Contest: contest, From: from}, nil
		}
		if cmd.ExpectedFrom != "" && from != cmd.ExpectedFrom {
			return TransitionResult{Contest: contest, From: from}, nil
		}
		if !cmd.Actor.Privileged {
			next, ok := from.Next()
			if !ok || next != cmd.Target {
				return TransitionResult{}, domainerrors.ErrInvalidTransition
			}
		}

		changed, err := uc.apply(ctx, contest, cmd)
		if err != nil {
			return TransitionResult{}, err
		}
		if changed {
			contest.Status = cmd.Target
			if uc.Metrics != nil {
				uc.Metrics.StatusChanged(string(from), string(cmd.Target))
			}
			logger.Info("contest status changed",
				"event", "contest_status_changed",
				"module", "contest-judging/contest-registry",
				"layer", "application",
				"contest_id", contest.ContestID,
				"from_status", string(from),
				"to_status", string(cmd.Target),
				"actor_id", cmd.Actor.UserID,
				"system", cmd.Actor.System,
			)
			return TransitionResult{Contest: contest, From: from, Changed: true}, nil
		}

		// Lost the race; re-read and decide again.
		contest, err = uc.Contests.GetContest(ctx, cmd.ContestID)
		if err != nil {
			return TransitionResult{}, err
		}
	}

	logger.Warn("contest status transition contended",
		"event", "contest_status_transition_contended",
		"module", "contest-judging/contest-registry",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"target_status", string(cmd.Target),
	)
	return TransitionResult{}, domainerrors.ErrTransitionContended
}

func (uc TransitionUseCase) apply(ctx context.Context, contest entities.Contest, cmd TransitionCommand) (bool, error) {
	changed := false
	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		now := uc.Clock.Now().UTC()
		ok, err := uc.Contests.CompareAndSetStatus(ctx, contest.ContestID, contest.Status, cmd.Target, now)
		if err != nil || !ok {
			return err
		}
		historyID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		if err := uc.History.AppendState(ctx, entities.StateHistory{
			HistoryID:    historyID,
			ContestID:    contest.ContestID,
			FromState:    contest.Status,
			ToState:      cmd.Target,
			ChangedBy:    cmd.Actor.UserID,
			ChangeReason: strings.TrimSpace(cmd.Reason),
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.TopicContestStatusChanged, contest.ContestID, now,
			contractsv1.ContestStatusChanged{
				ContestID:  contest.ContestID,
				FromStatus: string(contest.Status),
				ToStatus:   string(cmd.Target),
				ChangedBy:  cmd.Actor.UserID,
				Reason:     strings.TrimSpace(cmd.Reason),
				ChangedAt:  now,
			}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}
