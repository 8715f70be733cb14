package workers

import (
	"context"
	"log/slog"
	"time"

	application "inkwell/contexts/contest-judging/contest-registry/application"
	"inkwell/contexts/contest-judging/contest-registry/application/commands"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	"inkwell/contexts/contest-judging/contest-registry/ports"
)

// ExpirySweeper moves open contests whose end time passed into evaluation.
// Each move is the conditional open -> evaluation step, so overlapping sweeps
// and manual transitions never double-apply.
type ExpirySweeper struct {
	Contests   ports.ContestRepository
	Transition commands.TransitionUseCase
	Clock      ports.Clock
	BatchSize  int
	Logger     *slog.Logger
}

func (j ExpirySweeper) RunOnce(ctx context.Context) error {
	_, err := j.Sweep(ctx)
	return err
}

// Sweep returns how many contests this run moved.
func (j ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	expired, err := j.Contests.ListExpiredOpen(ctx, now, limit)
	if err != nil {
		logger.Error("contest expiry sweep failed",
			"event", "contest_expiry_sweep_failed",
			"module", "contest-judging/contest-registry",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	moved := 0
	for _, contest := range expired {
		result, err := j.Transition.Execute(ctx, commands.TransitionCommand{
			ContestID:    contest.ContestID,
			Target:       entities.ContestStatusEvaluation,
			ExpectedFrom: entities.ContestStatusOpen,
			Actor:        entities.SystemActor(),
			Reason:       "ends_at reached",
		})
		if err != nil {
			logger.Error("contest expiry transition failed",
				"event", "contest_expiry_transition_failed",
				"module", "contest-judging/contest-registry",
				"layer", "worker",
				"contest_id", contest.ContestID,
				"error", err.Error(),
			)
			return moved, err
		}
		if result.Changed {
			moved++
		}
	}

	if moved > 0 {
		logger.Info("contest expiry sweep completed",
			"event", "contest_expiry_sweep_completed",
			"module", "contest-judging/contest-registry",
			"layer", "worker",
			"moved_count", moved,
		)
	}
	return moved, nil
}
