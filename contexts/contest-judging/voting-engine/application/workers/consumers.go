package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "inkwell/contexts/contest-judging/voting-engine/application"
	"inkwell/contexts/contest-judging/voting-engine/application/commands"
	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	"inkwell/contexts/contest-judging/voting-engine/ports"
	contractsv1 "inkwell/contracts/events/v1"
)

const (
	defaultStatusGroup  = "voting-engine-status-changed-cg"
	defaultDeletedGroup = "voting-engine-contest-deleted-cg"
)

// StatusChangedConsumer freezes or drops rankings when a contest status is
// changed by the registry.
type StatusChangedConsumer struct {
	Subscriber    ports.EventSubscriber
	StatusChange  commands.ApplyStatusChangeUseCase
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c StatusChangedConsumer) Start(ctx context.Context) error {
	return c.Subscriber.Subscribe(ctx, contractsv1.TopicContestStatusChanged, groupOr(c.ConsumerGroup, defaultStatusGroup), c.Handle)
}

func (c StatusChangedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	var payload contractsv1.ContestStatusChanged
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode contest.status_changed payload: %w", err)
	}
	if payload.ContestID == 0 {
		return fmt.Errorf("contest.status_changed payload missing contest_id")
	}
	err := c.StatusChange.Execute(ctx, commands.StatusChange{
		ContestID: payload.ContestID,
		From:      entities.ContestStatus(payload.FromStatus),
		To:        entities.ContestStatus(payload.ToStatus),
	})
	if errors.Is(err, domainerrors.ErrContestNotFound) {
		return nil
	}
	if err != nil {
		application.ResolveLogger(c.Logger).Error("contest.status_changed handling failed",
			"event", "contest_status_consume_failed",
			"module", "contest-judging/voting-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"contest_id", payload.ContestID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

type ContestDeletedConsumer struct {
	Subscriber    ports.EventSubscriber
	Purge         commands.PurgeContestUseCase
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c ContestDeletedConsumer) Start(ctx context.Context) error {
	return c.Subscriber.Subscribe(ctx, contractsv1.TopicContestDeleted, groupOr(c.ConsumerGroup, defaultDeletedGroup), c.Handle)
}

func (c ContestDeletedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	var payload contractsv1.ContestDeleted
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode contest.deleted payload: %w", err)
	}
	if payload.ContestID == 0 {
		return fmt.Errorf("contest.deleted payload missing contest_id")
	}
	if err := c.Purge.Execute(ctx, payload.ContestID); err != nil {
		application.ResolveLogger(c.Logger).Error("contest.deleted purge failed",
			"event", "contest_votes_purge_failed",
			"module", "contest-judging/voting-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"contest_id", payload.ContestID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func groupOr(group, fallback string) string {
	if trimmed := strings.TrimSpace(group); trimmed != "" {
		return trimmed
	}
	return fallback
}
