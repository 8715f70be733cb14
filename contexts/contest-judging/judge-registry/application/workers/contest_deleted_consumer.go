package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	application "inkwell/contexts/contest-judging/judge-registry/application"
	"inkwell/contexts/contest-judging/judge-registry/application/commands"
	"inkwell/contexts/contest-judging/judge-registry/ports"
	contractsv1 "inkwell/contracts/events/v1"
)

const defaultConsumerGroup = "judge-registry-contest-deleted-cg"

type ContestDeletedConsumer struct {
	Subscriber    ports.EventSubscriber
	Purge         commands.PurgeContestUseCase
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c ContestDeletedConsumer) Start(ctx context.Context) error {
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultConsumerGroup
	}
	return c.Subscriber.Subscribe(ctx, contractsv1.TopicContestDeleted, group, c.Handle)
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
			"event", "contest_judges_purge_failed",
			"module", "contest-judging/judge-registry",
			"layer", "worker",
			"event_id", event.EventID,
			"contest_id", payload.ContestID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}
