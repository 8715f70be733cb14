package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	application "inkwell/contexts/contest-judging/submission-manager/application"
	"inkwell/contexts/contest-judging/submission-manager/application/commands"
	"inkwell/contexts/contest-judging/submission-manager/ports"
	contractsv1 "inkwell/contracts/events/v1"
)

const (
	defaultContestDeletedGroup = "submission-manager-contest-deleted-cg"
	defaultTextDeletedGroup    = "submission-manager-text-deleted-cg"
)

// ContestDeletedConsumer drops the submission links of a deleted contest.
type ContestDeletedConsumer struct {
	Subscriber    ports.EventSubscriber
	Purge         commands.PurgeContestUseCase
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c ContestDeletedConsumer) Start(ctx context.Context) error {
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultContestDeletedGroup
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
			"event", "contest_submissions_purge_failed",
			"module", "contest-judging/submission-manager",
			"layer", "worker",
			"event_id", event.EventID,
			"contest_id", payload.ContestID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

// TextDeletedConsumer applies text.deleted from the text library.
type TextDeletedConsumer struct {
	Subscriber    ports.EventSubscriber
	TextDeleted   commands.HandleTextDeletedUseCase
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c TextDeletedConsumer) Start(ctx context.Context) error {
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultTextDeletedGroup
	}
	return c.Subscriber.Subscribe(ctx, contractsv1.TopicTextDeleted, group, c.Handle)
}

func (c TextDeletedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	var payload contractsv1.TextDeleted
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode text.deleted payload: %w", err)
	}
	if payload.TextID == 0 {
		return fmt.Errorf("text.deleted payload missing text_id")
	}
	if _, err := c.TextDeleted.Execute(ctx, payload.TextID); err != nil {
		application.ResolveLogger(c.Logger).Error("text.deleted handling failed",
			"event", "contest_text_deleted_consume_failed",
			"module", "contest-judging/submission-manager",
			"layer", "worker",
			"event_id", event.EventID,
			"text_id", payload.TextID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}
