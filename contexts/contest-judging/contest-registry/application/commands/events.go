package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"inkwell/contexts/contest-judging/contest-registry/ports"
)

func newContestEnvelope(
	eventID string,
	eventType string,
	contestID int64,
	occurredAt time.Time,
	data any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "contest-registry",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "contest_id",
		PartitionKey:     strconv.FormatInt(contestID, 10),
		Data:             payload,
	}, nil
}

func appendEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	eventType string,
	contestID int64,
	occurredAt time.Time,
	data any,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newContestEnvelope(eventID, eventType, contestID, occurredAt, data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}
