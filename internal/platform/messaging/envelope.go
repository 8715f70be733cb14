package messaging

import (
	"encoding/json"
	"time"

	contractsv1 "inkwell/contracts/events/v1"

	"github.com/google/uuid"
)

// NewEnvelope wraps data in a v1 envelope with a fresh event id. It is used
// by producers that publish straight to the bus instead of an outbox.
func NewEnvelope(eventType, sourceService, partitionKeyPath, partitionKey string, data any) (contractsv1.Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return contractsv1.Envelope{}, err
	}
	eventID := uuid.NewString()
	return contractsv1.Envelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       time.Now().UTC(),
		SourceService:    sourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}
