package ports

import (
	"context"
	"time"

	"inkwell/contexts/contest-judging/judge-registry/domain/entities"
	contractsv1 "inkwell/contracts/events/v1"
)

type AssignmentRepository interface {
	// CreateAssignment fails with ErrJudgeAlreadyAssigned for a repeated
	// (contest, judge key).
	CreateAssignment(ctx context.Context, assignment entities.Assignment) error
	DeleteAssignment(ctx context.Context, contestID int64, judgeKey string) error
	ListAssignments(ctx context.Context, contestID int64) ([]entities.Assignment, error)
	IsAssigned(ctx context.Context, contestID int64, judgeKey string) (bool, error)
	IsUserAssigned(ctx context.Context, contestID int64, userID int64) (bool, error)
	DeleteByContest(ctx context.Context, contestID int64) (int, error)
}

type ContestProjection struct {
	ContestID int64
	CreatorID int64
	Status    entities.ContestStatus
}

type ContestDirectory interface {
	GetContest(ctx context.Context, contestID int64) (ContestProjection, error)
}

// VoteLedger is the judge-registry view of cast vote sets.
type VoteLedger interface {
	HasVoteSet(ctx context.Context, contestID int64, judgeKey string) (bool, error)
	DropVoteSet(ctx context.Context, contestID int64, judgeKey string) error
}

// ClosureTrigger re-runs the closure check of a contest in evaluation.
type ClosureTrigger interface {
	EvaluateClosure(ctx context.Context, contestID int64) error
}

type ContestLocker interface {
	WithContestLock(ctx context.Context, contestID int64, fn func(context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type EventEnvelope = contractsv1.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
