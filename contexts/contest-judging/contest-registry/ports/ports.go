package ports

import (
	"context"
	"time"

	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	contractsv1 "inkwell/contracts/events/v1"
)

type ContestFilter struct {
	// PublicOrCreatorID lists public contests plus those created by this
	// user. Zero lists public contests only.
	PublicOrCreatorID int64
	All               bool
	Status            entities.ContestStatus
	Limit             int
}

type ContestRepository interface {
	// CreateContest assigns ContestID and returns the stored contest.
	CreateContest(ctx context.Context, contest entities.Contest) (entities.Contest, error)
	UpdateContest(ctx context.Context, contest entities.Contest) error
	GetContest(ctx context.Context, contestID int64) (entities.Contest, error)
	ListContests(ctx context.Context, filter ContestFilter) ([]entities.Contest, error)
	DeleteContest(ctx context.Context, contestID int64) error
	// CompareAndSetStatus moves the contest from -> to only if it still holds
	// from. It reports whether the row changed.
	CompareAndSetStatus(ctx context.Context, contestID int64, from entities.ContestStatus, to entities.ContestStatus, at time.Time) (bool, error)
	ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]entities.Contest, error)
}

type HistoryRepository interface {
	AppendState(ctx context.Context, item entities.StateHistory) error
	ListStates(ctx context.Context, contestID int64) ([]entities.StateHistory, error)
}

// Transactor groups the status CAS with its history and outbox rows.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(context.Context) error) error
}

// ContestLocker is shared with the other contest-judging components; status
// changes wait behind their in-flight submits, withdrawals and votes.
type ContestLocker interface {
	WithContestLock(ctx context.Context, contestID int64, fn func(context.Context) error) error
}

type ContestStatsReader interface {
	ContestStats(ctx context.Context, contestIDs []int64) (map[int64]entities.ContestStats, error)
}

// MembershipReader answers whether a user takes part in a contest as a
// participant or an assigned judge.
type MembershipReader interface {
	IsMember(ctx context.Context, contestID int64, userID int64) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) bool
}

type Metrics interface {
	StatusChanged(from string, to string)
	OutboxRowPublished()
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
