package ports

import (
	"context"
	"time"

	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	contractsv1 "inkwell/contracts/events/v1"
)

type SubmissionRepository interface {
	// CreateSubmission assigns SubmissionID. A second row for the same
	// (contest, text) fails with ErrDuplicateSubmission.
	CreateSubmission(ctx context.Context, submission entities.Submission) (entities.Submission, error)
	GetSubmission(ctx context.Context, submissionID int64) (entities.Submission, error)
	FindByContestAndText(ctx context.Context, contestID int64, textID int64) (entities.Submission, bool, error)
	ListByContest(ctx context.Context, contestID int64) ([]entities.Submission, error)
	ListByContests(ctx context.Context, contestIDs []int64) ([]entities.Submission, error)
	ListByText(ctx context.Context, textID int64) ([]entities.Submission, error)
	CountActiveByAuthor(ctx context.Context, contestID int64, authorID int64) (int, error)
	HasParticipant(ctx context.Context, contestID int64, userID int64) (bool, error)
	TombstoneSubmission(ctx context.Context, submissionID int64, at time.Time) error
	DeleteSubmission(ctx context.Context, submissionID int64) error
	DeleteByContest(ctx context.Context, contestID int64) (int, error)
}

type ContestProjection struct {
	ContestID               int64
	CreatorID               int64
	Status                  entities.ContestStatus
	JudgesExcludedAsAuthors bool
	OneSubmissionPerAuthor  bool
}

type ContestDirectory interface {
	GetContest(ctx context.Context, contestID int64) (ContestProjection, error)
	HasAccess(ctx context.Context, contestID int64, userID int64, privileged bool, password string) (bool, error)
}

type JudgeDirectory interface {
	IsUserAssigned(ctx context.Context, contestID int64, userID int64) (bool, error)
}

type TextCatalog interface {
	GetText(ctx context.Context, textID int64) (entities.Text, error)
	GetTexts(ctx context.Context, textIDs []int64) (map[int64]entities.Text, error)
}

// AnonymousCoder derives the stable public code of a submission.
type AnonymousCoder interface {
	Code(contestID int64, submissionID int64) string
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
