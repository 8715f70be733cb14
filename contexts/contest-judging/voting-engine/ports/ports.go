package ports

import (
	"context"
	"time"

	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	contractsv1 "inkwell/contracts/events/v1"
)

type VoteRepository interface {
	// ReplaceVoteSet deletes every vote of (contest, judge key), inserts
	// votes and records that the judge voted, even when votes is empty.
	// Callers run it inside the contest lock.
	ReplaceVoteSet(ctx context.Context, contestID int64, judgeKey string, castAt time.Time, votes []entities.Vote) error
	ListVotes(ctx context.Context, contestID int64) ([]entities.Vote, error)
	// ListVoters returns the judge keys holding a vote set.
	ListVoters(ctx context.Context, contestID int64) ([]string, error)
	ListVoteSet(ctx context.Context, contestID int64, judgeKey string) ([]entities.Vote, error)
	HasVoteSet(ctx context.Context, contestID int64, judgeKey string) (bool, error)
	DeleteVoteSet(ctx context.Context, contestID int64, judgeKey string) (int, error)
	DeleteByContest(ctx context.Context, contestID int64) (int, error)
}

type RankingRepository interface {
	SaveFinalRanking(ctx context.Context, ranking entities.FinalRanking) error
	GetFinalRanking(ctx context.Context, contestID int64) (entities.FinalRanking, bool, error)
	DeleteFinalRanking(ctx context.Context, contestID int64) error
}

// RankingCache holds frozen rankings. Failures are never fatal to a read.
type RankingCache interface {
	Get(ctx context.Context, contestID int64) (entities.FinalRanking, bool, error)
	Set(ctx context.Context, ranking entities.FinalRanking) error
	Delete(ctx context.Context, contestID int64) error
}

type ContestProjection struct {
	ContestID        int64
	CreatorID        int64
	Status           entities.ContestStatus
	MinVotesRequired *int
}

type ContestDirectory interface {
	GetContest(ctx context.Context, contestID int64) (ContestProjection, error)
	HasAccess(ctx context.Context, contestID int64, userID int64, privileged bool, password string) (bool, error)
	// CloseContest moves the contest from evaluation to closed as the system
	// actor. It reports false when the contest was no longer in evaluation.
	CloseContest(ctx context.Context, contestID int64) (bool, error)
}

type SubmissionRef struct {
	SubmissionID  int64
	AnonymousCode string
	OwnerID       int64
	AuthorID      int64
	Active        bool
}

type SubmissionDirectory interface {
	ListSubmissions(ctx context.Context, contestID int64) ([]SubmissionRef, error)
}

type JudgeDirectory interface {
	IsAssigned(ctx context.Context, contestID int64, judge entities.JudgeIdentity) (bool, error)
	ListAssignedKeys(ctx context.Context, contestID int64) ([]string, error)
}

type ContestLocker interface {
	WithContestLock(ctx context.Context, contestID int64, fn func(context.Context) error) error
}

type Metrics interface {
	VoteSetCast(judgeKind string, replaced bool)
	ContestClosed(trigger string)
	RankingCacheLookup(hit bool)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
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
