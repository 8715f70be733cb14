package bootstrap

import (
	"context"
	"errors"
	"fmt"

	contestcommands "inkwell/contexts/contest-judging/contest-registry/application/commands"
	contestqueries "inkwell/contexts/contest-judging/contest-registry/application/queries"
	contestentities "inkwell/contexts/contest-judging/contest-registry/domain/entities"
	contesterrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	judgeentities "inkwell/contexts/contest-judging/judge-registry/domain/entities"
	judgeerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	judgeports "inkwell/contexts/contest-judging/judge-registry/ports"
	submissionentities "inkwell/contexts/contest-judging/submission-manager/domain/entities"
	submissionerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	submissionports "inkwell/contexts/contest-judging/submission-manager/ports"
	votingentities "inkwell/contexts/contest-judging/voting-engine/domain/entities"
	votingerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	votingports "inkwell/contexts/contest-judging/voting-engine/ports"
	"inkwell/internal/platform/db"
)

// The bridges below implement each component's outbound ports on top of the
// other components' use cases. They hold the Modules pointer because the
// modules are built after the bridges that reference them.

// contest-registry <- submission-manager, judge-registry

type contestStatsBridge struct{ modules *Modules }

func (b contestStatsBridge) ContestStats(ctx context.Context, contestIDs []int64) (map[int64]contestentities.ContestStats, error) {
	stats, err := b.modules.Submissions.Handler.ContestStats.Execute(ctx, contestIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]contestentities.ContestStats, len(stats))
	for contestID, item := range stats {
		out[contestID] = contestentities.ContestStats{
			ParticipantCount: item.ParticipantCount,
			TextCount:        item.TextCount,
		}
	}
	return out, nil
}

// contestMembershipBridge treats participants and assigned human judges as
// contest members.
type contestMembershipBridge struct{ modules *Modules }

func (b contestMembershipBridge) IsMember(ctx context.Context, contestID int64, userID int64) (bool, error) {
	participant, err := b.modules.Submissions.Handler.Participation.IsParticipant(ctx, contestID, userID)
	if err != nil || participant {
		return participant, err
	}
	return b.modules.Judges.Handler.Assignments.IsUserAssigned(ctx, contestID, userID)
}

// registryReader holds the registry reads shared by the bridges below.
type registryReader struct{ modules *Modules }

func (b registryReader) getContest(ctx context.Context, contestID int64) (contestentities.Contest, error) {
	return b.modules.Registry.Handler.GetContest.Execute(ctx, contestID)
}

func (b registryReader) hasAccess(ctx context.Context, contestID int64, userID int64, privileged bool, password string) (bool, error) {
	return b.modules.Registry.Handler.Access.HasAccess(ctx, contestqueries.AccessQuery{
		ContestID: contestID,
		Actor:     contestentities.Actor{UserID: userID, Privileged: privileged},
		Password:  password,
	})
}

// submission-manager -> contest-registry, judge-registry

type submissionContestsBridge struct{ modules *Modules }

func (b submissionContestsBridge) GetContest(ctx context.Context, contestID int64) (submissionports.ContestProjection, error) {
	contest, err := registryReader(b).getContest(ctx, contestID)
	if err != nil {
		return submissionports.ContestProjection{}, translateContestError(err, submissionerrors.ErrContestNotFound)
	}
	return submissionports.ContestProjection{
		ContestID:               contest.ContestID,
		CreatorID:               contest.CreatorID,
		Status:                  submissionentities.ContestStatus(contest.Status),
		JudgesExcludedAsAuthors: contest.JudgesExcludedAsAuthors,
		OneSubmissionPerAuthor:  contest.OneSubmissionPerAuthor,
	}, nil
}

func (b submissionContestsBridge) HasAccess(ctx context.Context, contestID int64, userID int64, privileged bool, password string) (bool, error) {
	allowed, err := registryReader(b).hasAccess(ctx, contestID, userID, privileged, password)
	return allowed, translateContestError(err, submissionerrors.ErrContestNotFound)
}

type submissionJudgesBridge struct{ modules *Modules }

func (b submissionJudgesBridge) IsUserAssigned(ctx context.Context, contestID int64, userID int64) (bool, error) {
	return b.modules.Judges.Handler.Assignments.IsUserAssigned(ctx, contestID, userID)
}

// judge-registry -> contest-registry, voting-engine

type judgeContestsBridge struct{ modules *Modules }

func (b judgeContestsBridge) GetContest(ctx context.Context, contestID int64) (judgeports.ContestProjection, error) {
	contest, err := registryReader(b).getContest(ctx, contestID)
	if err != nil {
		return judgeports.ContestProjection{}, translateContestError(err, judgeerrors.ErrContestNotFound)
	}
	return judgeports.ContestProjection{
		ContestID: contest.ContestID,
		CreatorID: contest.CreatorID,
		Status:    judgeentities.ContestStatus(contest.Status),
	}, nil
}

type judgeVotesBridge struct{ modules *Modules }

func (b judgeVotesBridge) HasVoteSet(ctx context.Context, contestID int64, judgeKey string) (bool, error) {
	return b.modules.Voting.Handler.VoteLedger.HasVoteSet(ctx, contestID, judgeKey)
}

func (b judgeVotesBridge) DropVoteSet(ctx context.Context, contestID int64, judgeKey string) error {
	return b.modules.Voting.Handler.DropVoteSet.Execute(ctx, contestID, judgeKey)
}

type judgeClosureBridge struct{ modules *Modules }

func (b judgeClosureBridge) EvaluateClosure(ctx context.Context, contestID int64) error {
	_, err := b.modules.Voting.Handler.EvaluateClosure.Execute(ctx, contestID)
	return err
}

// voting-engine -> contest-registry, submission-manager, judge-registry

type votingContestsBridge struct{ modules *Modules }

func (b votingContestsBridge) GetContest(ctx context.Context, contestID int64) (votingports.ContestProjection, error) {
	contest, err := registryReader(b).getContest(ctx, contestID)
	if err != nil {
		return votingports.ContestProjection{}, translateContestError(err, votingerrors.ErrContestNotFound)
	}
	return votingports.ContestProjection{
		ContestID:        contest.ContestID,
		CreatorID:        contest.CreatorID,
		Status:           votingentities.ContestStatus(contest.Status),
		MinVotesRequired: contest.MinVotesRequired,
	}, nil
}

func (b votingContestsBridge) HasAccess(ctx context.Context, contestID int64, userID int64, privileged bool, password string) (bool, error) {
	allowed, err := registryReader(b).hasAccess(ctx, contestID, userID, privileged, password)
	return allowed, translateContestError(err, votingerrors.ErrContestNotFound)
}

// CloseContest is the conditional evaluation -> closed step taken by the
// system actor. It reports whether this call changed the status.
func (b votingContestsBridge) CloseContest(ctx context.Context, contestID int64) (bool, error) {
	result, err := b.modules.Registry.Handler.Transition.Execute(ctx, contestcommands.TransitionCommand{
		ContestID:    contestID,
		Target:       contestentities.ContestStatusClosed,
		Actor:        contestentities.SystemActor(),
		Reason:       "closure condition met",
		ExpectedFrom: contestentities.ContestStatusEvaluation,
	})
	if err != nil {
		return false, translateCloseError(err)
	}
	return result.Changed, nil
}

type votingSubmissionsBridge struct{ modules *Modules }

func (b votingSubmissionsBridge) ListSubmissions(ctx context.Context, contestID int64) ([]votingports.SubmissionRef, error) {
	items, err := b.modules.Submissions.Handler.ContestSubmissions.Execute(ctx, contestID)
	if err != nil {
		return nil, err
	}
	refs := make([]votingports.SubmissionRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, votingports.SubmissionRef{
			SubmissionID:  item.SubmissionID,
			AnonymousCode: item.AnonymousCode,
			OwnerID:       item.OwnerID,
			AuthorID:      item.AuthorID,
			Active:        item.Active(),
		})
	}
	return refs, nil
}

type votingJudgesBridge struct{ modules *Modules }

func (b votingJudgesBridge) IsAssigned(ctx context.Context, contestID int64, judge votingentities.JudgeIdentity) (bool, error) {
	return b.modules.Judges.Handler.Assignments.IsAssigned(ctx, contestID, judgeentities.JudgeIdentity{
		Kind:    judgeentities.JudgeKind(judge.Kind),
		UserID:  judge.UserID,
		AgentID: judge.AgentID,
		Model:   judge.Model,
	})
}

func (b votingJudgesBridge) ListAssignedKeys(ctx context.Context, contestID int64) ([]string, error) {
	return b.modules.Judges.Handler.Assignments.ListAssignedKeys(ctx, contestID)
}

// translateContestError maps the registry's not-found sentinel onto the
// caller's own so errors.Is keeps working across the boundary.
func translateContestError(err error, notFound error) error {
	if errors.Is(err, contesterrors.ErrContestNotFound) {
		return notFound
	}
	return err
}

// translateCloseError turns a close that kept losing the status race into a
// retryable transaction conflict.
func translateCloseError(err error) error {
	if errors.Is(err, contesterrors.ErrTransitionContended) {
		return fmt.Errorf("%w: %v", db.ErrTransactionConflict, err)
	}
	return translateContestError(err, votingerrors.ErrContestNotFound)
}
