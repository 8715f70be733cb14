package queries

import (
	"context"
	"log/slog"
	"time"

	application "inkwell/contexts/contest-judging/voting-engine/application"
	"inkwell/contexts/contest-judging/voting-engine/application/commands"
	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	"inkwell/contexts/contest-judging/voting-engine/ports"
)

type RankingQuery struct {
	ContestID int64
	Actor     entities.Actor
	Password  string
}

type RankingEntry struct {
	entities.Standing
	AnonymousCode string
	OwnerID       *int64
	AuthorID      *int64
}

type RankingView struct {
	ContestID int64
	Status    entities.ContestStatus
	// Final is set for the frozen ranking of a closed contest.
	Final    bool
	Masked   bool
	FrozenAt *time.Time
	Entries  []RankingEntry
}

type GetRankingUseCase struct {
	Votes       ports.VoteRepository
	Rankings    ports.RankingRepository
	Cache       ports.RankingCache
	Contests    ports.ContestDirectory
	Submissions ports.SubmissionDirectory
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// Execute returns the frozen ranking of a closed contest to anyone with
// access, and live masked totals of a contest in evaluation to its creator
// and operators.
func (uc GetRankingUseCase) Execute(ctx context.Context, query RankingQuery) (RankingView, error) {
	contest, err := uc.Contests.GetContest(ctx, query.ContestID)
	if err != nil {
		return RankingView{}, err
	}
	isCreator := query.Actor.UserID != 0 && query.Actor.UserID == contest.CreatorID

	switch contest.Status {
	case entities.ContestStatusClosed:
		if !query.Actor.Privileged && !isCreator {
			allowed, err := uc.Contests.HasAccess(ctx, contest.ContestID, query.Actor.UserID, false, query.Password)
			if err != nil {
				return RankingView{}, err
			}
			if !allowed {
				return RankingView{}, domainerrors.ErrForbidden
			}
		}
		ranking, err := uc.finalRanking(ctx, contest.ContestID)
		if err != nil {
			return RankingView{}, err
		}
		frozenAt := ranking.FrozenAt
		view := RankingView{ContestID: contest.ContestID, Status: contest.Status, Final: true, FrozenAt: &frozenAt}
		return uc.decorate(ctx, view, ranking.Standings, false)
	case entities.ContestStatusEvaluation:
		if !query.Actor.Privileged && !isCreator {
			return RankingView{}, domainerrors.ErrForbidden
		}
		votes, err := uc.Votes.ListVotes(ctx, contest.ContestID)
		if err != nil {
			return RankingView{}, err
		}
		standings, err := commands.LiveStandings(ctx, uc.Submissions, contest.ContestID, votes)
		if err != nil {
			return RankingView{}, err
		}
		view := RankingView{ContestID: contest.ContestID, Status: contest.Status}
		return uc.decorate(ctx, view, standings, !query.Actor.Privileged)
	default:
		return RankingView{}, domainerrors.ErrRankingUnavailable
	}
}

// finalRanking reads through the cache. A closed contest whose ranking is
// not frozen yet is ranked from the current votes without storing it.
func (uc GetRankingUseCase) finalRanking(ctx context.Context, contestID int64) (entities.FinalRanking, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)
	if uc.Cache != nil {
		cached, ok, err := uc.Cache.Get(ctx, contestID)
		if err != nil {
			logger.Warn("ranking cache read failed",
				"event", "contest_ranking_cache_read_failed",
				"module", "contest-judging/voting-engine",
				"layer", "application",
				"contest_id", contestID,
				"error", err.Error(),
			)
		} else if ok {
			metrics.RankingCacheLookup(true)
			return cached, nil
		}
		metrics.RankingCacheLookup(false)
	}

	ranking, found, err := uc.Rankings.GetFinalRanking(ctx, contestID)
	if err != nil {
		return entities.FinalRanking{}, err
	}
	if !found {
		votes, err := uc.Votes.ListVotes(ctx, contestID)
		if err != nil {
			return entities.FinalRanking{}, err
		}
		standings, err := commands.LiveStandings(ctx, uc.Submissions, contestID, votes)
		if err != nil {
			return entities.FinalRanking{}, err
		}
		logger.Warn("closed contest has no frozen ranking yet",
			"event", "contest_ranking_not_frozen",
			"module", "contest-judging/voting-engine",
			"layer", "application",
			"contest_id", contestID,
		)
		return entities.FinalRanking{ContestID: contestID, Standings: standings}, nil
	}

	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, ranking); err != nil {
			logger.Warn("ranking cache write failed",
				"event", "contest_ranking_cache_write_failed",
				"module", "contest-judging/voting-engine",
				"layer", "application",
				"contest_id", contestID,
				"error", err.Error(),
			)
		}
	}
	return ranking, nil
}

func (uc GetRankingUseCase) decorate(
	ctx context.Context,
	view RankingView,
	standings []entities.Standing,
	masked bool,
) (RankingView, error) {
	refs, err := uc.Submissions.ListSubmissions(ctx, view.ContestID)
	if err != nil {
		return RankingView{}, err
	}
	byID := make(map[int64]ports.SubmissionRef, len(refs))
	for _, ref := range refs {
		byID[ref.SubmissionID] = ref
	}

	view.Masked = masked
	view.Entries = make([]RankingEntry, 0, len(standings))
	for _, standing := range standings {
		entry := RankingEntry{Standing: standing}
		if ref, ok := byID[standing.SubmissionID]; ok {
			entry.AnonymousCode = ref.AnonymousCode
			if !masked {
				ownerID, authorID := ref.OwnerID, ref.AuthorID
				entry.OwnerID = &ownerID
				entry.AuthorID = &authorID
			}
		}
		view.Entries = append(view.Entries, entry)
	}
	return view, nil
}
