package queries

import (
	"context"
	"log/slog"

	application "inkwell/contexts/contest-judging/contest-registry/application"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
)

const (
	defaultCardLimit = 50
	maxCardLimit     = 200
)

type ListContestCardsQuery struct {
	Actor  entities.Actor
	Status string
	Limit  int
}

type ListContestCardsUseCase struct {
	Contests ports.ContestRepository
	Stats    ports.ContestStatsReader
	Logger   *slog.Logger
}

func (uc ListContestCardsUseCase) Execute(ctx context.Context, query ListContestCardsQuery) ([]entities.ContestCard, error) {
	logger := application.ResolveLogger(uc.Logger)
	filter := ports.ContestFilter{
		PublicOrCreatorID: query.Actor.UserID,
		All:               query.Actor.Privileged,
		Limit:             query.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultCardLimit
	}
	if filter.Limit > maxCardLimit {
		filter.Limit = maxCardLimit
	}
	if query.Status != "" {
		status := entities.ContestStatus(query.Status)
		if !status.Valid() {
			return nil, domainerrors.ErrInvalidContestInput
		}
		filter.Status = status
	}

	contests, err := uc.Contests.ListContests(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(contests))
	for _, contest := range contests {
		ids = append(ids, contest.ContestID)
	}
	stats := map[int64]entities.ContestStats{}
	if uc.Stats != nil && len(ids) > 0 {
		stats, err = uc.Stats.ContestStats(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	cards := make([]entities.ContestCard, 0, len(contests))
	for _, contest := range contests {
		cards = append(cards, entities.ContestCard{Contest: contest, Stats: stats[contest.ContestID]})
	}
	logger.Debug("contest cards listed",
		"event", "contest_cards_listed",
		"module", "contest-judging/contest-registry",
		"layer", "application",
		"count", len(cards),
	)
	return cards, nil
}
