package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/contexts/contest-judging/contest-registry/application/commands"
	"inkwell/contexts/contest-judging/contest-registry/application/queries"
	"inkwell/contexts/contest-judging/contest-registry/application/workers"
	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	httptransport "inkwell/contexts/contest-judging/contest-registry/transport/http"
)

type Handler struct {
	CreateContest    commands.CreateContestUseCase
	UpdateContest    commands.UpdateContestUseCase
	Transition       commands.TransitionUseCase
	DeleteContest    commands.DeleteContestUseCase
	GetContest       queries.GetContestUseCase
	Access           queries.AccessUseCase
	GetContestDetail queries.GetContestDetailUseCase
	ListContestCards queries.ListContestCardsUseCase
	ListHistory      queries.ListHistoryUseCase
	Sweeper          workers.ExpirySweeper
	Logger           *slog.Logger
}

func (h Handler) CreateContestHandler(
	ctx context.Context,
	actor entities.Actor,
	req httptransport.CreateContestRequest,
) (httptransport.ContestResponse, error) {
	endsAt, err := parseTime(req.EndsAt)
	if err != nil {
		return httptransport.ContestResponse{}, domainerrors.ErrInvalidContestInput
	}
	contest, err := h.CreateContest.Execute(ctx, commands.CreateContestCommand{
		Actor:                   actor,
		Title:                   req.Title,
		Description:             req.Description,
		IsPublic:                req.IsPublic,
		PasswordProtected:       req.PasswordProtected,
		Password:                req.Password,
		MinVotesRequired:        req.MinVotesRequired,
		JudgesExcludedAsAuthors: req.JudgesExcludedAsAuthors,
		OneSubmissionPerAuthor:  req.OneSubmissionPerAuthor,
		EndsAt:                  endsAt,
	})
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return httptransport.ContestResponse{Contest: mapContest(contest)}, nil
}

func (h Handler) UpdateContestHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	req httptransport.UpdateContestRequest,
) (httptransport.ContestResponse, error) {
	var endsAt *time.Time
	if req.EndsAt != nil {
		parsed, err := parseTime(*req.EndsAt)
		if err != nil {
			return httptransport.ContestResponse{}, domainerrors.ErrInvalidContestInput
		}
		endsAt = parsed
	}
	contest, err := h.UpdateContest.Execute(ctx, commands.UpdateContestCommand{
		ContestID:               contestID,
		Actor:                   actor,
		Title:                   req.Title,
		Description:             req.Description,
		IsPublic:                req.IsPublic,
		PasswordProtected:       req.PasswordProtected,
		Password:                req.Password,
		MinVotesRequired:        req.MinVotesRequired,
		ClearMinVotes:           req.ClearMinVotes,
		JudgesExcludedAsAuthors: req.JudgesExcludedAsAuthors,
		OneSubmissionPerAuthor:  req.OneSubmissionPerAuthor,
		EndsAt:                  endsAt,
		ClearEndsAt:             req.ClearEndsAt,
	})
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return httptransport.ContestResponse{Contest: mapContest(contest)}, nil
}

func (h Handler) TransitionHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	req httptransport.TransitionRequest,
) (httptransport.TransitionResponse, error) {
	result, err := h.Transition.Execute(ctx, commands.TransitionCommand{
		ContestID: contestID,
		Target:    entities.ContestStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Actor:     actor,
		Reason:    req.Reason,
	})
	if err != nil {
		return httptransport.TransitionResponse{}, err
	}
	return httptransport.TransitionResponse{
		Contest:    mapContest(result.Contest),
		FromStatus: string(result.From),
		Changed:    result.Changed,
	}, nil
}

func (h Handler) DeleteContestHandler(ctx context.Context, actor entities.Actor, contestID int64) error {
	return h.DeleteContest.Execute(ctx, commands.DeleteContestCommand{
		ContestID: contestID,
		Actor:     actor,
	})
}

func (h Handler) GetContestDetailHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	password string,
) (httptransport.ContestDetailResponse, error) {
	detail, err := h.GetContestDetail.Execute(ctx, queries.AccessQuery{
		ContestID: contestID,
		Actor:     actor,
		Password:  password,
	})
	if err != nil {
		return httptransport.ContestDetailResponse{}, err
	}
	return httptransport.ContestDetailResponse{
		Contest:          mapContest(detail.Contest),
		ParticipantCount: detail.Stats.ParticipantCount,
		TextCount:        detail.Stats.TextCount,
	}, nil
}

func (h Handler) ListContestCardsHandler(
	ctx context.Context,
	actor entities.Actor,
	status string,
	limit int,
) (httptransport.ListContestCardsResponse, error) {
	cards, err := h.ListContestCards.Execute(ctx, queries.ListContestCardsQuery{
		Actor:  actor,
		Status: strings.ToLower(strings.TrimSpace(status)),
		Limit:  limit,
	})
	if err != nil {
		return httptransport.ListContestCardsResponse{}, err
	}
	items := make([]httptransport.ContestCardDTO, 0, len(cards))
	for _, card := range cards {
		items = append(items, httptransport.ContestCardDTO{
			ContestDTO:       mapContest(card.Contest),
			ParticipantCount: card.Stats.ParticipantCount,
			TextCount:        card.Stats.TextCount,
		})
	}
	return httptransport.ListContestCardsResponse{Items: items}, nil
}

func (h Handler) ListHistoryHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
) (httptransport.ListHistoryResponse, error) {
	items, err := h.ListHistory.Execute(ctx, contestID, actor)
	if err != nil {
		return httptransport.ListHistoryResponse{}, err
	}
	out := make([]httptransport.StateHistoryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, httptransport.StateHistoryDTO{
			FromStatus: string(item.FromState),
			ToStatus:   string(item.ToState),
			ChangedBy:  item.ChangedBy,
			Reason:     item.ChangeReason,
			ChangedAt:  item.CreatedAt.Format(time.RFC3339),
		})
	}
	return httptransport.ListHistoryResponse{Items: out}, nil
}

func (h Handler) SweepExpiredHandler(ctx context.Context) (httptransport.SweepResponse, error) {
	moved, err := h.Sweeper.Sweep(ctx)
	if err != nil {
		return httptransport.SweepResponse{}, err
	}
	return httptransport.SweepResponse{MovedCount: moved}, nil
}

func mapContest(item entities.Contest) httptransport.ContestDTO {
	result := httptransport.ContestDTO{
		ContestID:               item.ContestID,
		Title:                   item.Title,
		Description:             item.Description,
		CreatorID:               item.CreatorID,
		Status:                  string(item.Status),
		ContestType:             item.Type(),
		IsPublic:                item.IsPublic,
		PasswordProtected:       item.PasswordProtected,
		MinVotesRequired:        item.MinVotesRequired,
		JudgesExcludedAsAuthors: item.JudgesExcludedAsAuthors,
		OneSubmissionPerAuthor:  item.OneSubmissionPerAuthor,
		CreatedAt:               item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:               item.UpdatedAt.Format(time.RFC3339),
	}
	if item.EndsAt != nil {
		result.EndsAt = item.EndsAt.Format(time.RFC3339)
	}
	return result
}

func parseTime(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("parse ends_at: %w", err)
	}
	utc := parsed.UTC()
	return &utc, nil
}
