package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"inkwell/contexts/contest-judging/voting-engine/application/commands"
	"inkwell/contexts/contest-judging/voting-engine/application/queries"
	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	httptransport "inkwell/contexts/contest-judging/voting-engine/transport/http"
)

type Handler struct {
	CastVoteSet     commands.CastVoteSetUseCase
	EvaluateClosure commands.EvaluateClosureUseCase
	DropVoteSet     commands.DropVoteSetUseCase
	StatusChange    commands.ApplyStatusChangeUseCase
	Purge           commands.PurgeContestUseCase
	GetRanking      queries.GetRankingUseCase
	GetVoteSet      queries.GetVoteSetUseCase
	VoteLedger      queries.VoteLedgerUseCase
	Logger          *slog.Logger
}

func (h Handler) CastVoteSetHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	req httptransport.CastVoteSetRequest,
) (httptransport.CastVoteSetResponse, error) {
	judge, err := resolveVotingJudge(actor, req.Judge)
	if err != nil {
		return httptransport.CastVoteSetResponse{}, err
	}
	entries := make([]entities.VoteEntry, 0, len(req.Entries))
	for _, item := range req.Entries {
		entries = append(entries, entities.VoteEntry{
			SubmissionID: item.SubmissionID,
			Place:        item.Place,
			Comment:      item.Comment,
		})
	}
	result, err := h.CastVoteSet.Execute(ctx, commands.CastVoteSetCommand{
		ContestID:   contestID,
		Judge:       judge,
		Entries:     entries,
		BaseVersion: req.BaseVersion,
	})
	if err != nil {
		return httptransport.CastVoteSetResponse{}, err
	}
	return httptransport.CastVoteSetResponse{
		ContestID:     contestID,
		JudgeKey:      judge.Key(),
		Votes:         mapVotes(result.Votes),
		Replaced:      result.Replaced,
		ContestClosed: result.Closed,
	}, nil
}

// GetVoteSetHandler reads the caller's own vote set unless a judge is named.
func (h Handler) GetVoteSetHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	judgeDTO *httptransport.JudgeDTO,
) (httptransport.VoteSetResponse, error) {
	judge := entities.HumanJudge(actor.UserID)
	if judgeDTO != nil {
		parsed, err := judgeFromDTO(*judgeDTO)
		if err != nil {
			return httptransport.VoteSetResponse{}, err
		}
		judge = parsed
	}
	votes, err := h.GetVoteSet.Execute(ctx, queries.VoteSetQuery{
		ContestID: contestID,
		Judge:     judge,
		Actor:     actor,
	})
	if err != nil {
		return httptransport.VoteSetResponse{}, err
	}
	return httptransport.VoteSetResponse{
		ContestID: contestID,
		JudgeKey:  judge.Key(),
		Votes:     mapVotes(votes),
	}, nil
}

func (h Handler) GetRankingHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	password string,
) (httptransport.RankingResponse, error) {
	view, err := h.GetRanking.Execute(ctx, queries.RankingQuery{
		ContestID: contestID,
		Actor:     actor,
		Password:  password,
	})
	if err != nil {
		return httptransport.RankingResponse{}, err
	}
	resp := httptransport.RankingResponse{
		ContestID: view.ContestID,
		Status:    string(view.Status),
		Final:     view.Final,
		Masked:    view.Masked,
		Entries:   make([]httptransport.RankingEntryDTO, 0, len(view.Entries)),
	}
	if view.FrozenAt != nil && !view.FrozenAt.IsZero() {
		resp.FrozenAt = view.FrozenAt.Format(time.RFC3339)
	}
	for _, entry := range view.Entries {
		item := httptransport.RankingEntryDTO{
			Rank:          entry.Rank,
			SubmissionID:  entry.SubmissionID,
			AnonymousCode: entry.AnonymousCode,
			OwnerID:       entry.OwnerID,
			AuthorID:      entry.AuthorID,
			Points:        entry.Points,
			FirstPlaces:   entry.FirstPlaces,
			SecondPlaces:  entry.SecondPlaces,
			ThirdPlaces:   entry.ThirdPlaces,
		}
		resp.Entries = append(resp.Entries, item)
	}
	return resp, nil
}

func (h Handler) EvaluateClosureHandler(ctx context.Context, actor entities.Actor, contestID int64) (httptransport.EvaluateClosureResponse, error) {
	if !actor.Privileged {
		return httptransport.EvaluateClosureResponse{}, domainerrors.ErrForbidden
	}
	closed, err := h.EvaluateClosure.Execute(ctx, contestID)
	if err != nil {
		return httptransport.EvaluateClosureResponse{}, err
	}
	return httptransport.EvaluateClosureResponse{ContestID: contestID, Closed: closed}, nil
}

// resolveVotingJudge takes human judges from the token. AI vote sets name
// their agent and model and are only accepted from the AI executor or an
// operator.
func resolveVotingJudge(actor entities.Actor, dto *httptransport.JudgeDTO) (entities.JudgeIdentity, error) {
	kind := entities.JudgeKindHuman
	if dto != nil && strings.TrimSpace(dto.Kind) != "" {
		kind = entities.JudgeKind(strings.ToLower(strings.TrimSpace(dto.Kind)))
	}
	switch kind {
	case entities.JudgeKindHuman:
		if actor.UserID == 0 {
			return entities.JudgeIdentity{}, domainerrors.ErrForbidden
		}
		return entities.HumanJudge(actor.UserID), nil
	case entities.JudgeKindAI:
		if !actor.AIExecutor && !actor.Privileged {
			return entities.JudgeIdentity{}, domainerrors.ErrForbidden
		}
		return judgeFromDTO(*dto)
	default:
		return entities.JudgeIdentity{}, domainerrors.ErrInvalidJudge
	}
}

func judgeFromDTO(dto httptransport.JudgeDTO) (entities.JudgeIdentity, error) {
	var judge entities.JudgeIdentity
	switch entities.JudgeKind(strings.ToLower(strings.TrimSpace(dto.Kind))) {
	case entities.JudgeKindHuman:
		judge = entities.HumanJudge(dto.UserID)
	case entities.JudgeKindAI:
		judge = entities.AIJudge(dto.AgentID, strings.TrimSpace(dto.Model))
	default:
		return entities.JudgeIdentity{}, domainerrors.ErrInvalidJudge
	}
	if !judge.Valid() {
		return entities.JudgeIdentity{}, domainerrors.ErrInvalidJudge
	}
	return judge, nil
}

func mapVotes(votes []entities.Vote) []httptransport.VoteDTO {
	out := make([]httptransport.VoteDTO, 0, len(votes))
	for _, vote := range votes {
		out = append(out, httptransport.VoteDTO{
			VoteID:       vote.VoteID,
			SubmissionID: vote.SubmissionID,
			Place:        vote.Place,
			Comment:      vote.Comment,
			BaseVersion:  vote.BaseVersion,
			CastAt:       vote.CastAt.Format(time.RFC3339),
		})
	}
	return out
}
