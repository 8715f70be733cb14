package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"inkwell/contexts/contest-judging/judge-registry/application/commands"
	"inkwell/contexts/contest-judging/judge-registry/application/queries"
	"inkwell/contexts/contest-judging/judge-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	httptransport "inkwell/contexts/contest-judging/judge-registry/transport/http"
)

type Handler struct {
	Assign      commands.AssignJudgeUseCase
	Unassign    commands.UnassignJudgeUseCase
	Purge       commands.PurgeContestUseCase
	ListJudges  queries.ListJudgesUseCase
	Assignments queries.AssignmentsUseCase
	Logger      *slog.Logger
}

func (h Handler) AssignJudgeHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	req httptransport.AssignJudgeRequest,
) (httptransport.AssignJudgeResponse, error) {
	judge, err := JudgeFromDTO(req.Judge)
	if err != nil {
		return httptransport.AssignJudgeResponse{}, err
	}
	assignment, err := h.Assign.Execute(ctx, commands.AssignJudgeCommand{
		ContestID: contestID,
		Judge:     judge,
		Actor:     actor,
	})
	if err != nil {
		return httptransport.AssignJudgeResponse{}, err
	}
	return httptransport.AssignJudgeResponse{Assignment: mapAssignment(assignment)}, nil
}

func (h Handler) UnassignJudgeHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	judgeKey string,
) (httptransport.UnassignJudgeResponse, error) {
	judge, ok := entities.ParseJudgeKey(strings.TrimSpace(judgeKey))
	if !ok {
		return httptransport.UnassignJudgeResponse{}, domainerrors.ErrInvalidJudge
	}
	result, err := h.Unassign.Execute(ctx, commands.UnassignJudgeCommand{
		ContestID: contestID,
		Judge:     judge,
		Actor:     actor,
	})
	if err != nil {
		return httptransport.UnassignJudgeResponse{}, err
	}
	return httptransport.UnassignJudgeResponse{
		JudgeKey:       judge.Key(),
		VoteSetDropped: result.VoteSetDropped,
	}, nil
}

func (h Handler) ListJudgesHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
) (httptransport.ListJudgesResponse, error) {
	items, err := h.ListJudges.Execute(ctx, queries.ListJudgesQuery{ContestID: contestID, Actor: actor})
	if err != nil {
		return httptransport.ListJudgesResponse{}, err
	}
	out := make([]httptransport.AssignmentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, mapAssignment(item))
	}
	return httptransport.ListJudgesResponse{Items: out}, nil
}

// JudgeFromDTO accepts either a canonical key or the kind-specific ids.
func JudgeFromDTO(dto httptransport.JudgeDTO) (entities.JudgeIdentity, error) {
	if key := strings.TrimSpace(dto.Key); key != "" {
		judge, ok := entities.ParseJudgeKey(key)
		if !ok {
			return entities.JudgeIdentity{}, domainerrors.ErrInvalidJudge
		}
		return judge, nil
	}
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

func mapAssignment(item entities.Assignment) httptransport.AssignmentDTO {
	return httptransport.AssignmentDTO{
		ContestID: item.ContestID,
		Judge: httptransport.JudgeDTO{
			Kind:    string(item.Judge.Kind),
			UserID:  item.Judge.UserID,
			AgentID: item.Judge.AgentID,
			Model:   item.Judge.Model,
			Key:     item.Judge.Key(),
		},
		AssignedBy: item.AssignedBy,
		AssignedAt: item.AssignedAt.Format(time.RFC3339),
	}
}
