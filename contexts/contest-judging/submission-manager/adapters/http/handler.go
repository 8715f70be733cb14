package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"inkwell/contexts/contest-judging/submission-manager/application/commands"
	"inkwell/contexts/contest-judging/submission-manager/application/queries"
	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	"inkwell/contexts/contest-judging/submission-manager/ports"
	httptransport "inkwell/contexts/contest-judging/submission-manager/transport/http"
)

type Handler struct {
	Submit             commands.SubmitUseCase
	Withdraw           commands.WithdrawUseCase
	TextDeleted        commands.HandleTextDeletedUseCase
	Purge              commands.PurgeContestUseCase
	ListSubmissions    queries.ListSubmissionsUseCase
	ContestSubmissions queries.ContestSubmissionsUseCase
	ContestStats       queries.ContestStatsUseCase
	Participation      queries.ParticipationUseCase
	Codes              ports.AnonymousCoder
	Logger             *slog.Logger
}

func (h Handler) SubmitHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	req httptransport.SubmitRequest,
) (httptransport.SubmitResponse, error) {
	created, err := h.Submit.Execute(ctx, commands.SubmitCommand{
		ContestID: contestID,
		TextID:    req.TextID,
		Actor:     actor,
	})
	if err != nil {
		return httptransport.SubmitResponse{}, err
	}
	ownerID, authorID := created.OwnerID, created.AuthorID
	return httptransport.SubmitResponse{
		Submission: httptransport.SubmissionDTO{
			SubmissionID:  created.SubmissionID,
			ContestID:     created.ContestID,
			TextID:        created.TextID,
			AnonymousCode: h.Codes.Code(created.ContestID, created.SubmissionID),
			OwnerID:       &ownerID,
			AuthorID:      &authorID,
			SubmittedAt:   created.SubmittedAt.Format(time.RFC3339),
		},
	}, nil
}

func (h Handler) WithdrawHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	submissionID int64,
) (httptransport.WithdrawResponse, error) {
	outcome, err := h.Withdraw.Execute(ctx, commands.WithdrawCommand{
		ContestID:    contestID,
		SubmissionID: submissionID,
		Actor:        actor,
	})
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	return httptransport.WithdrawResponse{
		SubmissionID: submissionID,
		Outcome:      string(outcome),
	}, nil
}

func (h Handler) ListSubmissionsHandler(
	ctx context.Context,
	actor entities.Actor,
	contestID int64,
	password string,
) (httptransport.ListSubmissionsResponse, error) {
	result, err := h.ListSubmissions.Execute(ctx, queries.ListSubmissionsQuery{
		ContestID: contestID,
		Actor:     actor,
		Password:  password,
	})
	if err != nil {
		return httptransport.ListSubmissionsResponse{}, err
	}
	items := make([]httptransport.SubmissionDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, httptransport.SubmissionDTO{
			SubmissionID:  item.SubmissionID,
			ContestID:     item.ContestID,
			TextID:        item.TextID,
			AnonymousCode: item.AnonymousCode,
			Title:         item.Title,
			Content:       item.Content,
			OwnerID:       item.OwnerID,
			AuthorID:      item.AuthorID,
			SubmittedAt:   item.SubmittedAt.Format(time.RFC3339),
			Withdrawn:     item.Withdrawn,
		})
	}
	return httptransport.ListSubmissionsResponse{Items: items, Masked: result.Masked}, nil
}

// TextDeletedHandler is the synchronous entry point the text library calls
// when it cannot publish text.deleted.
func (h Handler) TextDeletedHandler(
	ctx context.Context,
	req httptransport.TextDeletedRequest,
) (httptransport.TextDeletedResponse, error) {
	result, err := h.TextDeleted.Execute(ctx, req.TextID)
	if err != nil {
		return httptransport.TextDeletedResponse{}, err
	}
	return httptransport.TextDeletedResponse{
		TextID:          req.TextID,
		DeletedCount:    result.Deleted,
		TombstonedCount: result.Tombstoned,
	}, nil
}
