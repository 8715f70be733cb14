package queries

import (
	"context"
	"log/slog"

	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	"inkwell/contexts/contest-judging/submission-manager/ports"
)

// SubmissionRef is the unmasked record handed to the voting engine.
type SubmissionRef struct {
	entities.Submission
	AnonymousCode string
}

type ContestSubmissionsUseCase struct {
	Submissions ports.SubmissionRepository
	Codes       ports.AnonymousCoder
	Logger      *slog.Logger
}

func (uc ContestSubmissionsUseCase) Execute(ctx context.Context, contestID int64) ([]SubmissionRef, error) {
	items, err := uc.Submissions.ListByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	refs := make([]SubmissionRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, SubmissionRef{
			Submission:    item,
			AnonymousCode: uc.Codes.Code(item.ContestID, item.SubmissionID),
		})
	}
	return refs, nil
}

type ContestStatsUseCase struct {
	Submissions ports.SubmissionRepository
	Logger      *slog.Logger
}

func (uc ContestStatsUseCase) Execute(ctx context.Context, contestIDs []int64) (map[int64]entities.ContestStats, error) {
	items, err := uc.Submissions.ListByContests(ctx, contestIDs)
	if err != nil {
		return nil, err
	}
	grouped := make(map[int64][]entities.Submission, len(contestIDs))
	for _, item := range items {
		grouped[item.ContestID] = append(grouped[item.ContestID], item)
	}
	out := make(map[int64]entities.ContestStats, len(contestIDs))
	for _, id := range contestIDs {
		out[id] = entities.Stats(grouped[id])
	}
	return out, nil
}

type ParticipationUseCase struct {
	Submissions ports.SubmissionRepository
}

func (uc ParticipationUseCase) IsParticipant(ctx context.Context, contestID int64, userID int64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return uc.Submissions.HasParticipant(ctx, contestID, userID)
}
