package queries

import (
	"context"
	"log/slog"
	"time"

	application "inkwell/contexts/contest-judging/submission-manager/application"
	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	"inkwell/contexts/contest-judging/submission-manager/ports"
)

type ListSubmissionsQuery struct {
	ContestID int64
	Actor     entities.Actor
	Password  string
}

// SubmissionView is one listing row. OwnerID and AuthorID are nil when the
// viewer only gets anonymous codes.
type SubmissionView struct {
	SubmissionID  int64
	ContestID     int64
	TextID        int64
	AnonymousCode string
	Title         string
	Content       string
	OwnerID       *int64
	AuthorID      *int64
	SubmittedAt   time.Time
	Withdrawn     bool
}

type ListSubmissionsResult struct {
	Items  []SubmissionView
	Masked bool
}

type ListSubmissionsUseCase struct {
	Submissions ports.SubmissionRepository
	Contests    ports.ContestDirectory
	Texts       ports.TextCatalog
	Codes       ports.AnonymousCoder
	Logger      *slog.Logger
}

func (uc ListSubmissionsUseCase) Execute(ctx context.Context, query ListSubmissionsQuery) (ListSubmissionsResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	contest, err := uc.Contests.GetContest(ctx, query.ContestID)
	if err != nil {
		return ListSubmissionsResult{}, err
	}

	viewer := entities.Viewer{
		Privileged: query.Actor.Privileged,
		IsCreator:  query.Actor.UserID != 0 && contest.CreatorID == query.Actor.UserID,
	}
	if !viewer.Privileged && !viewer.IsCreator && contest.Status != entities.ContestStatusOpen {
		viewer.HasAccess, err = uc.Contests.HasAccess(ctx, contest.ContestID, query.Actor.UserID, false, query.Password)
		if err != nil {
			return ListSubmissionsResult{}, err
		}
	}
	visibility := entities.ListingVisibility(contest.Status, viewer)
	if visibility == entities.VisibilityDenied {
		return ListSubmissionsResult{}, domainerrors.ErrForbidden
	}

	items, err := uc.Submissions.ListByContest(ctx, contest.ContestID)
	if err != nil {
		return ListSubmissionsResult{}, err
	}
	textIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Active() {
			textIDs = append(textIDs, item.TextID)
		}
	}
	texts := map[int64]entities.Text{}
	if len(textIDs) > 0 {
		texts, err = uc.Texts.GetTexts(ctx, textIDs)
		if err != nil {
			return ListSubmissionsResult{}, err
		}
	}

	masked := visibility == entities.VisibilityMasked
	views := make([]SubmissionView, 0, len(items))
	for _, item := range items {
		view := SubmissionView{
			SubmissionID:  item.SubmissionID,
			ContestID:     item.ContestID,
			TextID:        item.TextID,
			AnonymousCode: uc.Codes.Code(item.ContestID, item.SubmissionID),
			Title:         entities.WithdrawnPlaceholder,
			Content:       entities.WithdrawnPlaceholder,
			SubmittedAt:   item.SubmittedAt.UTC(),
			Withdrawn:     item.Tombstoned,
		}
		if text, ok := texts[item.TextID]; ok && item.Active() {
			view.Title = text.Title
			view.Content = text.Content
		}
		if masked {
			view.TextID = 0
		} else {
			ownerID, authorID := item.OwnerID, item.AuthorID
			view.OwnerID = &ownerID
			view.AuthorID = &authorID
		}
		views = append(views, view)
	}

	logger.Debug("contest submissions listed",
		"event", "contest_submissions_listed",
		"module", "contest-judging/submission-manager",
		"layer", "application",
		"contest_id", contest.ContestID,
		"count", len(views),
		"masked", masked,
	)
	return ListSubmissionsResult{Items: views, Masked: masked}, nil
}
