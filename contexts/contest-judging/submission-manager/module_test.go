package submissionmanager_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	submissionmanager "inkwell/contexts/contest-judging/submission-manager"
	"inkwell/contexts/contest-judging/submission-manager/application/commands"
	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	"inkwell/contexts/contest-judging/submission-manager/ports"
	httptransport "inkwell/contexts/contest-judging/submission-manager/transport/http"
	contractsv1 "inkwell/contracts/events/v1"
	"inkwell/internal/platform/messaging"
)

const (
	creatorID = int64(10)
	aliceID   = int64(20)
	bobID     = int64(30)
)

var (
	alice    = entities.Actor{UserID: aliceID}
	bob      = entities.Actor{UserID: bobID}
	operator = entities.Actor{UserID: 1, Privileged: true}
)

func newModule(t *testing.T, contest ports.ContestProjection) submissionmanager.Module {
	t.Helper()
	module := submissionmanager.NewInMemoryModule(nil)
	if contest.CreatorID == 0 {
		contest.CreatorID = creatorID
	}
	if contest.Status == "" {
		contest.Status = entities.ContestStatusOpen
	}
	module.Store.SetContest(contest, true, "")
	module.Store.SetText(entities.Text{TextID: 100, OwnerID: aliceID, AuthorID: aliceID, Title: "Rain", Content: "It fell."})
	module.Store.SetText(entities.Text{TextID: 101, OwnerID: aliceID, AuthorID: aliceID, Title: "Snow", Content: "It drifted."})
	module.Store.SetText(entities.Text{TextID: 200, OwnerID: bobID, AuthorID: bobID, Title: "Sun", Content: "It burned."})
	return module
}

func submit(module submissionmanager.Module, actor entities.Actor, contestID, textID int64) (httptransport.SubmitResponse, error) {
	return module.Handler.SubmitHandler(context.Background(), actor, contestID, httptransport.SubmitRequest{TextID: textID})
}

func TestSubmitCreatesLinkWithAnonymousCode(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1})

	resp, err := submit(module, alice, 1, 100)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if resp.Submission.SubmissionID == 0 || resp.Submission.AnonymousCode == "" {
		t.Fatalf("unexpected submission: %+v", resp.Submission)
	}
	if *resp.Submission.AuthorID != aliceID || *resp.Submission.OwnerID != aliceID {
		t.Fatalf("expected owner and author to come from the text: %+v", resp.Submission)
	}
}

func TestSubmitRejectsClosedStatusesWithoutPartialRows(t *testing.T) {
	for _, status := range []entities.ContestStatus{entities.ContestStatusEvaluation, entities.ContestStatusClosed} {
		module := newModule(t, ports.ContestProjection{ContestID: 1, Status: status})
		if _, err := submit(module, alice, 1, 100); !errors.Is(err, domainerrors.ErrContestNotOpen) {
			t.Fatalf("%s: expected contest not open, got %v", status, err)
		}
		items, err := module.Store.ListByContest(context.Background(), 1)
		if err != nil || len(items) != 0 {
			t.Fatalf("%s: expected no rows, got %d err=%v", status, len(items), err)
		}
	}
}

func TestSubmitFailureOrder(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1, Status: entities.ContestStatusEvaluation})

	if _, err := submit(module, alice, 404, 999); !errors.Is(err, domainerrors.ErrContestNotFound) {
		t.Fatalf("expected contest not found first, got %v", err)
	}
	if _, err := submit(module, alice, 1, 999); !errors.Is(err, domainerrors.ErrTextNotFound) {
		t.Fatalf("expected text not found, got %v", err)
	}
	if _, err := submit(module, alice, 1, 200); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ownership to be checked before status, got %v", err)
	}
	if _, err := submit(module, entities.Actor{}, 1, 100); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected anonymous submit to be forbidden, got %v", err)
	}
}

func TestSubmitDuplicateIsRejectedEvenForOperators(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1})
	if _, err := submit(module, alice, 1, 100); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := submit(module, alice, 1, 100); !errors.Is(err, domainerrors.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if _, err := submit(module, operator, 1, 100); !errors.Is(err, domainerrors.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate for operator, got %v", err)
	}
}

func TestSubmitAuthorLimitAndJudgeExclusion(t *testing.T) {
	module := newModule(t, ports.ContestProjection{
		ContestID:               1,
		OneSubmissionPerAuthor:  true,
		JudgesExcludedAsAuthors: true,
	})
	module.Store.SetJudge(1, bobID)

	if _, err := submit(module, alice, 1, 100); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := submit(module, alice, 1, 101); !errors.Is(err, domainerrors.ErrAuthorLimitExceeded) {
		t.Fatalf("expected author limit, got %v", err)
	}
	if _, err := submit(module, bob, 1, 200); !errors.Is(err, domainerrors.ErrJudgeCannotAuthor) {
		t.Fatalf("expected judge exclusion, got %v", err)
	}
	if _, err := submit(module, operator, 1, 101); err != nil {
		t.Fatalf("expected operator to bypass author limit, got %v", err)
	}
	if _, err := submit(module, operator, 1, 200); err != nil {
		t.Fatalf("expected operator to bypass judge exclusion, got %v", err)
	}
}

func TestOperatorSubmitsIntoEvaluation(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1, Status: entities.ContestStatusEvaluation})
	resp, err := submit(module, operator, 1, 200)
	if err != nil {
		t.Fatalf("operator submit failed: %v", err)
	}
	if *resp.Submission.OwnerID != bobID {
		t.Fatalf("expected owner to stay the text owner, got %d", *resp.Submission.OwnerID)
	}
}

func TestConcurrentDuplicateSubmitsCreateOneRow(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := submit(module, alice, 1, 100); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful submit, got %d", succeeded)
	}
}

func TestWithdrawDependsOnContestStatus(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1})
	first, err := submit(module, alice, 1, 100)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := submit(module, alice, 1, 101)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := module.Handler.WithdrawHandler(context.Background(), bob, 1, first.Submission.SubmissionID); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected non-owner withdraw to be forbidden, got %v", err)
	}
	resp, err := module.Handler.WithdrawHandler(context.Background(), alice, 1, first.Submission.SubmissionID)
	if err != nil || resp.Outcome != string(commands.WithdrawDeleted) {
		t.Fatalf("expected delete while open, got %+v err=%v", resp, err)
	}
	if _, err := module.Store.GetSubmission(context.Background(), first.Submission.SubmissionID); !errors.Is(err, domainerrors.ErrSubmissionNotFound) {
		t.Fatalf("expected row to be gone, got %v", err)
	}

	module.Store.SetContestStatus(1, entities.ContestStatusEvaluation)
	resp, err = module.Handler.WithdrawHandler(context.Background(), alice, 1, second.Submission.SubmissionID)
	if err != nil || resp.Outcome != string(commands.WithdrawTombstoned) {
		t.Fatalf("expected tombstone during evaluation, got %+v err=%v", resp, err)
	}
	resp, err = module.Handler.WithdrawHandler(context.Background(), alice, 1, second.Submission.SubmissionID)
	if err != nil || resp.Outcome != string(commands.WithdrawUnchanged) {
		t.Fatalf("expected repeated withdraw to be a no-op, got %+v err=%v", resp, err)
	}

	stored, err := module.Store.GetSubmission(context.Background(), second.Submission.SubmissionID)
	if err != nil || !stored.Tombstoned || stored.WithdrawnAt == nil {
		t.Fatalf("expected tombstoned row, got %+v err=%v", stored, err)
	}
}

func TestListingMasksIdentitiesDuringEvaluation(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1})
	creator := entities.Actor{UserID: creatorID}
	resp, err := submit(module, alice, 1, 100)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := submit(module, bob, 1, 200); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := module.Handler.ListSubmissionsHandler(context.Background(), alice, 1, ""); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected participants to be denied while open, got %v", err)
	}
	open, err := module.Handler.ListSubmissionsHandler(context.Background(), creator, 1, "")
	if err != nil || open.Masked || open.Items[0].AuthorID == nil {
		t.Fatalf("expected creator to see identities while open, got %+v err=%v", open, err)
	}

	module.Store.SetContestStatus(1, entities.ContestStatusEvaluation)
	masked, err := module.Handler.ListSubmissionsHandler(context.Background(), creator, 1, "")
	if err != nil || !masked.Masked {
		t.Fatalf("expected masked listing for creator, got %+v err=%v", masked, err)
	}
	for _, item := range masked.Items {
		if item.AuthorID != nil || item.OwnerID != nil || item.TextID != 0 || item.AnonymousCode == "" {
			t.Fatalf("expected anonymous item, got %+v", item)
		}
	}
	if masked.Items[0].AnonymousCode != resp.Submission.AnonymousCode {
		t.Fatalf("anonymous code must be stable, got %q want %q", masked.Items[0].AnonymousCode, resp.Submission.AnonymousCode)
	}

	operatorView, err := module.Handler.ListSubmissionsHandler(context.Background(), operator, 1, "")
	if err != nil || operatorView.Masked || operatorView.Items[0].AuthorID == nil {
		t.Fatalf("expected operator to see identities, got %+v err=%v", operatorView, err)
	}

	module.Store.SetContestStatus(1, entities.ContestStatusClosed)
	closed, err := module.Handler.ListSubmissionsHandler(context.Background(), bob, 1, "")
	if err != nil || closed.Masked || *closed.Items[1].AuthorID != bobID {
		t.Fatalf("expected revealed listing after close, got %+v err=%v", closed, err)
	}
}

func TestTextDeletedAppliesWithdrawalRulePerContest(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1})
	module.Store.SetContest(ports.ContestProjection{ContestID: 2, CreatorID: creatorID, Status: entities.ContestStatusOpen}, true, "")
	if _, err := submit(module, alice, 1, 100); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := submit(module, alice, 2, 100); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	module.Store.SetContestStatus(2, entities.ContestStatusEvaluation)
	module.Store.DeleteText(100)

	event, err := messaging.NewEnvelope(contractsv1.TopicTextDeleted, "text-library", "text_id", "100", contractsv1.TextDeleted{TextID: 100, DeletedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if err := module.TextDeletedWorker.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle text.deleted failed: %v", err)
	}

	if items, _ := module.Store.ListByContest(context.Background(), 1); len(items) != 0 {
		t.Fatalf("expected open contest link to be deleted, got %+v", items)
	}
	items, _ := module.Store.ListByContest(context.Background(), 2)
	if len(items) != 1 || !items[0].Tombstoned {
		t.Fatalf("expected evaluation contest link to be tombstoned, got %+v", items)
	}

	listing, err := module.Handler.ListSubmissionsHandler(context.Background(), operator, 2, "")
	if err != nil || listing.Items[0].Title != entities.WithdrawnPlaceholder || listing.Items[0].Content != entities.WithdrawnPlaceholder {
		t.Fatalf("expected placeholder for withdrawn text, got %+v err=%v", listing, err)
	}

	stats, err := module.Handler.ContestStats.Execute(context.Background(), []int64{1, 2})
	if err != nil || stats[2].TextCount != 0 || stats[1].TextCount != 0 {
		t.Fatalf("expected tombstoned links to be excluded from stats, got %+v err=%v", stats, err)
	}
}

func TestContestDeletedPurgesLinks(t *testing.T) {
	module := newModule(t, ports.ContestProjection{ContestID: 1})
	if _, err := submit(module, alice, 1, 100); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	event, err := messaging.NewEnvelope(contractsv1.TopicContestDeleted, "contest-registry", "contest_id", "1", contractsv1.ContestDeleted{ContestID: 1, DeletedBy: creatorID, DeletedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if err := module.ContestDeletedWorker.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle contest.deleted failed: %v", err)
	}
	if items, _ := module.Store.ListByContest(context.Background(), 1); len(items) != 0 {
		t.Fatalf("expected purge, got %+v", items)
	}
}
