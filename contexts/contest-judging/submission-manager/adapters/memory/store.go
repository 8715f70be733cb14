package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	"inkwell/contexts/contest-judging/submission-manager/ports"
	"inkwell/internal/platform/locks"
)

type contestAccess struct {
	projection ports.ContestProjection
	public     bool
	password   string
}

type Store struct {
	*locks.ContestLocks

	mu sync.RWMutex

	nextID      int64
	submissions map[int64]entities.Submission

	contests map[int64]contestAccess
	texts    map[int64]entities.Text
	judges   map[int64]map[int64]struct{}
}

func NewStore() *Store {
	return &Store{
		ContestLocks: locks.NewContestLocks(),
		submissions:  make(map[int64]entities.Submission),
		contests:     make(map[int64]contestAccess),
		texts:        make(map[int64]entities.Text),
		judges:       make(map[int64]map[int64]struct{}),
	}
}

func (s *Store) CreateSubmission(_ context.Context, submission entities.Submission) (entities.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.submissions {
		if item.ContestID == submission.ContestID && item.TextID == submission.TextID {
			return entities.Submission{}, domainerrors.ErrDuplicateSubmission
		}
	}
	s.nextID++
	submission.SubmissionID = s.nextID
	s.submissions[submission.SubmissionID] = submission
	return submission, nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID int64) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.submissions[submissionID]
	if !ok {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return item, nil
}

func (s *Store) FindByContestAndText(_ context.Context, contestID int64, textID int64) (entities.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.submissions {
		if item.ContestID == contestID && item.TextID == textID {
			return item, true, nil
		}
	}
	return entities.Submission{}, false, nil
}

func (s *Store) ListByContest(_ context.Context, contestID int64) ([]entities.Submission, error) {
	return s.filter(func(item entities.Submission) bool { return item.ContestID == contestID }), nil
}

func (s *Store) ListByContests(_ context.Context, contestIDs []int64) ([]entities.Submission, error) {
	wanted := make(map[int64]struct{}, len(contestIDs))
	for _, id := range contestIDs {
		wanted[id] = struct{}{}
	}
	return s.filter(func(item entities.Submission) bool {
		_, ok := wanted[item.ContestID]
		return ok
	}), nil
}

func (s *Store) ListByText(_ context.Context, textID int64) ([]entities.Submission, error) {
	return s.filter(func(item entities.Submission) bool { return item.TextID == textID }), nil
}

func (s *Store) CountActiveByAuthor(_ context.Context, contestID int64, authorID int64) (int, error) {
	items := s.filter(func(item entities.Submission) bool {
		return item.ContestID == contestID && item.AuthorID == authorID && item.Active()
	})
	return len(items), nil
}

func (s *Store) HasParticipant(_ context.Context, contestID int64, userID int64) (bool, error) {
	items := s.filter(func(item entities.Submission) bool {
		return item.ContestID == contestID && (item.OwnerID == userID || item.AuthorID == userID)
	})
	return len(items) > 0, nil
}

func (s *Store) TombstoneSubmission(_ context.Context, submissionID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.submissions[submissionID]
	if !ok {
		return domainerrors.ErrSubmissionNotFound
	}
	withdrawnAt := at.UTC()
	item.Tombstoned = true
	item.WithdrawnAt = &withdrawnAt
	s.submissions[submissionID] = item
	return nil
}

func (s *Store) DeleteSubmission(_ context.Context, submissionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.submissions[submissionID]; !ok {
		return domainerrors.ErrSubmissionNotFound
	}
	delete(s.submissions, submissionID)
	return nil
}

func (s *Store) DeleteByContest(_ context.Context, contestID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, item := range s.submissions {
		if item.ContestID == contestID {
			delete(s.submissions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) filter(keep func(entities.Submission) bool) []entities.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Submission, 0)
	for _, item := range s.submissions {
		if keep(item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SubmissionID < items[j].SubmissionID })
	return items
}

// SetContest seeds the contest projection used when the module runs alone.
func (s *Store) SetContest(projection ports.ContestProjection, public bool, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[projection.ContestID] = contestAccess{projection: projection, public: public, password: password}
}

func (s *Store) SetContestStatus(contestID int64, status entities.ContestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.contests[contestID]
	item.projection.Status = status
	s.contests[contestID] = item
}

func (s *Store) SetText(text entities.Text) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[text.TextID] = text
}

func (s *Store) SetJudge(contestID int64, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.judges[contestID] == nil {
		s.judges[contestID] = make(map[int64]struct{})
	}
	s.judges[contestID][userID] = struct{}{}
}

func (s *Store) GetContest(_ context.Context, contestID int64) (ports.ContestProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.contests[contestID]
	if !ok {
		return ports.ContestProjection{}, domainerrors.ErrContestNotFound
	}
	return item.projection, nil
}

func (s *Store) HasAccess(ctx context.Context, contestID int64, userID int64, privileged bool, password string) (bool, error) {
	s.mu.RLock()
	item, ok := s.contests[contestID]
	_, judge := s.judges[contestID][userID]
	s.mu.RUnlock()
	if !ok {
		return false, domainerrors.ErrContestNotFound
	}
	if privileged || (userID != 0 && item.projection.CreatorID == userID) || judge {
		return true, nil
	}
	if item.password != "" {
		return password == item.password, nil
	}
	if item.public {
		return true, nil
	}
	return s.HasParticipant(ctx, contestID, userID)
}

func (s *Store) IsUserAssigned(_ context.Context, contestID int64, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.judges[contestID][userID]
	return ok, nil
}

func (s *Store) GetText(_ context.Context, textID int64) (entities.Text, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.texts[textID]
	if !ok {
		return entities.Text{}, domainerrors.ErrTextNotFound
	}
	return item, nil
}

func (s *Store) GetTexts(_ context.Context, textIDs []int64) (map[int64]entities.Text, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]entities.Text, len(textIDs))
	for _, id := range textIDs {
		if item, ok := s.texts[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

// DeleteText removes a text from the seeded catalog.
func (s *Store) DeleteText(textID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.texts, textID)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
