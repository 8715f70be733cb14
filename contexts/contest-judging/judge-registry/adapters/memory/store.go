package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkwell/contexts/contest-judging/judge-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	"inkwell/contexts/contest-judging/judge-registry/ports"
	"inkwell/internal/platform/locks"
)

type assignmentKey struct {
	contestID int64
	judgeKey  string
}

type Store struct {
	*locks.ContestLocks

	mu          sync.RWMutex
	assignments map[assignmentKey]entities.Assignment
	contests    map[int64]ports.ContestProjection
	voted       map[assignmentKey]struct{}
}

func NewStore() *Store {
	return &Store{
		ContestLocks: locks.NewContestLocks(),
		assignments:  make(map[assignmentKey]entities.Assignment),
		contests:     make(map[int64]ports.ContestProjection),
		voted:        make(map[assignmentKey]struct{}),
	}
}

func (s *Store) CreateAssignment(_ context.Context, assignment entities.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey{contestID: assignment.ContestID, judgeKey: assignment.Judge.Key()}
	if _, exists := s.assignments[key]; exists {
		return domainerrors.ErrJudgeAlreadyAssigned
	}
	s.assignments[key] = assignment
	return nil
}

func (s *Store) DeleteAssignment(_ context.Context, contestID int64, judgeKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey{contestID: contestID, judgeKey: judgeKey}
	if _, exists := s.assignments[key]; !exists {
		return domainerrors.ErrJudgeNotFound
	}
	delete(s.assignments, key)
	return nil
}

func (s *Store) ListAssignments(_ context.Context, contestID int64) ([]entities.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Assignment, 0)
	for key, item := range s.assignments {
		if key.contestID == contestID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AssignedAt.Equal(items[j].AssignedAt) {
			return items[i].AssignedAt.Before(items[j].AssignedAt)
		}
		return items[i].Judge.Key() < items[j].Judge.Key()
	})
	return items, nil
}

func (s *Store) IsAssigned(_ context.Context, contestID int64, judgeKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assignments[assignmentKey{contestID: contestID, judgeKey: judgeKey}]
	return ok, nil
}

func (s *Store) IsUserAssigned(_ context.Context, contestID int64, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, item := range s.assignments {
		if key.contestID == contestID && item.Judge.Kind == entities.JudgeKindHuman && item.Judge.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteByContest(_ context.Context, contestID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.assignments {
		if key.contestID == contestID {
			delete(s.assignments, key)
			removed++
		}
	}
	return removed, nil
}

// SetContest seeds the contest projection used when the module runs alone.
func (s *Store) SetContest(contest ports.ContestProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[contest.ContestID] = contest
}

// SetVoted marks a judge as holding a vote set.
func (s *Store) SetVoted(contestID int64, judgeKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voted[assignmentKey{contestID: contestID, judgeKey: judgeKey}] = struct{}{}
}

func (s *Store) GetContest(_ context.Context, contestID int64) (ports.ContestProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contest, ok := s.contests[contestID]
	if !ok {
		return ports.ContestProjection{}, domainerrors.ErrContestNotFound
	}
	return contest, nil
}

func (s *Store) HasVoteSet(_ context.Context, contestID int64, judgeKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voted[assignmentKey{contestID: contestID, judgeKey: judgeKey}]
	return ok, nil
}

func (s *Store) DropVoteSet(_ context.Context, contestID int64, judgeKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.voted, assignmentKey{contestID: contestID, judgeKey: judgeKey})
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
