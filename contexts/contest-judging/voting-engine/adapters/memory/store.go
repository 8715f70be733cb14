package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/voting-engine/domain/errors"
	"inkwell/contexts/contest-judging/voting-engine/ports"
	"inkwell/internal/platform/locks"

	"github.com/google/uuid"
)

type contestState struct {
	projection ports.ContestProjection
	public     bool
}

type Store struct {
	*locks.ContestLocks

	mu          sync.RWMutex
	votes       map[int64][]entities.Vote
	voters      map[int64]map[string]time.Time
	rankings    map[int64]entities.FinalRanking
	contests    map[int64]contestState
	submissions map[int64][]ports.SubmissionRef
	judges      map[int64]map[string]struct{}
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		ContestLocks: locks.NewContestLocks(),
		votes:        make(map[int64][]entities.Vote),
		voters:       make(map[int64]map[string]time.Time),
		rankings:     make(map[int64]entities.FinalRanking),
		contests:     make(map[int64]contestState),
		submissions:  make(map[int64][]ports.SubmissionRef),
		judges:       make(map[int64]map[string]struct{}),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) ReplaceVoteSet(_ context.Context, contestID int64, judgeKey string, castAt time.Time, votes []entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voters[contestID] == nil {
		s.voters[contestID] = make(map[string]time.Time)
	}
	s.voters[contestID][judgeKey] = castAt

	kept := make([]entities.Vote, 0, len(s.votes[contestID])+len(votes))
	for _, vote := range s.votes[contestID] {
		if vote.Judge.Key() != judgeKey {
			kept = append(kept, vote)
		}
	}
	s.votes[contestID] = append(kept, votes...)
	return nil
}

func (s *Store) ListVotes(_ context.Context, contestID int64) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Vote(nil), s.votes[contestID]...), nil
}

func (s *Store) ListVoteSet(_ context.Context, contestID int64, judgeKey string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Vote, 0)
	for _, vote := range s.votes[contestID] {
		if vote.Judge.Key() == judgeKey {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SubmissionID < items[j].SubmissionID })
	return items, nil
}

func (s *Store) ListVoters(_ context.Context, contestID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.voters[contestID]))
	for key := range s.voters[contestID] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) HasVoteSet(_ context.Context, contestID int64, judgeKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voters[contestID][judgeKey]
	return ok, nil
}

func (s *Store) DeleteVoteSet(_ context.Context, contestID int64, judgeKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]entities.Vote, 0, len(s.votes[contestID]))
	for _, vote := range s.votes[contestID] {
		if vote.Judge.Key() != judgeKey {
			kept = append(kept, vote)
		}
	}
	removed := len(s.votes[contestID]) - len(kept)
	s.votes[contestID] = kept
	delete(s.voters[contestID], judgeKey)
	return removed, nil
}

func (s *Store) DeleteByContest(_ context.Context, contestID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.votes[contestID])
	delete(s.votes, contestID)
	delete(s.voters, contestID)
	return removed, nil
}

func (s *Store) SaveFinalRanking(_ context.Context, ranking entities.FinalRanking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ranking.Standings = append([]entities.Standing(nil), ranking.Standings...)
	s.rankings[ranking.ContestID] = ranking
	return nil
}

func (s *Store) GetFinalRanking(_ context.Context, contestID int64) (entities.FinalRanking, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranking, ok := s.rankings[contestID]
	if !ok {
		return entities.FinalRanking{}, false, nil
	}
	ranking.Standings = append([]entities.Standing(nil), ranking.Standings...)
	return ranking, true, nil
}

func (s *Store) DeleteFinalRanking(_ context.Context, contestID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rankings, contestID)
	return nil
}

// SetContest seeds the contest projection used when the module runs alone.
func (s *Store) SetContest(contest ports.ContestProjection, public bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[contest.ContestID] = contestState{projection: contest, public: public}
}

func (s *Store) SetContestStatus(contestID int64, status entities.ContestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.contests[contestID]
	state.projection.Status = status
	s.contests[contestID] = state
}

func (s *Store) SetSubmissions(contestID int64, refs []ports.SubmissionRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[contestID] = append([]ports.SubmissionRef(nil), refs...)
}

func (s *Store) SetJudges(contestID int64, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	s.judges[contestID] = set
}

func (s *Store) GetContest(_ context.Context, contestID int64) (ports.ContestProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.contests[contestID]
	if !ok {
		return ports.ContestProjection{}, domainerrors.ErrContestNotFound
	}
	return state.projection, nil
}

func (s *Store) HasAccess(_ context.Context, contestID int64, userID int64, privileged bool, _ string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.contests[contestID]
	if !ok {
		return false, domainerrors.ErrContestNotFound
	}
	return privileged || state.public || (userID != 0 && state.projection.CreatorID == userID), nil
}

func (s *Store) CloseContest(_ context.Context, contestID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.contests[contestID]
	if !ok {
		return false, domainerrors.ErrContestNotFound
	}
	if state.projection.Status != entities.ContestStatusEvaluation {
		return false, nil
	}
	state.projection.Status = entities.ContestStatusClosed
	s.contests[contestID] = state
	return true, nil
}

func (s *Store) ListSubmissions(_ context.Context, contestID int64) ([]ports.SubmissionRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.SubmissionRef(nil), s.submissions[contestID]...), nil
}

func (s *Store) IsAssigned(_ context.Context, contestID int64, judge entities.JudgeIdentity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.judges[contestID][judge.Key()]
	return ok, nil
}

func (s *Store) ListAssignedKeys(_ context.Context, contestID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.judges[contestID]))
	for key := range s.judges[contestID] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}
