package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
	"inkwell/internal/platform/locks"

	"github.com/google/uuid"
)

type outboxRow struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	*locks.ContestLocks

	mu sync.RWMutex

	nextID   int64
	contests map[int64]entities.Contest
	stateLog []entities.StateHistory
	outbox   []outboxRow

	stats   map[int64]entities.ContestStats
	members map[int64]map[int64]struct{}

	now func() time.Time
}

func NewStore(seed []entities.Contest) *Store {
	contests := make(map[int64]entities.Contest, len(seed))
	var maxID int64
	for _, item := range seed {
		contests[item.ContestID] = item
		if item.ContestID > maxID {
			maxID = item.ContestID
		}
	}
	return &Store{
		ContestLocks: locks.NewContestLocks(),
		nextID:       maxID,
		contests:     contests,
		stats:        make(map[int64]entities.ContestStats),
		members:      make(map[int64]map[int64]struct{}),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateContest(_ context.Context, contest entities.Contest) (entities.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	contest.ContestID = s.nextID
	s.contests[contest.ContestID] = contest
	return contest, nil
}

// UpdateContest never writes Status; status only moves through
// CompareAndSetStatus.
func (s *Store) UpdateContest(_ context.Context, contest entities.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.contests[contest.ContestID]
	if !exists {
		return domainerrors.ErrContestNotFound
	}
	contest.Status = current.Status
	contest.CreatorID = current.CreatorID
	contest.CreatedAt = current.CreatedAt
	s.contests[contest.ContestID] = contest
	return nil
}

func (s *Store) GetContest(_ context.Context, contestID int64) (entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.contests[contestID]
	if !exists {
		return entities.Contest{}, domainerrors.ErrContestNotFound
	}
	return item, nil
}

func (s *Store) ListContests(_ context.Context, filter ports.ContestFilter) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Contest, 0, len(s.contests))
	for _, item := range s.contests {
		if !filter.All && !item.IsPublic && !item.IsCreator(filter.PublicOrCreatorID) {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ContestID > items[j].ContestID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) DeleteContest(_ context.Context, contestID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contests[contestID]; !exists {
		return domainerrors.ErrContestNotFound
	}
	delete(s.contests, contestID)
	delete(s.stats, contestID)
	delete(s.members, contestID)
	return nil
}

func (s *Store) CompareAndSetStatus(
	_ context.Context,
	contestID int64,
	from entities.ContestStatus,
	to entities.ContestStatus,
	at time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.contests[contestID]
	if !exists {
		return false, domainerrors.ErrContestNotFound
	}
	if item.Status != from {
		return false, nil
	}
	item.Status = to
	item.UpdatedAt = at.UTC()
	s.contests[contestID] = item
	return true, nil
}

func (s *Store) ListExpiredOpen(_ context.Context, now time.Time, limit int) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Contest, 0)
	for _, item := range s.contests {
		if item.Expired(now) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].EndsAt.Before(*items[j].EndsAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) AppendState(_ context.Context, item entities.StateHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateLog = append(s.stateLog, item)
	return nil
}

func (s *Store) ListStates(_ context.Context, contestID int64) ([]entities.StateHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.StateHistory, 0)
	for _, item := range s.stateLog {
		if item.ContestID == contestID {
			items = append(items, item)
		}
	}
	return items, nil
}

// WithinTx runs fn directly; every store call is individually atomic.
func (s *Store) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outbox = append(s.outbox, outboxRow{message: ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt,
	}})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			return nil
		}
	}
	return domainerrors.ErrInvalidContestInput
}

// PendingEventTypes lists unpublished outbox event types in append order.
func (s *Store) PendingEventTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0)
	for _, row := range s.outbox {
		if !row.published {
			types = append(types, row.message.EventType)
		}
	}
	return types
}

func (s *Store) SetContestStats(contestID int64, stats entities.ContestStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[contestID] = stats
}

func (s *Store) SetMember(contestID int64, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[contestID] == nil {
		s.members[contestID] = make(map[int64]struct{})
	}
	s.members[contestID][userID] = struct{}{}
}

func (s *Store) ContestStats(_ context.Context, contestIDs []int64) (map[int64]entities.ContestStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]entities.ContestStats, len(contestIDs))
	for _, id := range contestIDs {
		out[id] = s.stats[id]
	}
	return out, nil
}

func (s *Store) IsMember(_ context.Context, contestID int64, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[contestID][userID]
	return ok, nil
}

// SetNow pins the store clock; tests use it to drive the expiry sweep.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = func() time.Time { return now.UTC() }
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

func (s *Store) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}
