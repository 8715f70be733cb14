package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	"inkwell/contexts/contest-judging/voting-engine/ports"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

// RankingCache stores frozen rankings as JSON under one key per contest.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RankingCache{client: client, ttl: ttl, prefix: "inkwell:contest-ranking:"}
}

type cachedStanding struct {
	SubmissionID int64 `json:"submission_id"`
	Rank         int   `json:"rank"`
	Points       int   `json:"points"`
	FirstPlaces  int   `json:"first_places"`
	SecondPlaces int   `json:"second_places"`
	ThirdPlaces  int   `json:"third_places"`
}

type cachedRanking struct {
	ContestID int64            `json:"contest_id"`
	FrozenAt  time.Time        `json:"frozen_at"`
	Standings []cachedStanding `json:"standings"`
}

func (c *RankingCache) key(contestID int64) string {
	return fmt.Sprintf("%s%d", c.prefix, contestID)
}

func (c *RankingCache) Get(ctx context.Context, contestID int64) (entities.FinalRanking, bool, error) {
	raw, err := c.client.Get(ctx, c.key(contestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.FinalRanking{}, false, nil
	}
	if err != nil {
		return entities.FinalRanking{}, false, fmt.Errorf("redis get ranking: %w", err)
	}
	var cached cachedRanking
	if err := json.Unmarshal(raw, &cached); err != nil {
		return entities.FinalRanking{}, false, fmt.Errorf("decode cached ranking: %w", err)
	}
	ranking := entities.FinalRanking{
		ContestID: cached.ContestID,
		FrozenAt:  cached.FrozenAt.UTC(),
		Standings: make([]entities.Standing, 0, len(cached.Standings)),
	}
	for _, item := range cached.Standings {
		ranking.Standings = append(ranking.Standings, entities.Standing{
			SubmissionID: item.SubmissionID,
			Rank:         item.Rank,
			Points:       item.Points,
			FirstPlaces:  item.FirstPlaces,
			SecondPlaces: item.SecondPlaces,
			ThirdPlaces:  item.ThirdPlaces,
		})
	}
	return ranking, true, nil
}

func (c *RankingCache) Set(ctx context.Context, ranking entities.FinalRanking) error {
	cached := cachedRanking{
		ContestID: ranking.ContestID,
		FrozenAt:  ranking.FrozenAt.UTC(),
		Standings: make([]cachedStanding, 0, len(ranking.Standings)),
	}
	for _, item := range ranking.Standings {
		cached.Standings = append(cached.Standings, cachedStanding{
			SubmissionID: item.SubmissionID,
			Rank:         item.Rank,
			Points:       item.Points,
			FirstPlaces:  item.FirstPlaces,
			SecondPlaces: item.SecondPlaces,
			ThirdPlaces:  item.ThirdPlaces,
		})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(ranking.ContestID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set ranking: %w", err)
	}
	return nil
}

func (c *RankingCache) Delete(ctx context.Context, contestID int64) error {
	if err := c.client.Del(ctx, c.key(contestID)).Err(); err != nil {
		return fmt.Errorf("redis delete ranking: %w", err)
	}
	return nil
}

var _ ports.RankingCache = (*RankingCache)(nil)
