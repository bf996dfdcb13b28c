package datacom

import (
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis"

	"github.com/terrariumai/brains/pkg/vec2/v1"
)

// SaveSnapshot stores the snapshot and score of an actor and queues the
// snapshot for publishing on its region
func (dc *Datacom) SaveSnapshot(id string, score int, region vec2.Vec2, snapshot interface{}) error {
	content, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot of %s: %w", id, err)
	}

	_, err = dc.redisClient.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.HSet(actorsContentKey, id, string(content))
		pipe.ZAdd(actorsScoresKey, redis.Z{
			Score:  float64(score),
			Member: id,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot of %s: %w", id, err)
	}

	// Send update
	if dc.pubsub != nil {
		if err := dc.pubsub.QueuePublishEvent(updateActorEvent, json.RawMessage(content), region); err != nil {
			return fmt.Errorf("queue snapshot of %s: %w", id, err)
		}
	}
	return nil
}

// GetSnapshot returns the stored snapshot of an actor as raw JSON
func (dc *Datacom) GetSnapshot(id string) (json.RawMessage, error) {
	content, err := dc.redisClient.HGet(actorsContentKey, id).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("get snapshot of %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot of %s: %w", id, err)
	}
	return json.RawMessage(content), nil
}

// Leaderboard returns the n highest scores, best first
func (dc *Datacom) Leaderboard(n int) ([]Standing, error) {
	if n <= 0 {
		return []Standing{}, nil
	}
	zs, err := dc.redisClient.ZRevRangeWithScores(actorsScoresKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	standings := make([]Standing, 0, len(zs))
	for _, z := range zs {
		standings = append(standings, standingFromZ(z))
	}
	return standings, nil
}

// Reset removes every stored snapshot and score
func (dc *Datacom) Reset() error {
	if err := dc.redisClient.Del(actorsContentKey, actorsScoresKey).Err(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}
