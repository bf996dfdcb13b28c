package datacom

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis"

	"github.com/terrariumai/brains/pkg/vec2/v1"
)

const (
	actorsContentKey = "actors.content"
	actorsScoresKey  = "actors.scores"

	updateActorEvent = "updateActor"
)

// ErrNotFound is returned for an actor the store has no snapshot of
var ErrNotFound = errors.New("actor does not exist")

// PubsubAccessLayer publishes datacom events to spectators, grouped by region
type PubsubAccessLayer interface {
	QueuePublishEvent(eventName string, payload interface{}, region vec2.Vec2) error
	BatchPublish()
	StartBatchPublishLoop(ctx context.Context)
}

// Datacom is an object that makes it easy to communicate with our
// databases. Actor snapshots and scores live in redis; every saved
// snapshot is also queued on the pubsub layer.
type Datacom struct {
	// current envirinment
	env string
	// redis client
	redisClient *redis.Client
	// pubsub access layer, may be nil
	pubsub PubsubAccessLayer
}

// Standing is one line of the leaderboard
type Standing struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// NewDatacom instantiates a new datacom object connected to the redis server
// at redisAddr
func NewDatacom(env string, redisAddr string, pubsub PubsubAccessLayer) (*Datacom, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})
	if _, err := redisClient.Ping().Result(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", redisAddr, err)
	}

	return &Datacom{
		env:         env,
		redisClient: redisClient,
		pubsub:      pubsub,
	}, nil
}

// Env returns the environment datacom was created for
func (dc *Datacom) Env() string { return dc.env }

// Close closes the redis connection
func (dc *Datacom) Close() error {
	return dc.redisClient.Close()
}
