package datacom

import (
	"context"
	"errors"
	"time"

	pubnub "github.com/pubnub/go"
	"go.uber.org/zap"

	"github.com/terrariumai/brains/pkg/vec2/v1"
)

const (
	defaultPublishDelay = 250 * time.Millisecond
	pubQueueSize        = 1024
)

// ErrQueueFull is returned when the publish queue cannot take another event
var ErrQueueFull = errors.New("publish queue is full")

type pubMsg struct {
	Channel string
	Msg     map[string]interface{}
}

type batchPubMsg struct {
	Events []interface{} `json:"events"`
}

// PubnubPAL specific struct for pubnub
type PubnubPAL struct {
	pubnubClient *pubnub.PubNub
	env          string
	pubChan      chan pubMsg
	publishDelay time.Duration
	logger       *zap.Logger
	// publish sends one batch; replaced in tests
	publish func(channel string, message interface{}) error
}

// NewPubnubPAL Creates a new pubnub specific Pubsub Access Layer. Nothing is
// published until StartBatchPublishLoop runs.
func NewPubnubPAL(env string, subkey string, pubkey string, publishDelay time.Duration, logger *zap.Logger) *PubnubPAL {
	// Setup pubnub
	config := pubnub.NewConfig()
	config.SubscribeKey = subkey
	config.PublishKey = pubkey
	if publishDelay <= 0 {
		publishDelay = defaultPublishDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PubnubPAL{
		pubnubClient: pubnub.NewPubNub(config),
		env:          env,
		pubChan:      make(chan pubMsg, pubQueueSize),
		publishDelay: publishDelay,
		logger:       logger,
	}
	p.publish = p.PublishMessage
	return p
}

// QueuePublishEvent queues an event to be published as a batch later on the
// channel of region
func (p *PubnubPAL) QueuePublishEvent(eventName string, payload interface{}, region vec2.Vec2) error {
	// Nothing drains the queue when we are training or testing
	if !p.publishes() {
		return nil
	}

	msg := map[string]interface{}{
		"eventName": eventName,
		"actorData": payload,
	}

	select {
	case p.pubChan <- pubMsg{region.String(), msg}:
		return nil
	default:
		return ErrQueueFull
	}
}

// PublishMessage publishes one message on a pubnub channel
func (p *PubnubPAL) PublishMessage(channel string, message interface{}) error {
	_, _, err := p.pubnubClient.Publish().
		Channel(channel).Message(message).Execute()

	return err
}

// BatchPublish drains the queue and publishes one batch per region channel
func (p *PubnubPAL) BatchPublish() {
	if len(p.pubChan) == 0 {
		return
	}
	// maps regionId -> batchMessage
	batchMap := make(map[string]*batchPubMsg)

	// process all messages in channel
	for len(p.pubChan) > 0 {
		msg := <-p.pubChan
		if b, ok := batchMap[msg.Channel]; ok {
			b.Events = append(b.Events, msg.Msg)
		} else {
			batchMap[msg.Channel] = &batchPubMsg{
				Events: []interface{}{msg.Msg},
			}
		}
	}

	// send batches
	for channel, batch := range batchMap {
		if err := p.publish(channel, batch); err != nil {
			p.logger.Error("issue publishing batch",
				zap.String("channel", channel),
				zap.Int("events", len(batch.Events)),
				zap.Error(err),
			)
		}
	}
}

// StartBatchPublishLoop publishes in batches per region every publishDelay
// until ctx is done. It returns at once when training or testing.
func (p *PubnubPAL) StartBatchPublishLoop(ctx context.Context) {
	if !p.publishes() {
		return
	}
	ticker := time.NewTicker(p.publishDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.BatchPublish()
		case <-ctx.Done():
			// last flush so no queued events are lost on shutdown
			p.BatchPublish()
			return
		}
	}
}

// publishes is false for envs that never publish to pubnub
func (p *PubnubPAL) publishes() bool {
	return p.env != "training" && p.env != "testing"
}
