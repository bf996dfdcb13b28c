package stadium

import (
	"sync"
	"sync/atomic"

	"github.com/terrariumai/brains/pkg/vec2/v1"
)

const spectatorBufferSize = 100

// Update is one message delivered to a spectator
type Update struct {
	Region vec2.Vec2 `json:"region"`
	// Kind is "actor" for actor updates and "server" for server actions
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

// Stadium handles spectators and their region subscriptions. It is safe for
// concurrent use.
type Stadium struct {
	mu sync.RWMutex
	// Map from spectator id -> update channel
	spectIDChanMap map[string]chan Update
	// Specators subscription to regions
	spectRegionSubs map[vec2.Vec2][]string
	// Count of updates dropped because a spectator was not reading
	dropped uint64
}

// NewStadium creates a new stadium
func NewStadium() *Stadium {
	return &Stadium{
		spectIDChanMap:  make(map[string]chan Update),
		spectRegionSubs: make(map[vec2.Vec2][]string),
	}
}

// AddSpectator adds a spectator and returns the channel its updates arrive on
func (s *Stadium) AddSpectator(id string) <-chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel, ok := s.spectIDChanMap[id]; ok {
		return channel
	}
	channel := make(chan Update, spectatorBufferSize)
	s.spectIDChanMap[id] = channel
	return channel
}

// SpectatorCount returns the number of connected spectators
func (s *Stadium) SpectatorCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.spectIDChanMap)
}

// subscribed reports whether the spectator listens on region, and where in
// the region's list. Callers hold mu.
func (s *Stadium) subscribed(spectatorID string, region vec2.Vec2) (bool, int) {
	for i, _spectatorID := range s.spectRegionSubs[region] {
		if _spectatorID == spectatorID {
			return true, i
		}
	}
	return false, -1
}

// SubscribeSpectatorToRegion adds the spectator to a region. Unknown
// spectators and double subscriptions are refused.
func (s *Stadium) SubscribeSpectatorToRegion(id string, region vec2.Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spectIDChanMap[id]; !ok {
		return false
	}
	if alreadySubbed, _ := s.subscribed(id, region); alreadySubbed {
		return false
	}
	s.spectRegionSubs[region] = append(s.spectRegionSubs[region], id)
	return true
}

func (s *Stadium) unsubscribe(id string, region vec2.Vec2) bool {
	alreadySubbed, i := s.subscribed(id, region)
	if !alreadySubbed {
		return false
	}
	s.spectRegionSubs[region] = append(s.spectRegionSubs[region][:i], s.spectRegionSubs[region][i+1:]...)
	// Remove the region key if there are no more spectators in the region
	if len(s.spectRegionSubs[region]) == 0 {
		delete(s.spectRegionSubs, region)
	}
	return true
}

// RemoveSpectator removes a spectator AND all it's subscriptions, then closes
// its channel
func (s *Stadium) RemoveSpectator(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for region := range s.spectRegionSubs {
		s.unsubscribe(id, region)
	}
	if channel, ok := s.spectIDChanMap[id]; ok {
		close(channel)
		delete(s.spectIDChanMap, id)
	}
}

// BroadcastServerAction sends a server action, such as a reset, to every spectator
func (s *Stadium) BroadcastServerAction(action string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, channel := range s.spectIDChanMap {
		s.send(channel, Update{Kind: "server", Data: action})
	}
}

// BroadcastActorUpdate sends an actor update only to those listening on that
// specific region. Spectators whose buffer is full miss the update.
func (s *Stadium) BroadcastActorUpdate(region vec2.Vec2, data interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, spectatorID := range s.spectRegionSubs[region] {
		s.send(s.spectIDChanMap[spectatorID], Update{Region: region, Kind: "actor", Data: data})
	}
}

// Dropped returns how many updates were dropped so far
func (s *Stadium) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

// send never blocks
func (s *Stadium) send(channel chan Update, u Update) {
	select {
	case channel <- u:
	default:
		atomic.AddUint64(&s.dropped, 1)
	}
}
