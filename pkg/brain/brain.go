// Package brain is a reference robot brain speaking the arena action
// protocol. It is good enough to spar with and to drive local matches.
package brain

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/terrariumai/brains/pkg/energy"
	"github.com/terrariumai/brains/pkg/geometry"
)

const (
	attackHalfAngle = 2
	attackRange     = 200
	// turn only when the target is this far off the heading
	turnThreshold = 1
)

// Body is one actor as described in an environment
type Body struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	State  string  `json:"state"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Dir    float64 `json:"dir"`
	Health int     `json:"health"`
	Energy int     `json:"energy"`
	Name   string  `json:"name,omitempty"`
}

func (b Body) pos() r2.Vec { return r2.Vec{X: b.X, Y: b.Y} }

// Environment is the request body a robot posts
type Environment struct {
	Arena struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"arena"`
	Self    Body   `json:"self"`
	Visible []Body `json:"visible"`
}

// Reply is the action sent back
type Reply struct {
	Action string   `json:"action,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Dir    *float64 `json:"dir,omitempty"`
}

// Sparring decides by a fixed rule: attack what is in the attack cone, turn
// toward the nearest visible actor, close in on it, otherwise wander
type Sparring struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSparring returns a sparring brain. A zero seed seeds from the clock.
func NewSparring(seed int64) *Sparring {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sparring{rng: rand.New(rand.NewSource(seed))}
}

// Decide picks the reply for env
func (s *Sparring) Decide(env Environment) Reply {
	self := env.Self
	attackCost, _ := energy.Cost(energy.Attack)
	turnCost, _ := energy.Cost(energy.Turn)
	if self.Energy < energy.Cheapest() {
		// nothing is affordable, wait for regeneration
		return Reply{}
	}

	target, ok := nearest(self, env.Visible)
	if !ok {
		return s.wander()
	}

	bearing := geometry.Bearing(self.pos(), target.pos())
	off := geometry.Deviation(self.Dir, bearing)
	dist := geometry.Distance(self.pos(), target.pos())

	switch {
	case off < attackHalfAngle && dist <= attackRange && self.Energy >= attackCost:
		return Reply{Action: "attack"}
	case off >= turnThreshold && self.Energy >= turnCost:
		return Reply{Action: "turn", Dir: num(bearing)}
	default:
		rad := bearing * math.Pi / 180
		return Reply{Action: "move", X: num(math.Sin(rad)), Y: num(math.Cos(rad))}
	}
}

func (s *Sparring) wander() Reply {
	s.mu.Lock()
	x := s.rng.Float64()*2 - 1
	y := s.rng.Float64()*2 - 1
	s.mu.Unlock()
	return Reply{Action: "move", X: num(x), Y: num(y)}
}

func nearest(self Body, visible []Body) (Body, bool) {
	var best Body
	found := false
	bestDist := math.Inf(1)
	for _, b := range visible {
		if b.ID == self.ID || b.State == "dead" {
			continue
		}
		if d := geometry.Distance(self.pos(), b.pos()); d < bestDist {
			best, bestDist, found = b, d, true
		}
	}
	return best, found
}

func num(f float64) *float64 { return &f }
