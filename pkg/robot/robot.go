// Package robot implements actors driven by a remote brain. Each robot runs
// its own decision cycle: sense the world, ask the brain, apply the answer.
package robot

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/terrariumai/brains/pkg/action"
	"github.com/terrariumai/brains/pkg/actor"
	"github.com/terrariumai/brains/pkg/energy"
)

const (
	defaultTimeout        = 100 * time.Millisecond
	defaultInterval       = 500 * time.Millisecond
	defaultTimeoutPenalty = 10
)

// World is everything a robot needs from the shared space. Locker returns the
// lock guarding all of it.
type World interface {
	actor.World
	CurrentEnvironmentFor(a *actor.Actor) interface{}
	Locker() sync.Locker
}

// Options configure a robot. Zero values take defaults.
type Options struct {
	Name           string
	Profile        *actor.Profile
	Timeout        time.Duration
	Interval       time.Duration
	TimeoutPenalty int
	Logger         *zap.Logger
	// OnCycle, when set, receives a record of every finished decision cycle.
	// It is called without the world lock held.
	OnCycle func(Cycle)
}

// Robot is an actor whose actions come from a Brain
type Robot struct {
	*actor.Actor

	Name string
	// Exception is the name of the last recoverable fault, empty if none
	Exception string

	ledger  *energy.Ledger
	brain   Brain
	world   World
	logger  *zap.Logger
	limiter *rate.Limiter

	timeout time.Duration
	penalty int
	onCycle func(Cycle)
}

// Snapshot is the serialized form of a robot
type Snapshot struct {
	actor.Snapshot
	Name      string `json:"name"`
	Energy    int    `json:"energy"`
	Score     int    `json:"score"`
	Exception string `json:"exception,omitempty"`
}

// Profile is the default robot profile
func Profile() actor.Profile {
	p := actor.DefaultProfile()
	p.Kind = "robot"
	p.DecayRate = 2
	return p
}

// New creates an idle robot living in w and asking b
func New(w World, b Brain, opts Options) *Robot {
	p := Profile()
	if opts.Profile != nil {
		p = *opts.Profile
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.TimeoutPenalty <= 0 {
		opts.TimeoutPenalty = defaultTimeoutPenalty
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Robot{
		Actor:   actor.New(p),
		Name:    opts.Name,
		ledger:  energy.NewLedger(),
		brain:   b,
		world:   w,
		logger:  opts.Logger.With(zap.String("robot", opts.Name)),
		limiter: rate.NewLimiter(rate.Every(opts.Interval), 1),
		timeout: opts.Timeout,
		penalty: opts.TimeoutPenalty,
		onCycle: opts.OnCycle,
	}
}

// Energy returns the energy balance
func (r *Robot) Energy() int { return r.ledger.Energy() }

// Recharge credits regenerated energy. Dead robots do not recharge.
func (r *Robot) Recharge(n int) {
	if r.Alive() {
		r.ledger.Credit(n)
	}
}

// Update applies a parsed action. Unaffordable actions and refused moves are
// recorded in Exception and the robot rests; any other error is returned.
// The caller must hold the world lock.
func (r *Robot) Update(a action.Action) error {
	if !r.Alive() {
		return actor.ErrDead
	}
	err := r.apply(a)
	if errors.Is(err, energy.ErrExhausted) || errors.Is(err, actor.ErrConflict) {
		r.Exception = FaultName(err)
		return r.Rest()
	}
	return err
}

func (r *Robot) apply(a action.Action) error {
	switch a.Kind {
	case action.Idle:
		if err := r.ledger.Charge(energy.Idle); err != nil {
			return err
		}
		return r.Rest()
	case action.Move:
		if err := r.ledger.Charge(energy.Move); err != nil {
			return err
		}
		return r.Move(r.world, a.X, a.Y)
	case action.Turn:
		if err := r.ledger.Charge(energy.Turn); err != nil {
			return err
		}
		return r.Turn(a.Dir)
	case action.Attack:
		if err := r.ledger.Charge(energy.Attack); err != nil {
			return err
		}
		return r.Attack(r.world)
	}
	return nil
}

// Snapshot returns the serialized form of the robot
func (r *Robot) Snapshot() Snapshot {
	return Snapshot{
		Snapshot:  r.Actor.Snapshot(),
		Name:      r.Name,
		Energy:    r.ledger.Energy(),
		Score:     r.Score,
		Exception: r.Exception,
	}
}

// Describe returns what the robot looks like to others
func (r *Robot) Describe() interface{} {
	return r.Snapshot()
}

var faults = []error{
	energy.ErrExhausted,
	actor.ErrConflict,
	ErrTimeout,
	action.ErrBadResponse,
	action.ErrActionParse,
	actor.ErrDead,
}

// FaultName returns the label a fault is recorded under, or "" for errors
// that are not cycle faults
func FaultName(err error) string {
	for _, f := range faults {
		if errors.Is(err, f) {
			return f.Error()
		}
	}
	return ""
}
