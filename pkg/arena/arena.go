// Package arena runs a match: it owns the world, lets robots in, and
// supervises their decision cycles together with the world clock and the
// telemetry flush.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/terrariumai/brains/pkg/actor"
	"github.com/terrariumai/brains/pkg/config"
	"github.com/terrariumai/brains/pkg/robot"
	"github.com/terrariumai/brains/pkg/stadium/v1"
	"github.com/terrariumai/brains/pkg/telemetry"
	"github.com/terrariumai/brains/pkg/vec2/v1"
	"github.com/terrariumai/brains/pkg/world/v1"
)

// ErrRunning is returned by Enter once the match has started
var ErrRunning = errors.New("arena is already running")

// Store keeps the latest snapshot and score of every actor
type Store interface {
	SaveSnapshot(id string, score int, region vec2.Vec2, snapshot interface{}) error
}

type resetter interface {
	Reset() error
}

// ResetAction is the server action spectators receive on Reset
const ResetAction = "RESET"

// Deps are the optional collaborators of an arena
type Deps struct {
	Store    Store
	Stadium  *stadium.Stadium
	Recorder *telemetry.Recorder
	Logger   *zap.Logger
}

// Arena is one running match
type Arena struct {
	cfg   config.Config
	world *world.World

	store    Store
	stadium  *stadium.Stadium
	recorder *telemetry.Recorder
	logger   *zap.Logger

	// guarded by the world lock
	robots  []*robot.Robot
	ticks   int64
	running bool

	flushMu sync.Mutex
}

// New creates an arena and its world from cfg
func New(cfg config.Config, deps Deps) *Arena {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	a := &Arena{
		cfg:      cfg,
		store:    deps.Store,
		stadium:  deps.Stadium,
		recorder: deps.Recorder,
		logger:   deps.Logger,
	}
	a.world = world.NewWorld(world.Options{
		Width:         cfg.Arena.Width,
		Height:        cfg.Arena.Height,
		BodyRadius:    cfg.Arena.BodyRadius,
		SpawnBox:      cfg.Arena.SpawnBox,
		RegionSize:    cfg.Arena.RegionSize,
		HitReward:     cfg.Combat.HitReward,
		KillReward:    cfg.Combat.KillReward,
		Seed:          cfg.Arena.Seed,
		OnActorUpdate: a.onActorUpdate,
	})
	return a
}

// World returns the world of the arena
func (a *Arena) World() *world.World { return a.world }

// onActorUpdate runs under the world lock; stadium sends never block
func (a *Arena) onActorUpdate(region vec2.Vec2, b world.Body) {
	if a.stadium != nil {
		a.stadium.BroadcastActorUpdate(region, b.Describe())
	}
}

// Enter spawns a robot asking the brain at url
func (a *Arena) Enter(name, url string) (*robot.Robot, error) {
	return a.EnterWithBrain(name, robot.NewHTTPBrain(url))
}

// EnterWithBrain spawns a robot asking b. Robots can only enter before Run.
func (a *Arena) EnterWithBrain(name string, b robot.Brain) (*robot.Robot, error) {
	profile := robot.Profile()
	profile.RawCones = a.cfg.Arena.RawCones

	r := robot.New(a.world, b, robot.Options{
		Name:           name,
		Profile:        &profile,
		Timeout:        a.cfg.Brain.Timeout,
		Interval:       a.cfg.Brain.Interval,
		TimeoutPenalty: a.cfg.Brain.TimeoutPenalty,
		Logger:         a.logger,
		OnCycle: func(c robot.Cycle) {
			a.recorder.Record(telemetry.FromCycle(c))
		},
	})

	mu := a.world.Locker()
	mu.Lock()
	defer mu.Unlock()
	if a.running {
		return nil, ErrRunning
	}
	if err := a.world.Spawn(r); err != nil {
		return nil, fmt.Errorf("enter %s: %w", name, err)
	}
	a.robots = append(a.robots, r)
	a.logger.Info("robot entered",
		zap.String("robot", name),
		zap.String("id", r.ID),
		zap.Float64("x", r.X),
		zap.Float64("y", r.Y),
	)
	return r, nil
}

// Robots returns the robots that entered, in order
func (a *Arena) Robots() []*robot.Robot {
	mu := a.world.Locker()
	mu.Lock()
	defer mu.Unlock()
	return append([]*robot.Robot(nil), a.robots...)
}

// Run supervises every robot, the world tick and the telemetry flush until
// ctx is done or one of them fails. Cancellation is not an error.
func (a *Arena) Run(ctx context.Context) error {
	mu := a.world.Locker()
	mu.Lock()
	if a.running {
		mu.Unlock()
		return ErrRunning
	}
	a.running = true
	robots := append([]*robot.Robot(nil), a.robots...)
	mu.Unlock()

	a.logger.Info("arena starting", zap.Int("robots", len(robots)))

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range robots {
		r := r
		g.Go(func() error {
			return r.Run(ctx)
		})
	}
	g.Go(func() error {
		return every(ctx, a.cfg.Arena.TickInterval, a.Tick)
	})
	g.Go(func() error {
		return every(ctx, a.cfg.Arena.FlushInterval, func() {
			if err := a.Flush(); err != nil {
				a.logger.Warn("telemetry flush failed", zap.Error(err))
			}
		})
	})

	err := g.Wait()
	if flushErr := a.Flush(); flushErr != nil {
		a.logger.Warn("final telemetry flush failed", zap.Error(flushErr))
	}
	fields := []zap.Field{zap.Int64("ticks", a.tickCount())}
	if a.stadium != nil {
		fields = append(fields, zap.Uint64("spectator_drops", a.stadium.Dropped()))
	}
	a.logger.Info("arena stopped", fields...)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Tick advances the world clock: every alive body decays and every alive
// robot regenerates energy
func (a *Arena) Tick() {
	mu := a.world.Locker()
	mu.Lock()
	a.world.Tick()
	for _, r := range a.robots {
		r.Recharge(a.cfg.Energy.RegenPerTick)
	}
	a.ticks++
	rec := telemetry.TickRecord{
		Tick:   a.ticks,
		At:     time.Now().UTC().Format(time.RFC3339Nano),
		Alive:  a.world.AliveCount(),
		Bodies: len(a.world.Bodies()),
	}
	mu.Unlock()

	a.recorder.Tick(rec)
}

func (a *Arena) tickCount() int64 {
	mu := a.world.Locker()
	mu.Lock()
	defer mu.Unlock()
	return a.ticks
}

type pending struct {
	id       string
	score    int
	region   vec2.Vec2
	snapshot interface{}
}

// Flush copies every snapshot under the world lock, then saves them to the
// store and writes buffered telemetry without it. Every snapshot is tried;
// the first error is returned.
func (a *Arena) Flush() error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	var batch []pending
	if a.store != nil {
		mu := a.world.Locker()
		mu.Lock()
		for _, b := range a.world.Bodies() {
			base := b.Base()
			batch = append(batch, pending{
				id:       base.ID,
				score:    base.Score,
				region:   a.world.RegionOf(b),
				snapshot: b.Describe(),
			})
		}
		mu.Unlock()
	}

	var first error
	for _, p := range batch {
		if err := a.store.SaveSnapshot(p.id, p.score, p.region, p.snapshot); err != nil && first == nil {
			first = err
		}
	}
	if err := a.recorder.Flush(); err != nil && first == nil {
		first = err
	}
	return first
}

// Reset clears what a previous match left in the store, when the store can
// be reset, and tells every spectator to drop what it shows
func (a *Arena) Reset() error {
	if r, ok := a.store.(resetter); ok {
		if err := r.Reset(); err != nil {
			return err
		}
	}
	if a.stadium != nil {
		a.stadium.BroadcastServerAction(ResetAction)
	}
	a.logger.Info("arena reset")
	return nil
}

// Snapshots describes every body, dead or alive, in entry order
func (a *Arena) Snapshots() []interface{} {
	mu := a.world.Locker()
	mu.Lock()
	defer mu.Unlock()
	bodies := a.world.Bodies()
	snaps := make([]interface{}, 0, len(bodies))
	for _, b := range bodies {
		snaps = append(snaps, b.Describe())
	}
	return snaps
}

// Snapshot describes the body with the given id
func (a *Arena) Snapshot(id string) (interface{}, bool) {
	mu := a.world.Locker()
	mu.Lock()
	defer mu.Unlock()
	b, ok := a.world.Actor(id)
	if !ok {
		return nil, false
	}
	return b.Describe(), true
}

// AddActor places a passive actor, such as a training dummy, at (x, y)
func (a *Arena) AddActor(x, y float64) (*actor.Actor, error) {
	p := actor.DefaultProfile()
	p.RawCones = a.cfg.Arena.RawCones
	act := actor.New(p)
	act.X, act.Y = x, y

	mu := a.world.Locker()
	mu.Lock()
	defer mu.Unlock()
	if err := a.world.Add(act); err != nil {
		return nil, err
	}
	return act, nil
}

// every calls fn each interval until ctx is done
func every(ctx context.Context, interval time.Duration, fn func()) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}
