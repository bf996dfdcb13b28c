package world

import (
	"math/rand"
	"sync"
	"time"

	"github.com/terrariumai/brains/pkg/actor"
	"github.com/terrariumai/brains/pkg/vec2/v1"
)

const (
	defaultWidth      = 1000
	defaultHeight     = 1000
	defaultBodyRadius = 20
	defaultSpawnBox   = 0.8
	defaultRegionSize = 100
	defaultHitReward  = 1
	defaultKillReward = 10
)

// Body is anything living in the world. Robots and plain actors both satisfy
// it through their embedded *actor.Actor.
type Body interface {
	Base() *actor.Actor
	Describe() interface{}
}

// UpdateFunc is called with the region of a body whenever the world changes it
type UpdateFunc func(region vec2.Vec2, b Body)

// Options configure a world. Zero values take defaults.
type Options struct {
	Width  float64
	Height float64
	// BodyRadius is how close two alive bodies may stand
	BodyRadius float64
	// SpawnBox is the share of width and height, centred, where bodies spawn
	SpawnBox   float64
	RegionSize int32
	HitReward  int
	KillReward int
	// Seed seeds spawn positions and damage rolls. Zero seeds from the clock.
	Seed          int64
	OnActorUpdate UpdateFunc
}

// World holds the bodies of the arena and resolves everything they do to each
// other. One mutex, returned by Locker, guards the world and every body in
// it; World methods never take it themselves, so callers must hold it.
type World struct {
	mu sync.Mutex

	width      float64
	height     float64
	bodyRadius float64
	spawnBox   float64
	regionSize int32
	hitReward  int
	killReward int
	rng        *rand.Rand

	// Map of all bodies by actor id
	bodies map[string]Body
	// Insertion order of bodies, for stable iteration
	order []string
	// Function callbacks
	onActorUpdate UpdateFunc
}

// Arena is the size of the world as reported to brains
type Arena struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Environment is what one actor perceives of the world
type Environment struct {
	Arena   Arena         `json:"arena"`
	Self    interface{}   `json:"self"`
	Visible []interface{} `json:"visible"`
}

// NewWorld creates an empty world
func NewWorld(opts Options) *World {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.BodyRadius <= 0 {
		opts.BodyRadius = defaultBodyRadius
	}
	if opts.SpawnBox <= 0 || opts.SpawnBox > 1 {
		opts.SpawnBox = defaultSpawnBox
	}
	if opts.RegionSize <= 0 {
		opts.RegionSize = defaultRegionSize
	}
	if opts.HitReward <= 0 {
		opts.HitReward = defaultHitReward
	}
	if opts.KillReward <= 0 {
		opts.KillReward = defaultKillReward
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.OnActorUpdate == nil {
		opts.OnActorUpdate = func(vec2.Vec2, Body) {}
	}

	return &World{
		width:         opts.Width,
		height:        opts.Height,
		bodyRadius:    opts.BodyRadius,
		spawnBox:      opts.SpawnBox,
		regionSize:    opts.RegionSize,
		hitReward:     opts.HitReward,
		killReward:    opts.KillReward,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		bodies:        map[string]Body{},
		onActorUpdate: opts.OnActorUpdate,
	}
}

// Locker returns the lock guarding the world
func (w *World) Locker() sync.Locker { return &w.mu }

// Width of the world
func (w *World) Width() float64 { return w.width }

// Height of the world
func (w *World) Height() float64 { return w.height }

// RegionSize is the side of a spectator region
func (w *World) RegionSize() int32 { return w.regionSize }

// RegionOf returns the region a body stands in
func (w *World) RegionOf(b Body) vec2.Vec2 {
	a := b.Base()
	return vec2.RegionOf(a.X, a.Y, w.regionSize)
}

// CurrentEnvironmentFor returns the perception of a: the arena size, a's own
// description and the descriptions of every body a can see
func (w *World) CurrentEnvironmentFor(a *actor.Actor) interface{} {
	env := Environment{
		Arena:   Arena{Width: w.width, Height: w.height},
		Visible: []interface{}{},
	}
	for _, id := range w.order {
		b := w.bodies[id]
		if b.Base() == a {
			env.Self = b.Describe()
			continue
		}
		if a.CanSee(b.Base()) {
			env.Visible = append(env.Visible, b.Describe())
		}
	}
	if env.Self == nil {
		env.Self = a.Describe()
	}
	return env
}

// Tick ages every alive body
func (w *World) Tick() {
	for _, id := range w.order {
		if a := w.bodies[id].Base(); a.Alive() {
			a.Decays()
		}
	}
}

func (w *World) inBounds(x, y float64) bool {
	return x >= 0 && x <= w.width && y >= 0 && y <= w.height
}

func (w *World) emit(b Body) {
	w.onActorUpdate(w.RegionOf(b), b)
}
