package world

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/terrariumai/brains/pkg/actor"
	"github.com/terrariumai/brains/pkg/geometry"
)

const maxSpawnAttempts = 100

var (
	// ErrDuplicate is returned when a body with the same id is already present
	ErrDuplicate = errors.New("body already in world")
	// ErrNoRoom is returned when no free spawn position was found
	ErrNoRoom = errors.New("no room to spawn")
)

// Add puts b into the world at its current position
func (w *World) Add(b Body) error {
	a := b.Base()
	if _, ok := w.bodies[a.ID]; ok {
		return fmt.Errorf("add %s: %w", a.ID, ErrDuplicate)
	}
	if !w.isFree(a, a.X, a.Y) {
		return fmt.Errorf("add %s: %w", a.ID, actor.ErrConflict)
	}
	w.insert(b)
	return nil
}

// Spawn puts b into the world at a random free position inside the spawn box
func (w *World) Spawn(b Body) error {
	a := b.Base()
	if _, ok := w.bodies[a.ID]; ok {
		return fmt.Errorf("spawn %s: %w", a.ID, ErrDuplicate)
	}
	for i := 0; i < maxSpawnAttempts; i++ {
		x, y := w.spawnPosition()
		if w.isFree(a, x, y) {
			a.X, a.Y = x, y
			w.insert(b)
			return nil
		}
	}
	return fmt.Errorf("spawn %s after %d attempts: %w", a.ID, maxSpawnAttempts, ErrNoRoom)
}

// spawnPosition draws a point uniformly from the centred spawn box
func (w *World) spawnPosition() (float64, float64) {
	xVariance := w.width * w.spawnBox / 2
	yVariance := w.height * w.spawnBox / 2
	x := (w.rng.Float64()*2-1)*xVariance + w.width/2
	y := (w.rng.Float64()*2-1)*yVariance + w.height/2
	return x, y
}

func (w *World) insert(b Body) {
	id := b.Base().ID
	w.bodies[id] = b
	w.order = append(w.order, id)
	w.emit(b)
}

// TryToPlace moves a to (x, y). It returns actor.ErrConflict, leaving a
// where it was, when the target is outside the world or another alive body
// stands within the body radius of it.
func (w *World) TryToPlace(a *actor.Actor, x, y float64) error {
	if !w.isFree(a, x, y) {
		return fmt.Errorf("place %s at (%.1f, %.1f): %w", a.ID, x, y, actor.ErrConflict)
	}
	a.X, a.Y = x, y
	if b, ok := w.bodies[a.ID]; ok {
		w.emit(b)
	}
	return nil
}

func (w *World) isFree(a *actor.Actor, x, y float64) bool {
	if !w.inBounds(x, y) {
		return false
	}
	target := r2.Vec{X: x, Y: y}
	for _, id := range w.order {
		other := w.bodies[id].Base()
		if other == a || !other.Alive() {
			continue
		}
		if geometry.Distance(target, other.Pos()) < w.bodyRadius {
			return false
		}
	}
	return true
}

// Actor returns the body with the given id, dead or alive
func (w *World) Actor(id string) (Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Bodies returns every body in insertion order
func (w *World) Bodies() []Body {
	bodies := make([]Body, 0, len(w.order))
	for _, id := range w.order {
		bodies = append(bodies, w.bodies[id])
	}
	return bodies
}

// AliveCount returns how many bodies are not dead
func (w *World) AliveCount() int {
	n := 0
	for _, id := range w.order {
		if w.bodies[id].Base().Alive() {
			n++
		}
	}
	return n
}
