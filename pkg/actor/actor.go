// Package actor holds the lifecycle, vitals and perception of a single arena
// actor. Actors do not own the shared space; placement and combat go through
// the World collaborator.
package actor

import (
	"errors"
	"math"

	uuid "github.com/satori/go.uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/terrariumai/brains/pkg/geometry"
)

const (
	initialHealth = 100
	deadHealth    = -1
	idPrefix      = "brains/actor/"
)

// ErrConflict is returned by a World that refuses a placement
var ErrConflict = errors.New("Conflict")

// World is the part of the shared space an actor acts upon
type World interface {
	// TryToPlace moves a to (x, y) or returns ErrConflict
	TryToPlace(a *Actor, x, y float64) error
	// AttackFrom resolves an attack by a and returns the score reward
	AttackFrom(a *Actor) int
}

// Actor is an occupant of the arena
type Actor struct {
	ID      string
	X       float64
	Y       float64
	Health  int
	Decay   int
	Score   int
	Profile Profile

	dir float64
	fsm Machine
}

// Snapshot is the serialized form of an actor
type Snapshot struct {
	State  State   `json:"state"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Dir    float64 `json:"dir"`
	Type   string  `json:"type"`
	Health int     `json:"health"`
	Decay  int     `json:"decay"`
	ID     string  `json:"id"`
}

// NewID returns a fresh actor id
func NewID() string {
	return idPrefix + uuid.Must(uuid.NewV4()).String()
}

// New creates an idle actor at the origin
func New(p Profile) *Actor {
	return &Actor{
		ID:      NewID(),
		Health:  initialHealth,
		Profile: p,
	}
}

// Base returns the actor itself. Types embedding *Actor satisfy the World's
// body interface through it.
func (a *Actor) Base() *Actor { return a }

// State returns the current lifecycle state
func (a *Actor) State() State { return a.fsm.State() }

// Alive reports whether the actor is not dead
func (a *Actor) Alive() bool { return a.fsm.Alive() }

// Dir returns the heading in degrees, in [0, 360)
func (a *Actor) Dir() float64 { return a.dir }

// SetDir sets the heading, wrapping it into [0, 360)
func (a *Actor) SetDir(deg float64) { a.dir = geometry.Wrap(deg) }

// Pos returns the position as a vector
func (a *Actor) Pos() r2.Vec { return r2.Vec{X: a.X, Y: a.Y} }

// Rest transitions to idle
func (a *Actor) Rest() error {
	return a.fsm.Fire(Rest)
}

// Move asks w to place the actor at its position plus (dx, dy). A refused
// placement still counts as a move; the position is left as it was and the
// refusal is returned.
func (a *Actor) Move(w World, dx, dy float64) error {
	if err := a.fsm.Can(Move); err != nil {
		return err
	}
	placeErr := w.TryToPlace(a, a.X+dx, a.Y+dy)
	if err := a.fsm.Fire(Move); err != nil {
		return err
	}
	return placeErr
}

// Turn sets the heading and transitions to turning
func (a *Actor) Turn(deg float64) error {
	if err := a.fsm.Can(Turn); err != nil {
		return err
	}
	a.SetDir(deg)
	return a.fsm.Fire(Turn)
}

// Attack resolves an attack through w, adds its reward to the score and
// transitions to attacking
func (a *Actor) Attack(w World) error {
	if err := a.fsm.Can(Attack); err != nil {
		return err
	}
	if reward := w.AttackFrom(a); reward > 0 {
		a.Score += reward
	}
	return a.fsm.Fire(Attack)
}

// Kill makes the actor dead
func (a *Actor) Kill() error {
	if err := a.fsm.Fire(Kill); err != nil {
		return err
	}
	a.Health = deadHealth
	return nil
}

// Hurt removes amount health and reports whether it killed the actor. Negative
// amounts are treated as zero; hurting a dead actor does nothing.
func (a *Actor) Hurt(amount int) bool {
	if !a.Alive() {
		return false
	}
	if amount < 0 {
		amount = 0
	}
	if amount >= a.Health {
		a.Kill()
		return true
	}
	a.Health -= amount
	return false
}

// Decays ages the actor by its decay rate
func (a *Actor) Decays() {
	if a.Alive() {
		a.Decay += a.Profile.DecayRate
	}
}

// CanSee reports whether other is inside the vision cone
func (a *Actor) CanSee(other *Actor) bool {
	if other == nil || other == a {
		return false
	}
	return a.inCone(other, a.Profile.VisionAngle, a.Profile.Eyesight)
}

// CanAttack reports whether victim is alive and inside the attack cone
func (a *Actor) CanAttack(victim *Actor) bool {
	if victim == nil || victim == a || !victim.Alive() {
		return false
	}
	return a.inCone(victim, a.Profile.AttackAngle, a.Profile.Range)
}

// DistanceTo returns the distance to other
func (a *Actor) DistanceTo(other *Actor) float64 {
	return geometry.Distance(a.Pos(), other.Pos())
}

// BearingTo returns the heading that would point at other
func (a *Actor) BearingTo(other *Actor) float64 {
	return geometry.Bearing(a.Pos(), other.Pos())
}

func (a *Actor) inCone(other *Actor, halfAngle, radius float64) bool {
	if a.Profile.RawCones {
		return geometry.InConeRaw(a.Pos(), a.dir, other.Pos(), halfAngle, radius)
	}
	return geometry.InCone(a.Pos(), a.dir, other.Pos(), halfAngle, radius)
}

// Snapshot returns the serialized form of the actor
func (a *Actor) Snapshot() Snapshot {
	return Snapshot{
		State:  a.State(),
		X:      finiteOrZero(a.X),
		Y:      finiteOrZero(a.Y),
		Dir:    a.dir,
		Type:   a.Profile.Kind,
		Health: a.Health,
		Decay:  a.Decay,
		ID:     a.ID,
	}
}

// Describe returns what the actor looks like to others
func (a *Actor) Describe() interface{} {
	return a.Snapshot()
}

// encoding/json refuses NaN and Inf
func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
