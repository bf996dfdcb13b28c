package actor

import (
	"errors"
	"fmt"
)

// State is a lifecycle state of an actor
type State string

// Actor states. Idle is initial, Dead is terminal.
const (
	Idle      State = "idle"
	Moving    State = "moving"
	Turning   State = "turning"
	Attacking State = "attacking"
	Dead      State = "dead"
)

// Transition names a requested state change
type Transition string

// Transitions accepted by Machine.Fire
const (
	Rest   Transition = "rest"
	Move   Transition = "move"
	Turn   Transition = "turn"
	Attack Transition = "attack"
	Kill   Transition = "kill"
)

var (
	// ErrDead is returned for any transition requested of a dead actor
	ErrDead = errors.New("actor is dead")
	// ErrUnknownTransition is returned for a transition name the machine does not know
	ErrUnknownTransition = errors.New("unknown transition")
)

var targets = map[Transition]State{
	Rest:   Idle,
	Move:   Moving,
	Turn:   Turning,
	Attack: Attacking,
	Kill:   Dead,
}

// Machine guards the state of one actor. Every alive state may move to any
// alive state or to Dead; nothing leaves Dead. The zero value is Idle.
type Machine struct {
	state State
}

// State returns the current state
func (m *Machine) State() State {
	if m.state == "" {
		return Idle
	}
	return m.state
}

// Alive reports whether the machine is in any state but Dead
func (m *Machine) Alive() bool {
	return m.State() != Dead
}

// Can checks whether t would be accepted without applying it
func (m *Machine) Can(t Transition) error {
	if _, ok := targets[t]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransition, t)
	}
	if !m.Alive() {
		return ErrDead
	}
	return nil
}

// Fire applies t
func (m *Machine) Fire(t Transition) error {
	if err := m.Can(t); err != nil {
		return err
	}
	m.state = targets[t]
	return nil
}
