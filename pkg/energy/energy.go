// Package energy keeps the energy balance of a robot.
package energy

import (
	"errors"
	"fmt"
)

// Initial is the balance of a new ledger
const Initial = 100

// Cap bounds regenerative credits
const Cap = 500

// Kind is the action an energy cost is charged for
type Kind string

// Action kinds
const (
	Idle   Kind = "idle"
	Move   Kind = "move"
	Turn   Kind = "turn"
	Attack Kind = "attack"
)

var costs = map[Kind]int{
	Idle:   20,
	Move:   5,
	Turn:   30,
	Attack: 100,
}

var (
	// ErrExhausted is returned when a charge is not affordable
	ErrExhausted = errors.New("Exhausted")
	// ErrUnknownKind is returned for an action with no cost entry
	ErrUnknownKind = errors.New("unknown action kind")
)

// Cost returns the energy an action of kind k costs
func Cost(k Kind) (int, error) {
	c, ok := costs[k]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return c, nil
}

// Cheapest returns the lowest cost in the table
func Cheapest() int {
	min := -1
	for _, c := range costs {
		if min < 0 || c < min {
			min = c
		}
	}
	return min
}

// Ledger is an energy balance. It is not safe for concurrent use; robots
// charge it under the world lock.
type Ledger struct {
	energy int
}

// NewLedger returns a ledger holding Initial
func NewLedger() *Ledger {
	return &Ledger{energy: Initial}
}

// Energy returns the balance
func (l *Ledger) Energy() int { return l.energy }

// Charge debits the cost of k. If the balance is short, nothing is debited
// and ErrExhausted is returned.
func (l *Ledger) Charge(k Kind) error {
	c, err := Cost(k)
	if err != nil {
		return err
	}
	if l.energy < c {
		return fmt.Errorf("%w: %s needs %d, have %d", ErrExhausted, k, c, l.energy)
	}
	l.energy -= c
	return nil
}

// Credit adds n, discarding whatever would exceed Cap
func (l *Ledger) Credit(n int) {
	if n <= 0 || l.energy >= Cap {
		return
	}
	l.energy += n
	if l.energy > Cap {
		l.energy = Cap
	}
}
