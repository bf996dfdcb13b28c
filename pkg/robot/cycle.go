package robot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/terrariumai/brains/pkg/action"
	"github.com/terrariumai/brains/pkg/actor"
)

// Cycle records the outcome of one decision cycle
type Cycle struct {
	Robot   string
	ID      string
	Action  action.Kind
	Fault   string
	State   actor.State
	Energy  int
	Health  int
	Score   int
	Latency time.Duration
	At      time.Time
}

// Think runs one decision cycle. The environment is read and the reply is
// applied under the world lock; the brain is asked without it.
//
// A brain timeout costs health and the robot rests. A bad or unparsable
// reply makes the robot rest. In both cases the fault is returned wrapped.
func (r *Robot) Think(ctx context.Context) error {
	mu := r.world.Locker()

	mu.Lock()
	if !r.Alive() {
		mu.Unlock()
		return actor.ErrDead
	}
	body, err := json.Marshal(r.world.CurrentEnvironmentFor(r.Actor))
	mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode environment: %w", err)
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	status, reply, err := r.brain.Post(callCtx, body)
	cancel()
	latency := time.Since(start)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: no answer after %v", ErrTimeout, r.timeout)
		}
	}

	var a action.Action
	if err == nil {
		a, err = action.Decode(status, reply)
	} else if FaultName(err) == "" {
		err = fmt.Errorf("%w: %v", action.ErrBadResponse, err)
	}

	mu.Lock()
	err = r.settle(a, err)
	c := r.cycle(a, err, start, latency)
	mu.Unlock()

	if r.onCycle != nil {
		r.onCycle(c)
	}
	return err
}

// settle applies the outcome of a brain call. Caller holds the world lock.
func (r *Robot) settle(a action.Action, err error) error {
	switch {
	case err == nil:
		return r.Update(a)
	case !r.Alive():
		// killed while waiting for the brain
		return actor.ErrDead
	case errors.Is(err, ErrTimeout):
		r.Exception = FaultName(err)
		r.Hurt(r.penalty)
	default:
		r.Exception = FaultName(err)
	}
	if r.Alive() {
		r.Rest()
	}
	return err
}

func (r *Robot) cycle(a action.Action, err error, start time.Time, latency time.Duration) Cycle {
	return Cycle{
		Robot:   r.Name,
		ID:      r.ID,
		Action:  a.Kind,
		Fault:   FaultName(err),
		State:   r.State(),
		Energy:  r.ledger.Energy(),
		Health:  r.Health,
		Score:   r.Score,
		Latency: latency,
		At:      start,
	}
}

// Run repeats Think until ctx is done or the robot is dead. Cycles are paced
// start to start: each one begins at least the configured interval after the
// previous one began, so time spent waiting on the brain counts toward the
// interval instead of being added to it. Cycle faults are logged and do not
// stop the loop.
func (r *Robot) Run(ctx context.Context) error {
	r.logger.Info("robot entering arena", zap.String("id", r.ID))
	for {
		if err := r.limiter.Wait(ctx); err != nil {
			<-ctx.Done()
			return ctx.Err()
		}

		err := r.Think(ctx)
		switch {
		case err == nil:
		case errors.Is(err, actor.ErrDead):
			r.logger.Info("robot is dead, leaving arena", zap.String("id", r.ID))
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			r.logger.Warn("decision cycle failed",
				zap.String("fault", FaultName(err)),
				zap.Error(err),
			)
		}
	}
}
