package world

import "github.com/terrariumai/brains/pkg/actor"

// AttackFrom hurts every alive body inside the attack cone of a and returns
// the score a earns: the hit reward per victim plus the kill reward per victim
// killed
func (w *World) AttackFrom(a *actor.Actor) int {
	reward := 0
	for _, id := range w.order {
		b := w.bodies[id]
		victim := b.Base()
		if !a.CanAttack(victim) {
			continue
		}
		reward += w.hitReward
		if victim.Hurt(a.Profile.Damage(w.rng)) {
			reward += w.killReward
		}
		w.emit(b)
	}
	return reward
}
