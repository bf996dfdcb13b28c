package actor

import "math/rand"

// Profile holds the per-kind perception, combat and decay parameters of an
// actor. It is resolved once when the actor is built.
type Profile struct {
	// Kind is reported as the "type" of the actor in snapshots
	Kind string
	// DecayRate is added to Decay on every world tick
	DecayRate int
	// Eyesight and VisionAngle bound the vision cone
	Eyesight    float64
	VisionAngle float64
	// Range and AttackAngle bound the attack cone
	Range       float64
	AttackAngle float64
	// Damage dealt per hit is DamageBase plus uniform [0, DamageSpread]
	DamageBase   int
	DamageSpread int
	// RawCones disables seam handling in cone tests (legacy behaviour)
	RawCones bool
}

// DefaultProfile is the profile of a plain arena actor
func DefaultProfile() Profile {
	return Profile{
		Kind:         "actor",
		DecayRate:    1,
		Eyesight:     200,
		VisionAngle:  60,
		Range:        200,
		AttackAngle:  2,
		DamageBase:   30,
		DamageSpread: 30,
	}
}

// Damage rolls the damage of one hit
func (p Profile) Damage(rng *rand.Rand) int {
	if p.DamageSpread <= 0 || rng == nil {
		return p.DamageBase
	}
	return p.DamageBase + rng.Intn(p.DamageSpread+1)
}
