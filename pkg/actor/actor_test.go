package actor

import (
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorld struct {
	refuse bool
	reward int
	placed int
}

func (w *fakeWorld) TryToPlace(a *Actor, x, y float64) error {
	if w.refuse {
		return ErrConflict
	}
	w.placed++
	a.X, a.Y = x, y
	return nil
}

func (w *fakeWorld) AttackFrom(a *Actor) int { return w.reward }

func TestNewActor(t *testing.T) {
	a := New(DefaultProfile())

	assert.Equal(t, Idle, a.State())
	assert.Equal(t, 100, a.Health)
	assert.Equal(t, 0.0, a.Dir())
	assert.True(t, strings.HasPrefix(a.ID, "brains/actor/"), "id %q has no prefix", a.ID)
	assert.NotEqual(t, a.ID, New(DefaultProfile()).ID)
}

func TestActorIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSetDir(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{-90, 270},
		{360, 0},
		{450, 90},
		{-720, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	a := New(DefaultProfile())
	for _, tt := range tests {
		a.SetDir(tt.in)
		assert.InDelta(t, tt.want, a.Dir(), 1e-9, "SetDir(%v)", tt.in)
		assert.True(t, a.Dir() >= 0 && a.Dir() < 360)
	}
}

func TestHurt(t *testing.T) {
	tests := []struct {
		name       string
		health     int
		amount     int
		wantHealth int
		wantState  State
		wantKilled bool
	}{
		{"scratch", 100, 10, 90, Idle, false},
		{"negative is nothing", 100, -5, 100, Idle, false},
		{"exact kill", 30, 30, -1, Dead, true},
		{"overkill", 30, 200, -1, Dead, true},
		{"zero on one", 1, 0, 1, Idle, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(DefaultProfile())
			a.Health = tt.health
			killed := a.Hurt(tt.amount)
			assert.Equal(t, tt.wantKilled, killed)
			assert.Equal(t, tt.wantHealth, a.Health)
			assert.Equal(t, tt.wantState, a.State())
			assert.Equal(t, a.Health <= 0, a.State() == Dead)
		})
	}
}

func TestHurtDeadIsNoop(t *testing.T) {
	a := New(DefaultProfile())
	require.NoError(t, a.Kill())
	assert.False(t, a.Hurt(50))
	assert.Equal(t, -1, a.Health)
	assert.ErrorIs(t, a.Kill(), ErrDead)
}

func TestMove(t *testing.T) {
	w := &fakeWorld{}
	a := New(DefaultProfile())
	a.X, a.Y = 10, 10

	require.NoError(t, a.Move(w, 1, -1))
	assert.Equal(t, 11.0, a.X)
	assert.Equal(t, 9.0, a.Y)
	assert.Equal(t, Moving, a.State())
}

func TestMoveRefused(t *testing.T) {
	w := &fakeWorld{refuse: true}
	a := New(DefaultProfile())
	a.X, a.Y = 10, 10

	err := a.Move(w, 1, 1)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 10.0, a.X)
	assert.Equal(t, 10.0, a.Y)
	assert.Equal(t, Moving, a.State())
}

func TestDeadActorRejectsEverything(t *testing.T) {
	w := &fakeWorld{reward: 5}
	a := New(DefaultProfile())
	require.NoError(t, a.Kill())

	assert.ErrorIs(t, a.Move(w, 1, 1), ErrDead)
	assert.ErrorIs(t, a.Turn(90), ErrDead)
	assert.ErrorIs(t, a.Attack(w), ErrDead)
	assert.ErrorIs(t, a.Rest(), ErrDead)
	assert.Equal(t, 0, w.placed)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, 0.0, a.Dir())
}

func TestTurn(t *testing.T) {
	a := New(DefaultProfile())
	require.NoError(t, a.Turn(-90))
	assert.Equal(t, 270.0, a.Dir())
	assert.Equal(t, Turning, a.State())
}

func TestAttackAddsReward(t *testing.T) {
	w := &fakeWorld{reward: 11}
	a := New(DefaultProfile())
	a.Score = 4

	require.NoError(t, a.Attack(w))
	assert.Equal(t, 15, a.Score)
	assert.Equal(t, Attacking, a.State())
}

func TestDecays(t *testing.T) {
	p := DefaultProfile()
	p.DecayRate = 2
	a := New(p)
	a.Decays()
	a.Decays()
	assert.Equal(t, 4, a.Decay)

	require.NoError(t, a.Kill())
	a.Decays()
	assert.Equal(t, 4, a.Decay)
}

func TestCanSeeAndAttack(t *testing.T) {
	observer := New(DefaultProfile())
	observer.X, observer.Y = 100, 100

	at := func(x, y float64) *Actor {
		o := New(DefaultProfile())
		o.X, o.Y = x, y
		return o
	}
	ahead := at(100, 200)
	aside := at(150, 150)
	behind := at(100, 0)
	far := at(100, 400)

	assert.True(t, observer.CanSee(ahead))
	assert.True(t, observer.CanSee(aside))
	assert.False(t, observer.CanSee(behind))
	assert.False(t, observer.CanSee(far))
	assert.False(t, observer.CanSee(observer))

	assert.True(t, observer.CanAttack(ahead))
	assert.False(t, observer.CanAttack(aside), "45 degrees is outside the attack cone")
	assert.False(t, observer.CanAttack(observer))

	require.NoError(t, ahead.Kill())
	assert.False(t, observer.CanAttack(ahead))
	assert.True(t, observer.CanSee(ahead))
}

func TestSnapshotJSON(t *testing.T) {
	a := New(DefaultProfile())
	a.X, a.Y = 3, 4
	a.SetDir(90)

	b, err := json.Marshal(a.Snapshot())
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	for _, key := range []string{"state", "x", "y", "dir", "type", "health", "decay", "id"} {
		assert.Contains(t, got, key)
	}
	assert.Equal(t, "idle", got["state"])
	assert.Equal(t, "actor", got["type"])
	assert.Equal(t, 90.0, got["dir"])
}

func TestDamage(t *testing.T) {
	p := DefaultProfile()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		d := p.Damage(rng)
		if d < 30 || d > 60 {
			t.Fatalf("Damage() = %d, want in [30, 60]", d)
		}
	}
	assert.Equal(t, 30, p.Damage(nil))
}
