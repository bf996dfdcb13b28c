package datacom_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terrariumai/brains/pkg/datacom"
	"github.com/terrariumai/brains/pkg/datacom/mocks"
	"github.com/terrariumai/brains/pkg/vec2/v1"
)

type snapshot struct {
	ID     string `json:"id"`
	Health int    `json:"health"`
}

func setup() *miniredis.Miniredis {
	// Redis Setup
	redisServer, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return redisServer
}

func teardown(redisServer *miniredis.Miniredis) {
	redisServer.Close()
}

func TestNewDatacomNoServer(t *testing.T) {
	redisServer := setup()
	addr := redisServer.Addr()
	teardown(redisServer)

	_, err := datacom.NewDatacom("testing", addr, nil)
	assert.Error(t, err)
}

// -------------------------------------
// SAVE SNAPSHOT
// -------------------------------------
func TestSaveSnapshot(t *testing.T) {
	redisServer := setup()
	defer teardown(redisServer)

	type args struct {
		id     string
		score  int
		region vec2.Vec2
		snap   snapshot
	}
	tests := []struct {
		name       string
		args       args
		publishErr error
		expectErr  error
	}{
		{
			name: "Test succesful save",
			args: args{
				id:     "brains/actor/1",
				score:  7,
				region: vec2.Vec2{X: 1, Y: 2},
				snap:   snapshot{ID: "brains/actor/1", Health: 90},
			},
		},
		{
			name: "Test full publish queue",
			args: args{
				id:     "brains/actor/2",
				score:  0,
				region: vec2.Vec2{X: 0, Y: 0},
				snap:   snapshot{ID: "brains/actor/2", Health: 100},
			},
			publishErr: datacom.ErrQueueFull,
			expectErr:  datacom.ErrQueueFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redisServer.FlushAll()
			mockPAL := &mocks.PubsubAccessLayer{}
			mockPAL.On("QueuePublishEvent", "updateActor", mock.Anything, tt.args.region).Return(tt.publishErr)
			dc, err := datacom.NewDatacom("testing", redisServer.Addr(), mockPAL)
			require.NoError(t, err)
			defer dc.Close()

			err = dc.SaveSnapshot(tt.args.id, tt.args.score, tt.args.region, tt.args.snap)
			if tt.expectErr != nil {
				assert.True(t, errors.Is(err, tt.expectErr), "expected error: %v, got %v", tt.expectErr, err)
			} else {
				assert.NoError(t, err)
			}
			mockPAL.AssertNumberOfCalls(t, "QueuePublishEvent", 1)

			// the store is written before publishing
			var got snapshot
			require.NoError(t, json.Unmarshal([]byte(redisServer.HGet("actors.content", tt.args.id)), &got))
			assert.Equal(t, tt.args.snap, got)
			score, err := redisServer.ZScore("actors.scores", tt.args.id)
			require.NoError(t, err)
			assert.Equal(t, float64(tt.args.score), score)
		})
	}
}

func TestSaveSnapshotWithoutPubsub(t *testing.T) {
	redisServer := setup()
	defer teardown(redisServer)

	dc, err := datacom.NewDatacom("testing", redisServer.Addr(), nil)
	require.NoError(t, err)
	defer dc.Close()
	assert.NoError(t, dc.SaveSnapshot("a", 1, vec2.Vec2{}, snapshot{ID: "a"}))
}

// -------------------------------------
// GET SNAPSHOT
// -------------------------------------
func TestGetSnapshot(t *testing.T) {
	redisServer := setup()
	defer teardown(redisServer)
	dc, err := datacom.NewDatacom("testing", redisServer.Addr(), nil)
	require.NoError(t, err)
	defer dc.Close()

	want := snapshot{ID: "brains/actor/9", Health: 42}
	require.NoError(t, dc.SaveSnapshot(want.ID, 3, vec2.Vec2{}, want))

	raw, err := dc.GetSnapshot(want.ID)
	require.NoError(t, err)
	var got snapshot
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, want, got)

	_, err = dc.GetSnapshot("brains/actor/missing")
	assert.ErrorIs(t, err, datacom.ErrNotFound)
}

// -------------------------------------
// LEADERBOARD
// -------------------------------------
func TestLeaderboard(t *testing.T) {
	redisServer := setup()
	defer teardown(redisServer)
	dc, err := datacom.NewDatacom("testing", redisServer.Addr(), nil)
	require.NoError(t, err)
	defer dc.Close()

	scores := map[string]int{"a": 5, "b": 12, "c": 0, "d": 7}
	for id, score := range scores {
		require.NoError(t, dc.SaveSnapshot(id, score, vec2.Vec2{}, snapshot{ID: id}))
	}
	// a later save overwrites the score
	require.NoError(t, dc.SaveSnapshot("c", 20, vec2.Vec2{}, snapshot{ID: "c"}))

	tests := []struct {
		name string
		n    int
		want []datacom.Standing
	}{
		{"top two", 2, []datacom.Standing{{ID: "c", Score: 20}, {ID: "b", Score: 12}}},
		{"more than stored", 10, []datacom.Standing{{ID: "c", Score: 20}, {ID: "b", Score: 12}, {ID: "d", Score: 7}, {ID: "a", Score: 5}}},
		{"none", 0, []datacom.Standing{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dc.Leaderboard(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// -------------------------------------
// RESET
// -------------------------------------
func TestReset(t *testing.T) {
	redisServer := setup()
	defer teardown(redisServer)
	dc, err := datacom.NewDatacom("testing", redisServer.Addr(), nil)
	require.NoError(t, err)
	defer dc.Close()

	require.NoError(t, dc.SaveSnapshot("a", 1, vec2.Vec2{}, snapshot{ID: "a"}))
	require.NoError(t, dc.Reset())

	_, err = dc.GetSnapshot("a")
	assert.ErrorIs(t, err, datacom.ErrNotFound)
	board, err := dc.Leaderboard(5)
	require.NoError(t, err)
	assert.Empty(t, board)
}
