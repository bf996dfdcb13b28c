package telemetry

import (
	"time"

	"github.com/terrariumai/brains/pkg/robot"
)

// CycleRecord is one decision cycle as written to cycles.csv
type CycleRecord struct {
	At        string `csv:"at"`
	Robot     string `csv:"robot"`
	ID        string `csv:"id"`
	Action    string `csv:"action"`
	Fault     string `csv:"fault"`
	State     string `csv:"state"`
	Energy    int    `csv:"energy"`
	Health    int    `csv:"health"`
	Score     int    `csv:"score"`
	LatencyMs int64  `csv:"latency_ms"`
}

// TickRecord is one world tick as written to ticks.csv
type TickRecord struct {
	Tick   int64  `csv:"tick"`
	At     string `csv:"at"`
	Alive  int    `csv:"alive"`
	Bodies int    `csv:"bodies"`
}

// FromCycle converts a robot cycle into its CSV form
func FromCycle(c robot.Cycle) CycleRecord {
	action := string(c.Action)
	if action == "" {
		action = "none"
	}
	return CycleRecord{
		At:        c.At.UTC().Format(time.RFC3339Nano),
		Robot:     c.Robot,
		ID:        c.ID,
		Action:    action,
		Fault:     c.Fault,
		State:     string(c.State),
		Energy:    c.Energy,
		Health:    c.Health,
		Score:     c.Score,
		LatencyMs: c.Latency.Milliseconds(),
	}
}
