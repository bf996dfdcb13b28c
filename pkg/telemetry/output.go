package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Recorder writes arena telemetry as CSV. Records are buffered by Record and
// Tick and written by Flush. A nil *Recorder records nothing.
type Recorder struct {
	dir        string
	cyclesFile *os.File
	ticksFile  *os.File

	mu      sync.Mutex
	cycles  []CycleRecord
	ticks   []TickRecord
	written int

	// Track if headers have been written
	cyclesHeaderWritten bool
	ticksHeaderWritten  bool
}

// NewRecorder creates the output directory and the CSV files in it.
// Returns nil if dir is empty (recording disabled).
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	r := &Recorder{dir: dir}

	f, err := os.Create(filepath.Join(dir, "cycles.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating cycles.csv: %w", err)
	}
	r.cyclesFile = f

	f, err = os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		r.cyclesFile.Close()
		return nil, fmt.Errorf("creating ticks.csv: %w", err)
	}
	r.ticksFile = f

	return r, nil
}

// Dir returns the output directory
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Record buffers a cycle record
func (r *Recorder) Record(c CycleRecord) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cycles = append(r.cycles, c)
	r.mu.Unlock()
}

// Tick buffers a tick record
func (r *Recorder) Tick(t TickRecord) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.ticks = append(r.ticks, t)
	r.mu.Unlock()
}

// Written returns how many cycle records reached the file
func (r *Recorder) Written() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Flush writes every buffered record
func (r *Recorder) Flush() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.cycles) > 0 {
		if err := writeCSV(r.cyclesFile, r.cycles, &r.cyclesHeaderWritten); err != nil {
			return fmt.Errorf("writing cycles: %w", err)
		}
		r.written += len(r.cycles)
		r.cycles = r.cycles[:0]
	}
	if len(r.ticks) > 0 {
		if err := writeCSV(r.ticksFile, r.ticks, &r.ticksHeaderWritten); err != nil {
			return fmt.Errorf("writing ticks: %w", err)
		}
		r.ticks = r.ticks[:0]
	}
	return nil
}

// writeCSV writes the header only on the first call for a file
func writeCSV(f *os.File, records interface{}, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteConfig saves the effective configuration as YAML
func (r *Recorder) WriteConfig(cfg interface{}) error {
	if r == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Close flushes and closes all output files
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	flushErr := r.Flush()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.cyclesFile.Close(); err != nil && flushErr == nil {
		flushErr = err
	}
	if err := r.ticksFile.Close(); err != nil && flushErr == nil {
		flushErr = err
	}
	return flushErr
}
