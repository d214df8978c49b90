package generator

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// TimingEnv overrides the timing output path for every run.
const TimingEnv = "UVM_TBGEN_TIMING_JSONL"

type timingEvent struct {
	RunID      string  `json:"run_id"`
	Phase      string  `json:"phase"`
	Kind       string  `json:"kind"`
	File       string  `json:"file,omitempty"`
	Status     string  `json:"status,omitempty"`
	StartMS    float64 `json:"start_ms"`
	DurationMS float64 `json:"duration_ms"`
	EndMS      float64 `json:"end_ms"`
}

// timingRecorder appends one JSON line per phase or artifact. A nil or
// disabled recorder accepts every call and does nothing.
type timingRecorder struct {
	runID   string
	enabled bool
	start   time.Time
	mu      sync.Mutex
	file    *os.File
	enc     *json.Encoder
	err     error
}

func newTimingRecorder(runID string, start time.Time, path string) *timingRecorder {
	tr := &timingRecorder{runID: runID, start: start}
	if path == "" {
		return tr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		tr.err = err
		return tr
	}
	tr.enabled = true
	tr.file = f
	tr.enc = json.NewEncoder(f)
	return tr
}

func (tr *timingRecorder) Err() error {
	if tr == nil {
		return nil
	}
	return tr.err
}

func (tr *timingRecorder) Close() {
	if tr == nil || tr.file == nil {
		return
	}
	_ = tr.file.Close()
}

func (tr *timingRecorder) record(phase, kind, file, status string, start time.Time, duration time.Duration) {
	if tr == nil || !tr.enabled {
		return
	}
	startMS := durationToMS(start.Sub(tr.start))
	durationMS := durationToMS(duration)
	event := timingEvent{
		RunID:      tr.runID,
		Phase:      phase,
		Kind:       kind,
		File:       file,
		Status:     status,
		StartMS:    startMS,
		DurationMS: durationMS,
		EndMS:      startMS + durationMS,
	}
	tr.mu.Lock()
	if err := tr.enc.Encode(event); err != nil && tr.err == nil {
		tr.err = err
	}
	tr.mu.Unlock()
}

// Stage records a pipeline phase that started at start.
func (tr *timingRecorder) Stage(phase string, start time.Time, status string) {
	tr.record(phase, "stage", "", status, start, time.Since(start))
}

// File records the rendering of one artifact.
func (tr *timingRecorder) File(phase, file, status string, start time.Time) {
	tr.record(phase, "file", file, status, start, time.Since(start))
}

func durationToMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000_000.0
}

// resolveTimingPath picks the JSONL destination: the environment wins over config.
func resolveTimingPath(configured string) string {
	if envPath := os.Getenv(TimingEnv); envPath != "" {
		return envPath
	}
	return configured
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
