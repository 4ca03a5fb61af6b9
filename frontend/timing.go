package frontend

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Stage identifies one timed section of the scan callback.
type Stage int

const (
	// StageCallback covers the whole per-scan callback.
	StageCallback Stage = iota
	// StageScanToScan covers the scan-to-scan estimator update.
	StageScanToScan
	// StageScanToSubmap covers the motion+measurement update cycle.
	StageScanToSubmap
)

func (s Stage) String() string {
	switch s {
	case StageCallback:
		return "lidar_callback"
	case StageScanToScan:
		return "scan_to_scan"
	case StageScanToSubmap:
		return "scan_to_submap"
	default:
		return "unknown"
	}
}

// TimingSample is one wall-clock measurement of a pipeline stage.
type TimingSample struct {
	Stage    Stage
	Duration time.Duration
}

// Profiler wraps pipeline stages with wall-clock measurement. It is a pure
// observer: a disabled or nil profiler runs the wrapped stage unchanged, and
// measurements never influence control flow.
type Profiler struct {
	clock   clock.Clock
	enabled bool
	sink    func(TimingSample)
}

// NewProfiler returns a profiler pushing samples into sink. A nil sink
// disables measurement even when enabled.
func NewProfiler(enabled bool, sink func(TimingSample)) *Profiler {
	return NewProfilerWithClock(enabled, sink, clock.New())
}

// NewProfilerWithClock is NewProfiler with an injectable clock for tests.
func NewProfilerWithClock(enabled bool, sink func(TimingSample), c clock.Clock) *Profiler {
	return &Profiler{clock: c, enabled: enabled && sink != nil, sink: sink}
}

// Time runs fn, measuring it as the given stage when profiling is enabled.
// The returned error is fn's own, untouched.
func (p *Profiler) Time(stage Stage, fn func() error) error {
	if p == nil || !p.enabled {
		return fn()
	}
	start := p.clock.Now()
	err := fn()
	p.sink(TimingSample{Stage: stage, Duration: p.clock.Since(start)})
	return err
}
