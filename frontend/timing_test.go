package frontend

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestProfilerMeasuresStage(t *testing.T) {
	mock := clock.NewMock()
	var samples []TimingSample
	p := NewProfilerWithClock(true, func(s TimingSample) { samples = append(samples, s) }, mock)

	err := p.Time(StageScanToScan, func() error {
		mock.Add(50 * time.Millisecond)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(samples), test.ShouldEqual, 1)
	test.That(t, samples[0].Stage, test.ShouldEqual, StageScanToScan)
	test.That(t, samples[0].Duration, test.ShouldEqual, 50*time.Millisecond)
}

func TestProfilerPassesErrorThrough(t *testing.T) {
	mock := clock.NewMock()
	var samples []TimingSample
	p := NewProfilerWithClock(true, func(s TimingSample) { samples = append(samples, s) }, mock)

	want := errors.New("stage failed")
	err := p.Time(StageCallback, func() error { return want })
	test.That(t, err, test.ShouldEqual, want)
	// a failing stage is still measured
	test.That(t, len(samples), test.ShouldEqual, 1)
}

func TestProfilerDisabled(t *testing.T) {
	called := false
	p := NewProfiler(false, func(s TimingSample) { t.Error("unexpected sample") })
	test.That(t, p.Time(StageCallback, func() error {
		called = true
		return nil
	}), test.ShouldBeNil)
	test.That(t, called, test.ShouldBeTrue)

	// enabled but without a sink is also disabled
	p = NewProfiler(true, nil)
	test.That(t, p.Time(StageCallback, func() error { return nil }), test.ShouldBeNil)
}

func TestProfilerNil(t *testing.T) {
	var p *Profiler
	called := false
	test.That(t, p.Time(StageCallback, func() error {
		called = true
		return nil
	}), test.ShouldBeNil)
	test.That(t, called, test.ShouldBeTrue)
}

func TestStageString(t *testing.T) {
	test.That(t, StageCallback.String(), test.ShouldEqual, "lidar_callback")
	test.That(t, StageScanToScan.String(), test.ShouldEqual, "scan_to_scan")
	test.That(t, StageScanToSubmap.String(), test.ShouldEqual, "scan_to_submap")
	test.That(t, Stage(99).String(), test.ShouldEqual, "unknown")
}
