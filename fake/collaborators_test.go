package fake

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/lidarfrontend/frontend"
	"go.viam.com/lidarfrontend/pointcloud"
	"go.viam.com/lidarfrontend/spatialmath"
)

var (
	_ frontend.Filter    = (*Filter)(nil)
	_ frontend.Estimator = (*Estimator)(nil)
	_ frontend.Localizer = (*Localizer)(nil)
)

func cloudOfSize(t *testing.T, n int) pointcloud.PointCloud {
	t.Helper()
	pc := pointcloud.New()
	for i := 0; i < n; i++ {
		test.That(t, pc.Set(pointcloud.NewVector(float64(i), 0, 0), nil), test.ShouldBeNil)
	}
	return pc
}

func TestFilterDecimation(t *testing.T) {
	f := NewFilter(2, 5)
	raw := cloudOfSize(t, 10)

	filtered, err := f.Filter(raw, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, filtered.Size(), test.ShouldEqual, 5)

	filtered, err = f.Filter(raw, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, filtered.Size(), test.ShouldEqual, 2)
}

func TestFilterPassThrough(t *testing.T) {
	f := NewFilter(1, 1)
	raw := cloudOfSize(t, 7)
	filtered, err := f.Filter(raw, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, filtered.Size(), test.ShouldEqual, 7)
}

func TestEstimatorDeadReckoning(t *testing.T) {
	e := NewEstimator(golog.NewTestLogger(t))
	e.SetFilteredScan(cloudOfSize(t, 3))

	test.That(t, e.UpdateEstimate(), test.ShouldBeTrue)
	// no external delta yet: zero motion
	test.That(t, e.IncrementalEstimate().Point().Norm(), test.ShouldAlmostEqual, 0)

	delta := spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5})
	e.SetExternalDelta(delta)
	test.That(t, e.UpdateEstimate(), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(e.IncrementalEstimate(), delta), test.ShouldBeTrue)

	test.That(t, e.Diagnostics().Level, test.ShouldEqual, frontend.LevelOK)
}

func TestEstimatorFailNext(t *testing.T) {
	e := NewEstimator(golog.NewTestLogger(t))
	e.SetExternalDelta(spatialmath.NewPoseFromPoint(r3.Vector{X: 1}))
	e.FailNext = true

	test.That(t, e.UpdateEstimate(), test.ShouldBeFalse)
	// the failure clears the pending delta and only fires once
	test.That(t, e.IncrementalEstimate().Point().Norm(), test.ShouldAlmostEqual, 0)
	test.That(t, e.UpdateEstimate(), test.ShouldBeTrue)
}

func TestLocalizerPoseIntegration(t *testing.T) {
	l := NewLocalizer(golog.NewTestLogger(t))
	test.That(t, spatialmath.PoseAlmostEqual(l.IntegratedEstimate(), spatialmath.NewZeroPose()), test.ShouldBeTrue)

	l.MotionUpdate(spatialmath.NewPoseFromPoint(r3.Vector{X: 1}))
	l.MotionUpdate(spatialmath.NewPoseFromPoint(r3.Vector{X: 1}))
	test.That(t, l.IntegratedEstimate().Point().X, test.ShouldAlmostEqual, 2, 1e-9)

	// a zero motion update leaves the pose alone
	l.MotionUpdate(spatialmath.NewZeroPose())
	test.That(t, l.IntegratedEstimate().Point().X, test.ShouldAlmostEqual, 2, 1e-9)
}

func TestLocalizerFrameTransforms(t *testing.T) {
	l := NewLocalizer(golog.NewTestLogger(t))
	l.MotionUpdate(spatialmath.NewPoseFromAxisAngle(r3.Vector{X: 1}, r3.Vector{Z: 1}, math.Pi/2))

	scan := pointcloud.New()
	test.That(t, scan.Set(pointcloud.NewVector(1, 0, 0), nil), test.ShouldBeNil)

	fixed := l.TransformToFixedFrame(scan)
	test.That(t, fixed.Size(), test.ShouldEqual, 1)
	var got r3.Vector
	fixed.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		got = p
		return true
	})
	test.That(t, got.X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, got.Y, test.ShouldAlmostEqual, 1, 1e-9)

	// the sensor-frame transform is the inverse
	back := l.TransformToSensorFrame(fixed)
	back.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		got = p
		return true
	})
	test.That(t, got.X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, got.Y, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestLocalizerMeasurementUpdatePassThrough(t *testing.T) {
	l := NewLocalizer(golog.NewTestLogger(t))
	filtered := cloudOfSize(t, 4)
	refined, err := l.MeasurementUpdate(filtered, pointcloud.New())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, refined, test.ShouldEqual, filtered)
}
