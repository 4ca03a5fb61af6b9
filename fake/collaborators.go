// Package fake provides functional in-process collaborators for the
// frontend: a decimating filter, a dead-reckoning estimator and a
// pose-integrating localizer. They are real, deterministic implementations —
// suitable for offline replay and tests — that stop short of actual point
// cloud registration, which belongs to an external engine.
package fake

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/lidarfrontend/frontend"
	"go.viam.com/lidarfrontend/pointcloud"
	"go.viam.com/lidarfrontend/spatialmath"
)

// Filter decimates scans by keeping every Nth point. Open-space scans use
// the more aggressive ratio.
type Filter struct {
	Ratio          int
	OpenSpaceRatio int
}

// NewFilter returns a filter with the given decimation ratios; values below
// one behave as pass-through.
func NewFilter(ratio, openSpaceRatio int) *Filter {
	return &Filter{Ratio: ratio, OpenSpaceRatio: openSpaceRatio}
}

// Filter implements frontend.Filter.
func (f *Filter) Filter(raw pointcloud.PointCloud, openSpace bool) (pointcloud.PointCloud, error) {
	ratio := f.Ratio
	if openSpace {
		ratio = f.OpenSpaceRatio
	}
	if ratio <= 1 {
		return raw, nil
	}
	out := pointcloud.NewWithPrealloc(raw.Size()/ratio + 1)
	i := 0
	var err error
	raw.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		if i%ratio == 0 {
			err = out.Set(p, d)
		}
		i++
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Estimator dead-reckons from externally supplied deltas. Without an
// external delta it reports zero motion. Convergence failures are
// injectable through FailNext for exercising the bootstrap re-entry path.
type Estimator struct {
	logger golog.Logger

	delta    spatialmath.Pose
	lastSize int

	// FailNext makes the next UpdateEstimate report loss of convergence.
	FailNext bool
}

// NewEstimator returns a dead-reckoning estimator.
func NewEstimator(logger golog.Logger) *Estimator {
	return &Estimator{logger: logger, delta: spatialmath.NewZeroPose()}
}

// SetFilteredScan implements frontend.Estimator.
func (e *Estimator) SetFilteredScan(scan pointcloud.PointCloud) {
	e.lastSize = scan.Size()
}

// SetExternalDelta implements frontend.Estimator.
func (e *Estimator) SetExternalDelta(delta spatialmath.Pose) {
	e.delta = delta
}

// UpdateEstimate implements frontend.Estimator.
func (e *Estimator) UpdateEstimate() bool {
	if e.FailNext {
		e.FailNext = false
		e.delta = spatialmath.NewZeroPose()
		return false
	}
	return true
}

// IncrementalEstimate implements frontend.Estimator.
func (e *Estimator) IncrementalEstimate() spatialmath.Pose {
	return e.delta
}

// Diagnostics implements frontend.Estimator.
func (e *Estimator) Diagnostics() frontend.Diagnostic {
	return frontend.Diagnostic{
		Name:    "estimator",
		Level:   frontend.LevelOK,
		Message: "dead reckoning",
	}
}

// Localizer integrates motion updates into an absolute pose and performs
// frame transforms with it. Its measurement update is a pass-through
// refinement: scan registration is deliberately out of scope.
type Localizer struct {
	logger golog.Logger
	pose   spatialmath.Pose
	stamp  time.Time
}

// NewLocalizer returns a localizer starting at the identity pose.
func NewLocalizer(logger golog.Logger) *Localizer {
	return &Localizer{logger: logger, pose: spatialmath.NewZeroPose()}
}

// MotionUpdate implements frontend.Localizer.
func (l *Localizer) MotionUpdate(delta spatialmath.Pose) {
	l.pose = spatialmath.Compose(l.pose, delta)
}

// TransformToFixedFrame implements frontend.Localizer.
func (l *Localizer) TransformToFixedFrame(scan pointcloud.PointCloud) pointcloud.PointCloud {
	return pointcloud.ApplyPose(scan, l.pose)
}

// TransformToSensorFrame implements frontend.Localizer.
func (l *Localizer) TransformToSensorFrame(scan pointcloud.PointCloud) pointcloud.PointCloud {
	return pointcloud.ApplyPose(scan, spatialmath.Invert(l.pose))
}

// MeasurementUpdate implements frontend.Localizer.
func (l *Localizer) MeasurementUpdate(filtered, neighbors pointcloud.PointCloud) (pointcloud.PointCloud, error) {
	return filtered, nil
}

// IntegratedEstimate implements frontend.Localizer.
func (l *Localizer) IntegratedEstimate() spatialmath.Pose {
	return l.pose
}

// UpdateTimestamp implements frontend.Localizer.
func (l *Localizer) UpdateTimestamp(t time.Time) {
	l.stamp = t
}

// Diagnostics implements frontend.Localizer.
func (l *Localizer) Diagnostics() frontend.Diagnostic {
	return frontend.Diagnostic{
		Name:    "localizer",
		Level:   frontend.LevelOK,
		Message: "pose integration",
	}
}
