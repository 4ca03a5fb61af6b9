package inject

import (
	"go.viam.com/lidarfrontend/frontend"
	"go.viam.com/lidarfrontend/pointcloud"
	"go.viam.com/lidarfrontend/spatialmath"
)

// Estimator is an injectable frontend.Estimator.
type Estimator struct {
	SetFilteredScanFunc     func(scan pointcloud.PointCloud)
	SetExternalDeltaFunc    func(delta spatialmath.Pose)
	UpdateEstimateFunc      func() bool
	IncrementalEstimateFunc func() spatialmath.Pose
	DiagnosticsFunc         func() frontend.Diagnostic
}

var _ frontend.Estimator = (*Estimator)(nil)

// SetFilteredScan calls the injected func or does nothing.
func (e *Estimator) SetFilteredScan(scan pointcloud.PointCloud) {
	if e.SetFilteredScanFunc != nil {
		e.SetFilteredScanFunc(scan)
	}
}

// SetExternalDelta calls the injected func or does nothing.
func (e *Estimator) SetExternalDelta(delta spatialmath.Pose) {
	if e.SetExternalDeltaFunc != nil {
		e.SetExternalDeltaFunc(delta)
	}
}

// UpdateEstimate calls the injected func or reports convergence.
func (e *Estimator) UpdateEstimate() bool {
	if e.UpdateEstimateFunc == nil {
		return true
	}
	return e.UpdateEstimateFunc()
}

// IncrementalEstimate calls the injected func or returns the identity.
func (e *Estimator) IncrementalEstimate() spatialmath.Pose {
	if e.IncrementalEstimateFunc == nil {
		return spatialmath.NewZeroPose()
	}
	return e.IncrementalEstimateFunc()
}

// Diagnostics calls the injected func or reports LevelOK.
func (e *Estimator) Diagnostics() frontend.Diagnostic {
	if e.DiagnosticsFunc == nil {
		return frontend.Diagnostic{Name: "estimator", Level: frontend.LevelOK}
	}
	return e.DiagnosticsFunc()
}
