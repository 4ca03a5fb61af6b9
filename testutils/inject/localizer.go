package inject

import (
	"time"

	"go.viam.com/lidarfrontend/frontend"
	"go.viam.com/lidarfrontend/pointcloud"
	"go.viam.com/lidarfrontend/spatialmath"
)

// Localizer is an injectable frontend.Localizer.
type Localizer struct {
	MotionUpdateFunc          func(delta spatialmath.Pose)
	TransformToFixedFrameFunc func(scan pointcloud.PointCloud) pointcloud.PointCloud
	TransformToSensorFrameFunc func(scan pointcloud.PointCloud) pointcloud.PointCloud
	MeasurementUpdateFunc     func(filtered, neighbors pointcloud.PointCloud) (pointcloud.PointCloud, error)
	IntegratedEstimateFunc    func() spatialmath.Pose
	UpdateTimestampFunc       func(t time.Time)
	DiagnosticsFunc           func() frontend.Diagnostic
}

var _ frontend.Localizer = (*Localizer)(nil)

// MotionUpdate calls the injected func or does nothing.
func (l *Localizer) MotionUpdate(delta spatialmath.Pose) {
	if l.MotionUpdateFunc != nil {
		l.MotionUpdateFunc(delta)
	}
}

// TransformToFixedFrame calls the injected func or returns the scan as-is.
func (l *Localizer) TransformToFixedFrame(scan pointcloud.PointCloud) pointcloud.PointCloud {
	if l.TransformToFixedFrameFunc == nil {
		return scan
	}
	return l.TransformToFixedFrameFunc(scan)
}

// TransformToSensorFrame calls the injected func or returns the scan as-is.
func (l *Localizer) TransformToSensorFrame(scan pointcloud.PointCloud) pointcloud.PointCloud {
	if l.TransformToSensorFrameFunc == nil {
		return scan
	}
	return l.TransformToSensorFrameFunc(scan)
}

// MeasurementUpdate calls the injected func or returns the filtered scan.
func (l *Localizer) MeasurementUpdate(filtered, neighbors pointcloud.PointCloud) (pointcloud.PointCloud, error) {
	if l.MeasurementUpdateFunc == nil {
		return filtered, nil
	}
	return l.MeasurementUpdateFunc(filtered, neighbors)
}

// IntegratedEstimate calls the injected func or returns the identity pose.
func (l *Localizer) IntegratedEstimate() spatialmath.Pose {
	if l.IntegratedEstimateFunc == nil {
		return spatialmath.NewZeroPose()
	}
	return l.IntegratedEstimateFunc()
}

// UpdateTimestamp calls the injected func or does nothing.
func (l *Localizer) UpdateTimestamp(t time.Time) {
	if l.UpdateTimestampFunc != nil {
		l.UpdateTimestampFunc(t)
	}
}

// Diagnostics calls the injected func or reports LevelOK.
func (l *Localizer) Diagnostics() frontend.Diagnostic {
	if l.DiagnosticsFunc == nil {
		return frontend.Diagnostic{Name: "localizer", Level: frontend.LevelOK}
	}
	return l.DiagnosticsFunc()
}
