package frontend

import (
	"time"

	"go.viam.com/lidarfrontend/pointcloud"
	"go.viam.com/lidarfrontend/spatialmath"
)

// Filter reduces a raw scan before it reaches the scan-to-scan estimator.
// The open-space flag lets the implementation adapt its aggressiveness; how
// it does so is its own business.
type Filter interface {
	Filter(raw pointcloud.PointCloud, openSpace bool) (pointcloud.PointCloud, error)
}

// Estimator is the scan-to-scan odometry estimator. It consumes one filtered
// scan per cycle and maintains an incremental pose estimate between the two
// most recent scans.
type Estimator interface {
	// SetFilteredScan hands the estimator the current cycle's filtered scan.
	SetFilteredScan(scan pointcloud.PointCloud)

	// SetExternalDelta supplies a relative pose from an external odometry
	// source as a motion prior for the next update.
	SetExternalDelta(delta spatialmath.Pose)

	// UpdateEstimate runs the scan-to-scan update. A false return signals
	// loss of convergence, not a programming error.
	UpdateEstimate() bool

	// IncrementalEstimate returns the relative pose between the previous and
	// the current scan as of the last update.
	IncrementalEstimate() spatialmath.Pose

	// Diagnostics returns the estimator's status for the current cycle.
	Diagnostics() Diagnostic
}

// Localizer is the scan-to-submap localization and registration engine. It
// owns the integrated absolute pose estimate.
type Localizer interface {
	// MotionUpdate propagates the integrated estimate by a relative pose.
	MotionUpdate(delta spatialmath.Pose)

	// TransformToFixedFrame expresses a sensor-frame scan in the fixed frame
	// using the current integrated estimate.
	TransformToFixedFrame(scan pointcloud.PointCloud) pointcloud.PointCloud

	// TransformToSensorFrame expresses a fixed-frame scan in the sensor frame
	// using the current integrated estimate.
	TransformToSensorFrame(scan pointcloud.PointCloud) pointcloud.PointCloud

	// MeasurementUpdate refines the integrated estimate by registering the
	// filtered scan against map neighbors, returning the refined scan.
	MeasurementUpdate(filtered, neighbors pointcloud.PointCloud) (pointcloud.PointCloud, error)

	// IntegratedEstimate returns the current absolute pose estimate.
	IntegratedEstimate() spatialmath.Pose

	// UpdateTimestamp informs the localizer of the stamp its estimate
	// corresponds to.
	UpdateTimestamp(t time.Time)

	// Diagnostics returns the localizer's status for the current cycle.
	Diagnostics() Diagnostic
}

// Mapper is the persistent map store keyframes are fused into.
type Mapper interface {
	// InsertPoints fuses a fixed-frame scan into the map.
	InsertPoints(scan pointcloud.PointCloud) error

	// ApproxNearestNeighbors returns, for a fixed-frame scan, the stored map
	// points nearest to its points.
	ApproxNearestNeighbors(scan pointcloud.PointCloud) (pointcloud.PointCloud, error)

	// PublishMap pushes a full map snapshot to whatever downstream consumer
	// the mapper was configured with.
	PublishMap() error
}
