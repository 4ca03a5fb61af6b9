package inject

import (
	"go.viam.com/lidarfrontend/frontend"
	"go.viam.com/lidarfrontend/pointcloud"
)

// Mapper is an injectable frontend.Mapper.
type Mapper struct {
	InsertPointsFunc           func(scan pointcloud.PointCloud) error
	ApproxNearestNeighborsFunc func(scan pointcloud.PointCloud) (pointcloud.PointCloud, error)
	PublishMapFunc             func() error
}

var _ frontend.Mapper = (*Mapper)(nil)

// InsertPoints calls the injected func or does nothing.
func (m *Mapper) InsertPoints(scan pointcloud.PointCloud) error {
	if m.InsertPointsFunc == nil {
		return nil
	}
	return m.InsertPointsFunc(scan)
}

// ApproxNearestNeighbors calls the injected func or returns an empty cloud.
func (m *Mapper) ApproxNearestNeighbors(scan pointcloud.PointCloud) (pointcloud.PointCloud, error) {
	if m.ApproxNearestNeighborsFunc == nil {
		return pointcloud.New(), nil
	}
	return m.ApproxNearestNeighborsFunc(scan)
}

// PublishMap calls the injected func or does nothing.
func (m *Mapper) PublishMap() error {
	if m.PublishMapFunc == nil {
		return nil
	}
	return m.PublishMapFunc()
}
