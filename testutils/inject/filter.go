// Package inject provides injectable doubles for the frontend's collaborator
// interfaces. Every method calls its injected func field; methods without an
// injected func fall back to a harmless default so tests only wire what they
// assert on.
package inject

import (
	"go.viam.com/lidarfrontend/frontend"
	"go.viam.com/lidarfrontend/pointcloud"
)

// Filter is an injectable frontend.Filter.
type Filter struct {
	FilterFunc func(raw pointcloud.PointCloud, openSpace bool) (pointcloud.PointCloud, error)
}

var _ frontend.Filter = (*Filter)(nil)

// Filter calls the injected FilterFunc or passes the scan through unchanged.
func (f *Filter) Filter(raw pointcloud.PointCloud, openSpace bool) (pointcloud.PointCloud, error) {
	if f.FilterFunc == nil {
		return raw, nil
	}
	return f.FilterFunc(raw, openSpace)
}
