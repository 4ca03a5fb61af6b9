package pointcloud

import (
	"github.com/golang/geo/r3"

	"go.viam.com/lidarfrontend/spatialmath"
)

// ApplyPose returns a new cloud with every point transformed by the given
// pose. The input cloud is unchanged; point data is shared, not copied.
func ApplyPose(cloud PointCloud, pose spatialmath.Pose) PointCloud {
	out := NewWithPrealloc(cloud.Size())
	cloud.Iterate(func(p r3.Vector, d Data) bool {
		return out.Set(pose.TransformPoint(p), d) == nil
	})
	return out
}

// BoundingBoxContains reports whether the cloud's axis-aligned bounding box
// contains the given point. Empty clouds contain nothing.
func BoundingBoxContains(cloud PointCloud, p r3.Vector) bool {
	if cloud.Size() == 0 {
		return false
	}
	meta := cloud.MetaData()
	return p.X >= meta.MinX && p.X <= meta.MaxX &&
		p.Y >= meta.MinY && p.Y <= meta.MaxY &&
		p.Z >= meta.MinZ && p.Z <= meta.MaxZ
}
