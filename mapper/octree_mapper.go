// Package mapper provides an octree-backed implementation of the frontend's
// Mapper collaborator: keyframe insertion, approximate nearest-neighbor
// queries and periodic map snapshots.
package mapper

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/lidarfrontend/octree"
	"go.viam.com/lidarfrontend/pointcloud"
)

// Option configures an OctreeMapper.
type Option func(*OctreeMapper)

// WithNeighborRadius bounds how far a stored point may be from a query point
// and still count as its neighbor. Zero (the default) means unbounded.
func WithNeighborRadius(radius float64) Option {
	return func(m *OctreeMapper) {
		m.neighborRadius = radius
	}
}

// WithPublishSink sets where PublishMap delivers its snapshots. Without a
// sink PublishMap is a logged no-op.
func WithPublishSink(sink func(pointcloud.PointCloud)) Option {
	return func(m *OctreeMapper) {
		m.sink = sink
	}
}

// OctreeMapper stores fixed-frame keyframe scans in an octree. The tree
// starts with the given bounds and doubles its side length whenever an
// insertion lands outside them.
type OctreeMapper struct {
	logger         golog.Logger
	tree           octree.Octree
	neighborRadius float64
	sink           func(pointcloud.PointCloud)
}

// New creates a mapper centered at the given point covering a cube with the
// given side length.
func New(ctx context.Context, center r3.Vector, sideLength float64, logger golog.Logger, opts ...Option) (*OctreeMapper, error) {
	tree, err := octree.New(ctx, center, sideLength, logger)
	if err != nil {
		return nil, err
	}
	m := &OctreeMapper{logger: logger, tree: tree}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Size returns the number of stored map points.
func (m *OctreeMapper) Size() int {
	return m.tree.Size()
}

// InsertPoints fuses a fixed-frame scan into the map, growing the tree as
// needed to cover it.
func (m *OctreeMapper) InsertPoints(scan pointcloud.PointCloud) error {
	var insertErr error
	scan.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		if err := m.growToFit(p); err != nil {
			insertErr = err
			return false
		}
		if err := m.tree.Set(p, d); err != nil {
			insertErr = err
			return false
		}
		return true
	})
	return errors.Wrap(insertErr, "inserting points into map")
}

// growToFit rebuilds the octree with doubled side lengths until the given
// point fits inside its bounds.
func (m *OctreeMapper) growToFit(p r3.Vector) error {
	for !insideCube(p, m.tree.Center(), m.tree.SideLength()) {
		grown, err := octree.New(context.Background(), m.tree.Center(), m.tree.SideLength()*2, m.logger)
		if err != nil {
			return err
		}
		var rebuildErr error
		m.tree.Iterate(func(q r3.Vector, d pointcloud.Data) bool {
			rebuildErr = grown.Set(q, d)
			return rebuildErr == nil
		})
		if rebuildErr != nil {
			return rebuildErr
		}
		m.logger.Debugw("map octree grown", "side_length", grown.SideLength(), "points", grown.Size())
		m.tree = grown
	}
	return nil
}

func insideCube(p, center r3.Vector, sideLength float64) bool {
	half := sideLength / 2
	return p.X >= center.X-half && p.X <= center.X+half &&
		p.Y >= center.Y-half && p.Y <= center.Y+half &&
		p.Z >= center.Z-half && p.Z <= center.Z+half
}

// ApproxNearestNeighbors returns, for each point of the query scan, the
// nearest stored map point within the configured radius. Duplicate neighbors
// collapse since clouds are keyed by position.
func (m *OctreeMapper) ApproxNearestNeighbors(scan pointcloud.PointCloud) (pointcloud.PointCloud, error) {
	neighbors := pointcloud.NewWithPrealloc(scan.Size())
	var queryErr error
	scan.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		nn, found := m.tree.NearestNeighbor(p)
		if !found {
			return true
		}
		if m.neighborRadius > 0 && nn.P.Sub(p).Norm() > m.neighborRadius {
			return true
		}
		queryErr = neighbors.Set(nn.P, nn.D)
		return queryErr == nil
	})
	if queryErr != nil {
		return nil, queryErr
	}
	return neighbors, nil
}

// Snapshot copies the current map out as a plain point cloud.
func (m *OctreeMapper) Snapshot() pointcloud.PointCloud {
	return pointcloud.CloneWithPrealloc(m.tree)
}

// PublishMap snapshots the current map and hands it to the configured sink.
func (m *OctreeMapper) PublishMap() error {
	if m.sink == nil {
		m.logger.Debug("no map sink configured; skipping publication")
		return nil
	}
	m.sink(pointcloud.CloneWithPrealloc(m.tree))
	return nil
}
