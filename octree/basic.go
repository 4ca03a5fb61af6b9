package octree

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	pc "go.viam.com/lidarfrontend/pointcloud"
)

// basicOctree is a data structure that represents a basic octree structure
// with information regarding center point, side length and node data.
type basicOctree struct {
	logger     golog.Logger
	node       basicOctreeNode
	center     r3.Vector
	sideLength float64
	size       int
	meta       pc.MetaData
}

// basicOctreeNode is a struct comprised of the type of node, children nodes
// (should they exist) and the pointcloud's PointAndData datatype representing
// a point in space.
type basicOctreeNode struct {
	nodeType nodeType
	children []*basicOctree
	point    pc.PointAndData
}

// New creates a new basic octree with specified center, side and metadata.
func New(ctx context.Context, center r3.Vector, sideLength float64, logger golog.Logger) (Octree, error) {
	if sideLength <= 0 {
		return nil, errors.Errorf("invalid side length (%.2f) for octree", sideLength)
	}

	octree := &basicOctree{
		logger:     logger,
		node:       newLeafNodeEmpty(),
		center:     center,
		sideLength: sideLength,
		size:       0,
		meta:       pc.NewMetaData(),
	}

	return octree, nil
}

// Size returns the number of points stored in the octree's metadata.
func (octree *basicOctree) Size() int {
	return octree.size
}

// MetaData returns the metadata of the pointcloud stored in the octree.
func (octree *basicOctree) MetaData() pc.MetaData {
	return octree.meta
}

// Center returns the center of this octree's bounding cube.
func (octree *basicOctree) Center() r3.Vector {
	return octree.center
}

// SideLength returns the side length of this octree's bounding cube.
func (octree *basicOctree) SideLength() float64 {
	return octree.sideLength
}

// Set checks if the point to be added is a valid point for a basic octree to
// contain based on its center and side length. It then recursively iterates
// through the tree until it finds the appropriate node to add it to. If the
// found node contains a point already, it will split the node into octants
// and will add both the old point and new one to the newly created children.
func (octree *basicOctree) Set(p r3.Vector, d pc.Data) error {
	if !octree.checkPointPlacement(p) {
		return errors.New("error point is outside the bounds of this octree")
	}

	switch octree.node.nodeType {
	case internalNode:
		for _, childNode := range octree.node.children {
			if childNode.checkPointPlacement(p) {
				sizeBefore := childNode.size
				err := childNode.Set(p, d)
				if err == nil && childNode.size > sizeBefore {
					octree.meta.Merge(p, d)
					octree.size++
				}
				return err
			}
		}
		return errors.New("error invalid internal node detected, please check your tree")

	case leafNodeFilled:
		if octree.node.point.P.ApproxEqual(p) {
			octree.node.point.D = d
			return nil
		}
		if err := octree.splitIntoOctants(); err != nil {
			return errors.Wrap(err, "error in splitting octree into new octants")
		}
		// No metadata update as the set call below will lead to the
		// internalNode case due to the octant split.
		return octree.Set(p, d)

	case leafNodeEmpty:
		octree.meta.Merge(p, d)
		octree.size++
		octree.node = newLeafNodeFilled(p, d)
	}

	return nil
}

// At traverses a basic octree to see if a point exists at the specified
// location. If a point does exist, its data is returned along with true,
// otherwise the boolean is returned false.
func (octree *basicOctree) At(x, y, z float64) (pc.Data, bool) {
	if !octree.checkPointPlacement(r3.Vector{X: x, Y: y, Z: z}) {
		return nil, false
	}

	switch octree.node.nodeType {
	case internalNode:
		for _, child := range octree.node.children {
			d, exists := child.At(x, y, z)
			if exists {
				return d, true
			}
		}

	case leafNodeFilled:
		if octree.node.point.P.ApproxEqual(r3.Vector{X: x, Y: y, Z: z}) {
			return octree.node.point.D, true
		}

	case leafNodeEmpty:
	}

	return nil, false
}

// Iterate visits every stored point in octant order.
func (octree *basicOctree) Iterate(fn func(p r3.Vector, d pc.Data) bool) {
	octree.iterate(fn)
}

func (octree *basicOctree) iterate(fn func(p r3.Vector, d pc.Data) bool) bool {
	switch octree.node.nodeType {
	case internalNode:
		for _, child := range octree.node.children {
			if !child.iterate(fn) {
				return false
			}
		}
	case leafNodeFilled:
		return fn(octree.node.point.P, octree.node.point.D)
	case leafNodeEmpty:
	}
	return true
}

// splitIntoOctants will convert a filled leaf node into an internal node with
// eight children and redistribute its point among them.
func (octree *basicOctree) splitIntoOctants() error {
	switch octree.node.nodeType {
	case internalNode:
		return errors.New("error attempted to split internal node")
	case leafNodeEmpty:
		return errors.New("error attempted to split empty leaf node")
	case leafNodeFilled:
		children := make([]*basicOctree, 0, 8)
		newSideLength := octree.sideLength / 2
		for _, dx := range []float64{-1, 1} {
			for _, dy := range []float64{-1, 1} {
				for _, dz := range []float64{-1, 1} {
					centerOffset := r3.Vector{
						X: dx * newSideLength / 2,
						Y: dy * newSideLength / 2,
						Z: dz * newSideLength / 2,
					}
					children = append(children, &basicOctree{
						logger:     octree.logger,
						node:       newLeafNodeEmpty(),
						center:     octree.center.Add(centerOffset),
						sideLength: newSideLength,
						meta:       pc.NewMetaData(),
					})
				}
			}
		}

		point := octree.node.point
		octree.node = newInternalNode(children)
		// Re-insert the displaced point into the newly created octants. Size
		// and metadata were already accounted for when it first arrived.
		for _, childNode := range octree.node.children {
			if childNode.checkPointPlacement(point.P) {
				return childNode.Set(point.P, point.D)
			}
		}
		return errors.New("error point could not be assigned to any octant after split")
	}
	return nil
}

// checkPointPlacement checks if a point is within the bounds of this octree.
func (octree *basicOctree) checkPointPlacement(p r3.Vector) bool {
	half := octree.sideLength / 2
	return (p.X >= octree.center.X-half) && (p.X <= octree.center.X+half) &&
		(p.Y >= octree.center.Y-half) && (p.Y <= octree.center.Y+half) &&
		(p.Z >= octree.center.Z-half) && (p.Z <= octree.center.Z+half)
}

func newLeafNodeEmpty() basicOctreeNode {
	return basicOctreeNode{nodeType: leafNodeEmpty}
}

func newLeafNodeFilled(p r3.Vector, d pc.Data) basicOctreeNode {
	return basicOctreeNode{nodeType: leafNodeFilled, point: pc.PointAndData{P: p, D: d}}
}

func newInternalNode(children []*basicOctree) basicOctreeNode {
	return basicOctreeNode{nodeType: internalNode, children: children}
}
