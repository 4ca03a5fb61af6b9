// Package octree implements an octree representation of pointclouds for easy
// traversal and spatial lookup of stored points.
package octree

import (
	"github.com/golang/geo/r3"

	pc "go.viam.com/lidarfrontend/pointcloud"
)

// Each node in the octree is either an internal node which links to other
// nodes, is an empty node with no points or further links, or is an occupied
// node which contains a single point of data.
const (
	internalNode = nodeType(iota)
	leafNodeEmpty
	leafNodeFilled
)

// nodeType represents the possible types of nodes in an octree.
type nodeType uint8

// Octree is a data structure that recursively partitions 3D space into
// octants to represent occupancy. It is a storage format for a pointcloud
// that allows for better searchability, and adds nearest-neighbor lookup on
// top of the plain cloud interface.
type Octree interface {
	pc.PointCloud

	// NearestNeighbor returns the stored point closest to the given point,
	// or false if the tree is empty.
	NearestNeighbor(p r3.Vector) (pc.PointAndData, bool)

	// Center returns the center of the tree's bounding cube.
	Center() r3.Vector

	// SideLength returns the side length of the tree's bounding cube.
	SideLength() float64
}
