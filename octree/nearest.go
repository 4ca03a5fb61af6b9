package octree

import (
	"math"

	"github.com/golang/geo/r3"

	pc "go.viam.com/lidarfrontend/pointcloud"
)

// NearestNeighbor returns the stored point closest to p. The search descends
// octants ordered by their distance to p and prunes any octant whose bounding
// cube cannot contain a closer point than the best found so far.
func (octree *basicOctree) NearestNeighbor(p r3.Vector) (pc.PointAndData, bool) {
	best := pc.PointAndData{}
	bestDist := math.MaxFloat64
	found := octree.nearest(p, &best, &bestDist)
	return best, found
}

func (octree *basicOctree) nearest(p r3.Vector, best *pc.PointAndData, bestDist *float64) bool {
	if octree.minDistToCube(p) >= *bestDist {
		return false
	}

	switch octree.node.nodeType {
	case leafNodeEmpty:
		return false

	case leafNodeFilled:
		d := octree.node.point.P.Sub(p).Norm()
		if d < *bestDist {
			*bestDist = d
			*best = octree.node.point
			return true
		}
		return false

	case internalNode:
		// Visit closer octants first so pruning kicks in early.
		children := make([]*basicOctree, len(octree.node.children))
		copy(children, octree.node.children)
		for i := 1; i < len(children); i++ {
			for j := i; j > 0 && children[j].minDistToCube(p) < children[j-1].minDistToCube(p); j-- {
				children[j], children[j-1] = children[j-1], children[j]
			}
		}
		found := false
		for _, child := range children {
			if child.nearest(p, best, bestDist) {
				found = true
			}
		}
		return found
	}
	return false
}

// minDistToCube returns the distance from p to the nearest face of this
// octree's bounding cube, or zero if p lies inside it.
func (octree *basicOctree) minDistToCube(p r3.Vector) float64 {
	half := octree.sideLength / 2
	dx := axialDist(p.X, octree.center.X, half)
	dy := axialDist(p.Y, octree.center.Y, half)
	dz := axialDist(p.Z, octree.center.Z, half)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func axialDist(v, center, half float64) float64 {
	d := math.Abs(v-center) - half
	if d < 0 {
		return 0
	}
	return d
}
