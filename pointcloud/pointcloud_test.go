package pointcloud

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestBasicPointCloud(t *testing.T) {
	pc := New()
	test.That(t, pc.Size(), test.ShouldEqual, 0)

	test.That(t, pc.Set(NewVector(1, 2, 3), NewValueData(5)), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(-1, -2, -3), nil), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)

	d, got := pc.At(1, 2, 3)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 5)

	_, got = pc.At(9, 9, 9)
	test.That(t, got, test.ShouldBeFalse)

	// setting an existing point replaces its data, not the point
	test.That(t, pc.Set(NewVector(1, 2, 3), NewValueData(7)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)
	d, got = pc.At(1, 2, 3)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 7)
}

func TestBasicPointCloudIterate(t *testing.T) {
	pc := NewWithPrealloc(3)
	test.That(t, pc.Set(NewVector(0, 0, 0), nil), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(1, 0, 0), nil), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(0, 1, 0), nil), test.ShouldBeNil)

	count := 0
	pc.Iterate(func(p r3.Vector, d Data) bool {
		count++
		return true
	})
	test.That(t, count, test.ShouldEqual, 3)

	count = 0
	pc.Iterate(func(p r3.Vector, d Data) bool {
		count++
		return false
	})
	test.That(t, count, test.ShouldEqual, 1)
}

func TestMetaData(t *testing.T) {
	pc := New()
	test.That(t, pc.Set(NewVector(-2, 1, 5), nil), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(4, -3, 7), nil), test.ShouldBeNil)

	meta := pc.MetaData()
	test.That(t, meta.MinX, test.ShouldEqual, -2)
	test.That(t, meta.MaxX, test.ShouldEqual, 4)
	test.That(t, meta.MinY, test.ShouldEqual, -3)
	test.That(t, meta.MaxY, test.ShouldEqual, 1)
	test.That(t, meta.MinZ, test.ShouldEqual, 5)
	test.That(t, meta.MaxZ, test.ShouldEqual, 7)
	test.That(t, meta.Center(pc.Size()), test.ShouldResemble, r3.Vector{X: 1, Y: -1, Z: 6})
	test.That(t, meta.MaxSideLength(), test.ShouldEqual, 6)
	test.That(t, meta.HasValue, test.ShouldBeFalse)

	test.That(t, pc.Set(NewVector(0, 0, 6), NewValueData(1)), test.ShouldBeNil)
	test.That(t, pc.MetaData().HasValue, test.ShouldBeTrue)
}

func TestCloneWithPrealloc(t *testing.T) {
	pc := New()
	test.That(t, pc.Set(NewVector(1, 1, 1), NewValueData(2)), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(2, 2, 2), nil), test.ShouldBeNil)

	clone := CloneWithPrealloc(pc)
	test.That(t, clone.Size(), test.ShouldEqual, 2)
	d, got := clone.At(1, 1, 1)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 2)
}
