package frontend

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/lidarfrontend/spatialmath"
)

var tfTestBase = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

func TestLookupEmptyBuffer(t *testing.T) {
	b := NewTransformBuffer(10, 0)
	_, err := b.LookupAt(context.Background(), tfTestBase)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, IsExtrapolationError(err), test.ShouldBeTrue)
	var extrapolation *ExtrapolationError
	test.That(t, errors.As(err, &extrapolation), test.ShouldBeTrue)
	test.That(t, extrapolation.Empty, test.ShouldBeTrue)
}

func TestLookupExactStamp(t *testing.T) {
	b := NewTransformBuffer(10, 0)
	pose := spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	b.Insert(tfTestBase, pose, tfBufferAuthority)

	got, err := b.LookupAt(context.Background(), tfTestBase)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(got, pose), test.ShouldBeTrue)
}

func TestLookupInterpolates(t *testing.T) {
	b := NewTransformBuffer(10, 0)
	b.Insert(tfTestBase, spatialmath.NewZeroPose(), tfBufferAuthority)
	b.Insert(
		tfTestBase.Add(time.Second),
		spatialmath.NewPoseFromAxisAngle(r3.Vector{X: 2}, r3.Vector{Z: 1}, math.Pi/2),
		tfBufferAuthority,
	)

	got, err := b.LookupAt(context.Background(), tfTestBase.Add(500*time.Millisecond))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Point().X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, spatialmath.RotationAngle(got.Rotation()), test.ShouldAlmostEqual, math.Pi/4, 1e-9)
}

func TestLookupBeforeEarliestFailsImmediately(t *testing.T) {
	// a generous wait timeout must not delay a lookup in the past
	b := NewTransformBuffer(10, time.Minute)
	b.Insert(tfTestBase, spatialmath.NewZeroPose(), tfBufferAuthority)

	start := time.Now()
	_, err := b.LookupAt(context.Background(), tfTestBase.Add(-time.Second))
	test.That(t, time.Since(start), test.ShouldBeLessThan, time.Second)
	test.That(t, IsExtrapolationError(err), test.ShouldBeTrue)

	var extrapolation *ExtrapolationError
	test.That(t, errors.As(err, &extrapolation), test.ShouldBeTrue)
	test.That(t, extrapolation.Earliest, test.ShouldResemble, tfTestBase)
}

func TestLookupAheadWaitsForInsert(t *testing.T) {
	b := NewTransformBuffer(10, 5*time.Second)
	b.Insert(tfTestBase, spatialmath.NewZeroPose(), tfBufferAuthority)

	target := spatialmath.NewPoseFromPoint(r3.Vector{X: 4})
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Insert(tfTestBase.Add(2*time.Second), target, tfBufferAuthority)
	}()

	got, err := b.LookupAt(context.Background(), tfTestBase.Add(time.Second))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Point().X, test.ShouldAlmostEqual, 2, 1e-9)
}

func TestLookupAheadTimesOut(t *testing.T) {
	b := NewTransformBuffer(10, 20*time.Millisecond)
	b.Insert(tfTestBase, spatialmath.NewZeroPose(), tfBufferAuthority)

	_, err := b.LookupAt(context.Background(), tfTestBase.Add(time.Second))
	test.That(t, IsExtrapolationError(err), test.ShouldBeTrue)
}

func TestLookupContextCancel(t *testing.T) {
	b := NewTransformBuffer(10, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := b.LookupAt(ctx, tfTestBase)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestInsertEvictsOldest(t *testing.T) {
	b := NewTransformBuffer(3, 0)
	for i := 0; i < 5; i++ {
		b.Insert(tfTestBase.Add(time.Duration(i)*time.Second), spatialmath.NewZeroPose(), tfBufferAuthority)
	}
	test.That(t, b.Len(), test.ShouldEqual, 3)

	// the first two entries were evicted
	_, err := b.LookupAt(context.Background(), tfTestBase.Add(time.Second))
	test.That(t, IsExtrapolationError(err), test.ShouldBeTrue)
	_, err = b.LookupAt(context.Background(), tfTestBase.Add(3*time.Second))
	test.That(t, err, test.ShouldBeNil)
}

func TestInsertOutOfOrder(t *testing.T) {
	b := NewTransformBuffer(10, 0)
	b.Insert(tfTestBase, spatialmath.NewZeroPose(), tfBufferAuthority)
	b.Insert(tfTestBase.Add(2*time.Second), spatialmath.NewPoseFromPoint(r3.Vector{X: 2}), tfBufferAuthority)
	// late arrival lands at its sorted position
	b.Insert(tfTestBase.Add(time.Second), spatialmath.NewPoseFromPoint(r3.Vector{X: 10}), tfBufferAuthority)

	got, err := b.LookupAt(context.Background(), tfTestBase.Add(time.Second))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Point().X, test.ShouldAlmostEqual, 10, 1e-9)
}

func TestIsExtrapolationErrorWrapped(t *testing.T) {
	err := errors.Wrap(&ExtrapolationError{Requested: tfTestBase, Empty: true}, "odometry lookup")
	test.That(t, IsExtrapolationError(err), test.ShouldBeTrue)
	test.That(t, IsExtrapolationError(errors.New("unrelated")), test.ShouldBeFalse)
	test.That(t, IsExtrapolationError(nil), test.ShouldBeFalse)
}
