package frontend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/lidarfrontend/spatialmath"
)

// ExtrapolationError reports a transform lookup at a timestamp outside the
// buffer's known time span.
type ExtrapolationError struct {
	Requested time.Time
	Earliest  time.Time
	Latest    time.Time
	Empty     bool
}

func (e *ExtrapolationError) Error() string {
	if e.Empty {
		return fmt.Sprintf("cannot look up transform at %v: buffer is empty", e.Requested)
	}
	return fmt.Sprintf("cannot look up transform at %v: buffer spans [%v, %v]",
		e.Requested, e.Earliest, e.Latest)
}

// IsExtrapolationError reports whether the error chain contains an
// ExtrapolationError.
func IsExtrapolationError(err error) bool {
	var target *ExtrapolationError
	return errors.As(err, &target)
}

type transformEntry struct {
	stamp     time.Time
	pose      spatialmath.Pose
	authority string
}

// TransformBuffer is a time-indexed store of externally supplied rigid
// transforms, queried by interpolated lookup at arbitrary timestamps within
// its span. Lookups between two entries interpolate linearly in translation
// and spherically in rotation.
//
// Scan and odometry callbacks are dispatched serially by the hosting runtime,
// but they may occupy separate callback slots; the buffer carries its own
// mutex so a bounded lookup wait can observe inserts from the other slot.
type TransformBuffer struct {
	mu          sync.Mutex
	entries     []transformEntry
	limit       int
	waitTimeout time.Duration
	updated     chan struct{}
}

// NewTransformBuffer returns a buffer retaining at most limit entries,
// evicting the oldest. waitTimeout bounds how long a lookup ahead of the
// newest entry may wait for more data; zero disables waiting.
func NewTransformBuffer(limit int, waitTimeout time.Duration) *TransformBuffer {
	if limit <= 0 {
		limit = 1
	}
	return &TransformBuffer{
		limit:       limit,
		waitTimeout: waitTimeout,
		updated:     make(chan struct{}),
	}
}

// Len returns the number of buffered entries.
func (b *TransformBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Insert adds a transform observation. Entries usually arrive in timestamp
// order; out-of-order arrivals are placed at their sorted position.
func (b *TransformBuffer) Insert(stamp time.Time, pose spatialmath.Pose, authority string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := transformEntry{stamp: stamp, pose: pose, authority: authority}
	n := len(b.entries)
	if n == 0 || !stamp.Before(b.entries[n-1].stamp) {
		b.entries = append(b.entries, entry)
	} else {
		i := sort.Search(n, func(i int) bool { return b.entries[i].stamp.After(stamp) })
		b.entries = append(b.entries, transformEntry{})
		copy(b.entries[i+1:], b.entries[i:])
		b.entries[i] = entry
	}
	if len(b.entries) > b.limit {
		b.entries = b.entries[len(b.entries)-b.limit:]
	}

	close(b.updated)
	b.updated = make(chan struct{})
}

// LookupAt returns the interpolated pose at the given timestamp. A timestamp
// ahead of the newest entry waits up to the configured timeout for more data
// before failing; a timestamp behind the oldest entry fails immediately with
// an ExtrapolationError.
func (b *TransformBuffer) LookupAt(ctx context.Context, stamp time.Time) (spatialmath.Pose, error) {
	deadline := time.Now().Add(b.waitTimeout)
	for {
		pose, updated, err := b.lookup(stamp)
		if err == nil {
			return pose, nil
		}
		var extrapolation *ExtrapolationError
		future := errors.As(err, &extrapolation) &&
			(extrapolation.Empty || stamp.After(extrapolation.Latest))
		if !future || b.waitTimeout == 0 {
			return spatialmath.NewZeroPose(), err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return spatialmath.NewZeroPose(), err
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return spatialmath.NewZeroPose(), ctx.Err()
		case <-timer.C:
			// One final check: data may have arrived as the timer fired.
			if pose, _, err := b.lookup(stamp); err == nil {
				return pose, nil
			}
			return spatialmath.NewZeroPose(), err
		case <-updated:
			timer.Stop()
		}
	}
}

func (b *TransformBuffer) lookup(stamp time.Time) (spatialmath.Pose, <-chan struct{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	updated := b.updated
	if len(b.entries) == 0 {
		return spatialmath.NewZeroPose(), updated, &ExtrapolationError{Requested: stamp, Empty: true}
	}
	earliest := b.entries[0].stamp
	latest := b.entries[len(b.entries)-1].stamp
	if stamp.Before(earliest) || stamp.After(latest) {
		return spatialmath.NewZeroPose(), updated, &ExtrapolationError{
			Requested: stamp,
			Earliest:  earliest,
			Latest:    latest,
		}
	}

	i := sort.Search(len(b.entries), func(i int) bool { return !b.entries[i].stamp.Before(stamp) })
	if b.entries[i].stamp.Equal(stamp) {
		return b.entries[i].pose, updated, nil
	}
	prev, next := b.entries[i-1], b.entries[i]
	span := next.stamp.Sub(prev.stamp)
	amt := float64(stamp.Sub(prev.stamp)) / float64(span)
	return spatialmath.Interpolate(prev.pose, next.pose, amt), updated, nil
}
