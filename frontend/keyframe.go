package frontend

import (
	"math"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/lidarfrontend/pointcloud"
	"go.viam.com/lidarfrontend/spatialmath"
)

// State is the processing state of the keyframe engine.
type State int

const (
	// StateAwaitingFirstScan means the next scan bootstraps the map: it is
	// inserted directly with no motion or measurement update. Entered at
	// startup and re-entered whenever scan-to-scan tracking is lost.
	StateAwaitingFirstScan State = iota
	// StateSteady is normal operation: motion update, measurement update,
	// then the keyframe-insertion decision.
	StateSteady
)

func (s State) String() string {
	if s == StateSteady {
		return "steady"
	}
	return "awaiting_first_scan"
}

// SubmapResult summarizes one steady-state scan-to-submap cycle.
type SubmapResult struct {
	// Pose is the integrated estimate after the measurement update.
	Pose spatialmath.Pose
	// Refined is the scan returned by the measurement update.
	Refined pointcloud.PointCloud
	// Diagnostic is the localizer's status for this cycle.
	Diagnostic Diagnostic
	// Publishable is true when the localizer reported LevelOK; otherwise the
	// refined state must be suppressed for this cycle.
	Publishable bool

	KeyframeInserted bool
	MapPublished     bool
	TranslationNorm  float64
	RotationAngle    float64
}

// KeyframeEngine owns the bootstrap/steady state machine and the
// keyframe-insertion decision. All of its state is mutated from the single
// callback execution context that drives the pipeline.
type KeyframeEngine struct {
	logger    golog.Logger
	estimator Estimator
	localizer Localizer
	mapper    Mapper

	translationThreshold float64
	rotationThreshold    float64
	publishMap           bool
	publishEvery         int
	verbose              bool

	state            State
	converged        bool
	lastKeyframePose spatialmath.Pose
	publishCounter   int
}

// NewKeyframeEngine wires the engine to its collaborators. Thresholds come
// straight from configuration; see Config.
func NewKeyframeEngine(
	cfg *Config,
	estimator Estimator,
	localizer Localizer,
	mapper Mapper,
	logger golog.Logger,
) *KeyframeEngine {
	return &KeyframeEngine{
		logger:               logger,
		estimator:            estimator,
		localizer:            localizer,
		mapper:               mapper,
		translationThreshold: cfg.TranslationThreshold,
		rotationThreshold:    cfg.RotationThreshold,
		publishMap:           cfg.MapPublishment.Enabled,
		publishEvery:         cfg.MapPublishment.Meters,
		verbose:              cfg.Verbose,
		state:                StateAwaitingFirstScan,
		lastKeyframePose:     spatialmath.NewZeroPose(),
	}
}

// State returns the engine's current state.
func (e *KeyframeEngine) State() State {
	return e.state
}

// LastKeyframePose returns the pose of the most recently accepted keyframe.
func (e *KeyframeEngine) LastKeyframePose() spatialmath.Pose {
	return e.lastKeyframePose
}

// ScanToScan runs the scan-to-scan stage: the estimator consumes the filtered
// scan and updates its incremental estimate. A false return signals loss of
// convergence; the engine does not change state here — the caller branches on
// the current state first, then LoseTracking records the transition.
func (e *KeyframeEngine) ScanToScan(filtered pointcloud.PointCloud) (Diagnostic, bool) {
	e.estimator.SetFilteredScan(filtered)
	e.converged = e.estimator.UpdateEstimate()
	return e.estimator.Diagnostics(), e.converged
}

// Bootstrap handles a scan in StateAwaitingFirstScan: the raw scan is
// transformed into the fixed frame and inserted into the map directly, with
// no motion or measurement update, and its pose becomes the last keyframe
// pose. The engine moves to StateSteady unless the scan-to-scan update of
// this same scan failed, in which case the next scan bootstraps again.
func (e *KeyframeEngine) Bootstrap(raw pointcloud.PointCloud, stamp time.Time) (spatialmath.Pose, error) {
	transformed := e.localizer.TransformToFixedFrame(raw)
	if err := e.mapper.InsertPoints(transformed); err != nil {
		return spatialmath.NewZeroPose(), errors.Wrap(err, "bootstrap map insertion")
	}
	e.localizer.UpdateTimestamp(stamp)
	e.lastKeyframePose = e.localizer.IntegratedEstimate()
	if e.converged {
		e.state = StateSteady
	} else {
		e.logger.Warn("scan-to-scan update failed during bootstrap; will bootstrap again on the next scan")
		e.state = StateAwaitingFirstScan
	}
	return e.lastKeyframePose, nil
}

// LoseTracking records estimator non-convergence in steady state: the rest of
// the current scan is skipped and the next scan re-enters the bootstrap path.
func (e *KeyframeEngine) LoseTracking() {
	e.logger.Warn("scan-to-scan estimate did not converge; next scan re-initializes against the map")
	e.state = StateAwaitingFirstScan
}

// ScanToSubmap runs the steady-state scan-to-submap stage: motion update from
// the estimator's incremental estimate, measurement update against map
// neighbors, then the keyframe-insertion decision.
func (e *KeyframeEngine) ScanToSubmap(raw, filtered pointcloud.PointCloud) (*SubmapResult, error) {
	e.localizer.MotionUpdate(e.estimator.IncrementalEstimate())
	transformed := e.localizer.TransformToFixedFrame(raw)
	neighbors, err := e.mapper.ApproxNearestNeighbors(transformed)
	if err != nil {
		return nil, errors.Wrap(err, "nearest neighbor query")
	}
	neighbors = e.localizer.TransformToSensorFrame(neighbors)
	refined, err := e.localizer.MeasurementUpdate(filtered, neighbors)
	if err != nil {
		return nil, errors.Wrap(err, "measurement update")
	}

	diag := e.localizer.Diagnostics()
	result := &SubmapResult{
		Pose:        e.localizer.IntegratedEstimate(),
		Refined:     refined,
		Diagnostic:  diag,
		Publishable: diag.Level == LevelOK,
	}

	delta := spatialmath.PoseBetween(e.lastKeyframePose, result.Pose)
	result.TranslationNorm = delta.Point().Norm()
	result.RotationAngle = spatialmath.RotationAngle(delta.Rotation())
	if result.TranslationNorm > e.translationThreshold || result.RotationAngle > e.rotationThreshold {
		if err := e.insertKeyframe(raw, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// insertKeyframe fuses the raw scan into the map at the current estimate. The
// motion for this scan was already consumed, so a zero motion update
// re-synchronizes the localizer before the transform.
func (e *KeyframeEngine) insertKeyframe(raw pointcloud.PointCloud, result *SubmapResult) error {
	if e.verbose {
		e.logger.Infof("adding to map with translation %.3f m and rotation %.1f deg",
			result.TranslationNorm, result.RotationAngle*180/math.Pi)
	}
	e.localizer.MotionUpdate(spatialmath.NewZeroPose())
	fixed := e.localizer.TransformToFixedFrame(raw)
	if err := e.mapper.InsertPoints(fixed); err != nil {
		return errors.Wrap(err, "keyframe map insertion")
	}
	result.KeyframeInserted = true
	if e.publishMap {
		e.publishCounter++
		if e.publishCounter == e.publishEvery {
			if err := e.mapper.PublishMap(); err != nil {
				return errors.Wrap(err, "map publication")
			}
			e.publishCounter = 0
			result.MapPublished = true
		}
	}
	e.lastKeyframePose = result.Pose
	return nil
}
