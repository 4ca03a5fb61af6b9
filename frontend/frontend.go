// Package frontend implements the real-time control loop of a lidar SLAM
// frontend: per-scan continuity and density checks, optional external
// odometry fusion, scan-to-scan and scan-to-submap sequencing, and the
// keyframe decision that feeds the persistent map.
package frontend

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/lidarfrontend/pointcloud"
	"go.viam.com/lidarfrontend/spatialmath"
)

// Scan is one discrete point-cloud capture from the range sensor. It is
// consumed once per callback invocation and not retained afterwards.
type Scan struct {
	Sequence uint32
	Time     time.Time
	FrameID  string
	Cloud    pointcloud.PointCloud
}

// OdometryUpdate is one absolute pose observation from an external source.
type OdometryUpdate struct {
	Time time.Time
	Pose spatialmath.Pose
}

// PoseUpdate is the per-scan pose output. Refined is false for bootstrap
// poses published without a measurement update.
type PoseUpdate struct {
	Time    time.Time
	Pose    spatialmath.Pose
	Refined bool
}

// Publishers collects the optional downstream sinks. Any nil sink disables
// that output; none of them may influence processing.
type Publishers struct {
	// Pose receives the integrated estimate once per processed scan, gated
	// on collaborator diagnostics for refined poses.
	Pose func(PoseUpdate)
	// BaseFrameCloud receives the raw scan re-tagged to the robot base
	// frame. Only invoked when attached, mirroring a subscriber check.
	BaseFrameCloud func(*Scan)
	// Timing receives per-stage wall-clock samples when profiling is on.
	Timing func(TimingSample)
	// Diagnostics receives the merged per-scan diagnostics report.
	Diagnostics func(Report)
}

// Collaborators are the external components the pipeline drives. All four
// are required at construction; a missing collaborator is an initialization
// failure, not a runtime condition.
type Collaborators struct {
	Filter    Filter
	Estimator Estimator
	Localizer Localizer
	Mapper    Mapper
}

const tfBufferAuthority = "transform_odometry"

// Frontend is the top-level per-scan entry point. All mutable state is
// touched only from a single execution context: either direct ProcessScan
// calls serialized by the caller, or the background loop started by Start.
type Frontend struct {
	logger golog.Logger
	cfg    Config

	filter    Filter
	estimator Estimator
	localizer Localizer
	mapper    Mapper

	guard    SequenceGuard
	tfBuffer *TransformBuffer
	engine   *KeyframeEngine
	profiler *Profiler
	pubs     Publishers

	useOdometry      bool
	odometryReceived bool
	odometryPrevious spatialmath.Pose
	odometryFailures int

	scanCh                  chan *Scan
	odomCh                  chan OdometryUpdate
	closeCh                 chan struct{}
	closeOnce               sync.Once
	activeBackgroundWorkers sync.WaitGroup
}

// New validates the configuration and wires up a frontend. Collaborator or
// configuration problems are fatal here; the pipeline assumes everything is
// valid before the first scan arrives.
func New(cfg Config, deps Collaborators, pubs Publishers, logger golog.Logger) (*Frontend, error) {
	if err := cfg.Validate("frontend"); err != nil {
		return nil, err
	}
	if deps.Filter == nil || deps.Estimator == nil || deps.Localizer == nil || deps.Mapper == nil {
		return nil, errors.New("all of filter, estimator, localizer and mapper are required")
	}

	f := &Frontend{
		logger:      logger,
		cfg:         cfg,
		filter:      deps.Filter,
		estimator:   deps.Estimator,
		localizer:   deps.Localizer,
		mapper:      deps.Mapper,
		engine:      NewKeyframeEngine(&cfg, deps.Estimator, deps.Localizer, deps.Mapper, logger),
		profiler:    NewProfiler(cfg.EnableTimingProfiling, pubs.Timing),
		pubs:        pubs,
		useOdometry: cfg.DataIntegration.Mode == IntegrationOdometry,
		scanCh:      make(chan *Scan, cfg.Queues.LidarQueueSize),
		odomCh:      make(chan OdometryUpdate, cfg.Queues.OdomQueueSize),
		closeCh:     make(chan struct{}),
	}
	if f.useOdometry {
		f.tfBuffer = NewTransformBuffer(cfg.OdometryBufferSizeLimit, cfg.OdometryWaitTimeout)
	} else {
		logger.Warn("running pure lidar odometry; no data integration requested")
	}
	return f, nil
}

// Engine exposes the keyframe engine, chiefly for inspection.
func (f *Frontend) Engine() *KeyframeEngine {
	return f.engine
}

// HandleOdometry inserts an external pose observation into the transform
// buffer. It is a no-op unless odometry integration is configured.
func (f *Frontend) HandleOdometry(update OdometryUpdate) {
	if !f.useOdometry {
		return
	}
	f.tfBuffer.Insert(update.Time, update.Pose, tfBufferAuthority)
}

// ProcessScan runs the whole per-scan pipeline synchronously. Scans must be
// delivered serially; the error reports why the current scan was skipped and
// never indicates an unrecoverable pipeline condition.
func (f *Frontend) ProcessScan(ctx context.Context, scan *Scan) error {
	agg := &aggregator{}
	err := f.profiler.Time(StageCallback, func() error {
		return f.processScan(ctx, scan, agg)
	})

	if f.cfg.PublishDiagnostics && f.pubs.Diagnostics != nil {
		f.pubs.Diagnostics(agg.report(scan.Time, scan.FrameID))
	}
	return err
}

func (f *Frontend) processScan(ctx context.Context, scan *Scan, agg *aggregator) error {
	if f.guard.Check(scan.Sequence) == ContinuityGap {
		f.logger.Warnw("lidar scan dropped", "sequence", scan.Sequence)
		agg.add(Diagnostic{Name: "sequence", Level: LevelWarn, Message: "lidar scan dropped"})
	}

	density := ClassifyDensity(scan.Cloud.Size(), f.cfg.OpenSpacePointThreshold)

	if f.useOdometry {
		done, err := f.integrateOdometry(ctx, scan.Time)
		if err != nil || done {
			return err
		}
	}

	filtered, err := f.filter.Filter(scan.Cloud, density == DensityOpenSpace)
	if err != nil {
		return errors.Wrap(err, "filtering scan")
	}

	var estimatorDiag Diagnostic
	var converged bool
	goutils.UncheckedError(f.profiler.Time(StageScanToScan, func() error {
		estimatorDiag, converged = f.engine.ScanToScan(filtered)
		return nil
	}))
	agg.add(estimatorDiag)

	if f.engine.State() == StateAwaitingFirstScan {
		pose, err := f.engine.Bootstrap(scan.Cloud, scan.Time)
		if err != nil {
			return err
		}
		f.publishPose(PoseUpdate{Time: scan.Time, Pose: pose, Refined: false})
		return nil
	}

	if !converged {
		f.engine.LoseTracking()
		return nil
	}

	var result *SubmapResult
	if err := f.profiler.Time(StageScanToSubmap, func() error {
		var serr error
		result, serr = f.engine.ScanToSubmap(scan.Cloud, filtered)
		return serr
	}); err != nil {
		return err
	}
	agg.add(result.Diagnostic)

	if result.Publishable {
		f.publishPose(PoseUpdate{Time: scan.Time, Pose: result.Pose, Refined: true})
	}
	if f.pubs.BaseFrameCloud != nil {
		reframed := *scan
		reframed.FrameID = f.cfg.BaseFrameID
		f.pubs.BaseFrameCloud(&reframed)
	}
	return nil
}

// integrateOdometry looks up the buffered external pose at the scan stamp
// and forwards the inverse-composed delta to the estimator. The first
// successful lookup only records the baseline pose; the scan is consumed
// without further processing (done=true). A lookup failure skips the current
// scan and, after enough consecutive failures, disables integration.
func (f *Frontend) integrateOdometry(ctx context.Context, stamp time.Time) (done bool, err error) {
	pose, err := f.tfBuffer.LookupAt(ctx, stamp)
	if err != nil {
		if !IsExtrapolationError(err) {
			return false, err
		}
		f.odometryFailures++
		maxCalls := f.cfg.DataIntegration.MaxNumberOfCalls
		if maxCalls > 0 && f.odometryFailures >= maxCalls {
			f.useOdometry = false
			f.logger.Warnw("odometry integration disabled after consecutive lookup failures",
				"failures", f.odometryFailures)
		}
		return false, errors.Wrap(err, "odometry lookup")
	}
	f.odometryFailures = 0

	if !f.odometryReceived {
		f.logger.Info("receiving odometry for the first time")
		f.odometryPrevious = pose
		f.odometryReceived = true
		return true, nil
	}
	f.estimator.SetExternalDelta(spatialmath.PoseBetween(f.odometryPrevious, pose))
	f.odometryPrevious = pose
	return false, nil
}

func (f *Frontend) publishPose(update PoseUpdate) {
	if f.pubs.Pose != nil {
		f.pubs.Pose(update)
	}
}

// SubmitScan queues a scan for the background loop. It never blocks; false
// means the lidar queue was full and the scan was dropped, which the
// sequence guard will surface as a gap on the next accepted scan.
func (f *Frontend) SubmitScan(scan *Scan) bool {
	select {
	case f.scanCh <- scan:
		return true
	default:
		return false
	}
}

// SubmitOdometry queues an external pose observation for the background
// loop. It never blocks; false means the odometry queue was full.
func (f *Frontend) SubmitOdometry(update OdometryUpdate) bool {
	select {
	case f.odomCh <- update:
		return true
	default:
		return false
	}
}

// Start launches the background intake loop. A single worker drains both
// queues, so all pipeline state keeps its single-writer guarantee. Odometry
// is drained before each scan so the buffer is as fresh as possible.
func (f *Frontend) Start(ctx context.Context) {
	f.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer f.activeBackgroundWorkers.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-f.closeCh:
				return
			case update := <-f.odomCh:
				f.HandleOdometry(update)
			case scan := <-f.scanCh:
				f.drainOdometry()
				if err := f.ProcessScan(ctx, scan); err != nil {
					f.logger.Debugw("scan skipped", "sequence", scan.Sequence, "error", err)
				}
			}
		}
	})
}

func (f *Frontend) drainOdometry() {
	for {
		select {
		case update := <-f.odomCh:
			f.HandleOdometry(update)
		default:
			return
		}
	}
}

// Close stops the background loop, if any, and waits for it to exit.
func (f *Frontend) Close() error {
	f.closeOnce.Do(func() {
		close(f.closeCh)
	})
	f.activeBackgroundWorkers.Wait()
	return nil
}
