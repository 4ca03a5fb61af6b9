// Command replay feeds a directory of recorded scans through the lidar
// frontend offline, using the in-process fake collaborators and the octree
// mapper, and reports what the pipeline did with them.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/lidarfrontend/fake"
	"go.viam.com/lidarfrontend/frontend"
	"go.viam.com/lidarfrontend/mapper"
	"go.viam.com/lidarfrontend/pointcloud"
)

var logger = golog.NewDevelopmentLogger("replay")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

const scanPeriod = 100 * time.Millisecond

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	configPath := flags.String("config", "", "frontend config JSON file")
	scanDir := flags.String("scans", "", "directory of .pcd/.las scans, replayed in lexical order")
	groundTruth := flags.String("gt", "", "optional ground-truth point cloud preloaded into the map")
	mapOut := flags.String("map", "", "optional path the final map snapshot is written to as PCD")
	mapSide := flags.Float64("map-side", 200, "initial map cube side length")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if *scanDir == "" {
		return errors.New("a scan directory is required")
	}

	cfg := frontend.DefaultConfig()
	cfg.FixedFrameID = "map"
	cfg.BaseFrameID = "base_link"
	cfg.PublishDiagnostics = true
	if *configPath != "" {
		loaded, err := frontend.ReadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	var published []pointcloud.PointCloud
	octMapper, err := mapper.New(ctx, r3.Vector{}, *mapSide, logger,
		mapper.WithPublishSink(func(snapshot pointcloud.PointCloud) {
			published = append(published, snapshot)
		}))
	if err != nil {
		return err
	}

	if *groundTruth != "" {
		gt, err := pointcloud.NewFromFile(*groundTruth, logger)
		if err != nil {
			return errors.Wrap(err, "reading ground truth cloud")
		}
		if err := octMapper.InsertPoints(gt); err != nil {
			return err
		}
		logger.Infow("preloaded ground truth map", "points", gt.Size())
	}

	var keyframes, mapPublications, gaps int
	f, err := frontend.New(cfg,
		frontend.Collaborators{
			Filter:    fake.NewFilter(2, 4),
			Estimator: fake.NewEstimator(logger),
			Localizer: fake.NewLocalizer(logger),
			Mapper:    octMapper,
		},
		frontend.Publishers{
			Pose: func(update frontend.PoseUpdate) {
				logger.Debugw("pose",
					"time", update.Time,
					"translation", update.Pose.Point(),
					"refined", update.Refined)
			},
			Diagnostics: func(report frontend.Report) {
				if report.Level() != frontend.LevelOK {
					gaps++
				}
			},
		},
		logger)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	files, err := scanFiles(*scanDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no .pcd or .las scans found in %q", *scanDir)
	}

	start := time.Now()
	for i, fn := range files {
		cloud, err := pointcloud.NewFromFile(fn, logger)
		if err != nil {
			return errors.Wrapf(err, "reading scan %q", fn)
		}
		before := octMapper.Size()
		scan := &frontend.Scan{
			Sequence: uint32(i),
			Time:     start.Add(time.Duration(i) * scanPeriod),
			FrameID:  cfg.BaseFrameID,
			Cloud:    cloud,
		}
		if err := f.ProcessScan(ctx, scan); err != nil {
			logger.Warnw("scan skipped", "file", fn, "error", err)
			continue
		}
		if octMapper.Size() > before && i > 0 {
			keyframes++
		}
	}
	mapPublications = len(published)

	logger.Infow("replay complete",
		"scans", len(files),
		"keyframes", keyframes,
		"map_publications", mapPublications,
		"degraded_cycles", gaps,
		"map_points", octMapper.Size())

	if *mapOut != "" {
		out, err := os.Create(*mapOut)
		if err != nil {
			return err
		}
		defer goutils.UncheckedErrorFunc(out.Close)
		snapshot := octMapper.Snapshot()
		if err := pointcloud.ToPCD(snapshot, out, pointcloud.PCDBinary); err != nil {
			return err
		}
		logger.Infow("map written", "path", *mapOut, "points", snapshot.Size())
	}
	return nil
}

func scanFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".pcd", ".las":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
