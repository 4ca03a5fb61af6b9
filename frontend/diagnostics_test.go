package frontend

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestReportLevel(t *testing.T) {
	r := Report{}
	test.That(t, r.Level(), test.ShouldEqual, LevelOK)

	r.Statuses = []Diagnostic{
		{Name: "estimator", Level: LevelOK},
		{Name: "localizer", Level: LevelWarn, Message: "low overlap"},
	}
	test.That(t, r.Level(), test.ShouldEqual, LevelWarn)

	r.Statuses = append(r.Statuses, Diagnostic{Name: "mapper", Level: LevelError, Message: "out of bounds"})
	test.That(t, r.Level(), test.ShouldEqual, LevelError)
}

func TestReportErr(t *testing.T) {
	r := Report{Statuses: []Diagnostic{
		{Name: "estimator", Level: LevelWarn, Message: "noisy"},
	}}
	test.That(t, r.Err(), test.ShouldBeNil)

	r.Statuses = append(r.Statuses,
		Diagnostic{Name: "localizer", Level: LevelError, Message: "diverged"},
		Diagnostic{Name: "mapper", Level: LevelError, Message: "out of bounds"},
	)
	err := r.Err()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "localizer: diverged")
	test.That(t, err.Error(), test.ShouldContainSubstring, "mapper: out of bounds")
}

func TestAggregator(t *testing.T) {
	agg := &aggregator{}
	agg.add(Diagnostic{Name: "estimator", Level: LevelOK})
	agg.add(Diagnostic{Name: "localizer", Level: LevelWarn})

	stamp := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	report := agg.report(stamp, "velodyne")
	test.That(t, report.Time, test.ShouldResemble, stamp)
	test.That(t, report.FrameID, test.ShouldEqual, "velodyne")
	test.That(t, len(report.Statuses), test.ShouldEqual, 2)
	test.That(t, report.Level(), test.ShouldEqual, LevelWarn)
}

func TestDiagnosticLevelString(t *testing.T) {
	test.That(t, LevelOK.String(), test.ShouldEqual, "OK")
	test.That(t, LevelWarn.String(), test.ShouldEqual, "WARN")
	test.That(t, LevelError.String(), test.ShouldEqual, "ERROR")
	test.That(t, DiagnosticLevel(9).String(), test.ShouldEqual, "UNKNOWN")
}
