package frontend

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// DiagnosticLevel is the severity of a collaborator status report.
type DiagnosticLevel int

// Diagnostic severities, ordered. Anything above LevelOK suppresses
// publication of the refined state for that cycle but never halts processing.
const (
	LevelOK DiagnosticLevel = iota
	LevelWarn
	LevelError
)

func (l DiagnosticLevel) String() string {
	switch l {
	case LevelOK:
		return "OK"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is a severity level plus a free-form message produced by a
// collaborator during one scan cycle.
type Diagnostic struct {
	Name    string
	Level   DiagnosticLevel
	Message string
}

// Report is the merged per-scan diagnostics record published to monitoring.
type Report struct {
	Time     time.Time
	FrameID  string
	Statuses []Diagnostic
}

// Level returns the highest severity among the merged statuses.
func (r *Report) Level() DiagnosticLevel {
	level := LevelOK
	for _, s := range r.Statuses {
		if s.Level > level {
			level = s.Level
		}
	}
	return level
}

// Err returns the error-level statuses merged into a single error, or nil if
// none reached LevelError.
func (r *Report) Err() error {
	var err error
	for _, s := range r.Statuses {
		if s.Level == LevelError {
			err = multierr.Combine(err, errors.Errorf("%s: %s", s.Name, s.Message))
		}
	}
	return err
}

// aggregator collects collaborator statuses over one scan cycle.
type aggregator struct {
	statuses []Diagnostic
}

func (a *aggregator) add(d Diagnostic) {
	a.statuses = append(a.statuses, d)
}

func (a *aggregator) report(t time.Time, frameID string) Report {
	return Report{Time: t, FrameID: frameID, Statuses: a.statuses}
}
