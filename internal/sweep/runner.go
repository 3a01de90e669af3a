// Package sweep drives the flow models over grids of supply temperature,
// orifice diameter and orifice count. Samples are independent and are
// evaluated in parallel; results are always stored by input position.
package sweep

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
)

// Policy decides what happens when a sample fails.
type Policy int

const (
	// FailFast aborts with the failure of the lowest failing index.
	FailFast Policy = iota
	// SkipFailed records domain and lookup failures and keeps going.
	SkipFailed
)

func (p Policy) String() string {
	if p == SkipFailed {
		return "skip-failed"
	}
	return "fail-fast"
}

// Failure records a skipped sample.
type Failure struct {
	Index int
	Param float64
	Kind  string
	Err   error
}

// SampleError is returned under FailFast, or under SkipFailed for errors
// that cannot be skipped.
type SampleError struct {
	Index int
	Param float64
	Err   error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sweep: sample %d (%g): %v", e.Index, e.Param, e.Err)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}

// Kind classifies a sample error for reporting.
func Kind(err error) string {
	var le *fluid.LookupError
	switch {
	case errors.Is(err, fluid.ErrSupercritical):
		return "supercritical"
	case errors.Is(err, fluid.ErrOutOfRange):
		return "out-of-range"
	case errors.Is(err, flow.ErrDomain):
		return "domain"
	case errors.As(err, &le):
		return "lookup"
	}
	return "error"
}

func skippable(err error) bool {
	var le *fluid.LookupError
	return errors.Is(err, flow.ErrDomain) || errors.As(err, &le)
}

type Runner struct {
	Source    fluid.Source
	Substance string
	Workers   int
	Policy    Policy
	Log       logrus.FieldLogger
}

func NewRunner(src fluid.Source, substance string) *Runner {
	return &Runner{
		Source:    src,
		Substance: substance,
		Workers:   runtime.NumCPU(),
		Policy:    FailFast,
		Log:       logrus.StandardLogger(),
	}
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// Resolve applies the runner policy to per-sample errors. params labels each
// sample in failures and log lines.
func (r *Runner) Resolve(params []float64, errs []error) ([]Failure, error) {
	var failures []Failure
	for i, err := range errs {
		if err == nil {
			continue
		}
		if r.Policy == FailFast || !skippable(err) {
			return failures, &SampleError{Index: i, Param: params[i], Err: err}
		}
		f := Failure{Index: i, Param: params[i], Kind: Kind(err), Err: err}
		r.logger().WithFields(logrus.Fields{
			"index": f.Index,
			"param": f.Param,
			"kind":  f.Kind,
		}).Warnf("skipping sample: %v", err)
		failures = append(failures, f)
	}
	return failures, nil
}

func (r *Runner) condition(t, chamberP float64, geom flow.Geometry) (flow.Condition, error) {
	return flow.NewCondition(r.Source, r.Substance, t, chamberP, geom)
}
