package plan

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"digital.vasic.pavlov/pkg/assertion"
	"digital.vasic.pavlov/pkg/introspect"
	"digital.vasic.pavlov/pkg/primitive"
)

// Result is the outcome of one step.
type Result struct {
	Step        int           `json:"step" yaml:"step"`
	Check       string        `json:"check" yaml:"check"`
	Target      string        `json:"target,omitempty" yaml:"target,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Expected    string        `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual      string        `json:"actual" yaml:"actual"`
	Passed      bool          `json:"passed" yaml:"passed"`
	Message     string        `json:"message,omitempty" yaml:"message,omitempty"`
	Usage       bool          `json:"usage_error,omitempty" yaml:"usage_error,omitempty"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// Report collects the results of running one plan.
type Report struct {
	Plan     string        `json:"plan" yaml:"plan"`
	Source   string        `json:"source,omitempty" yaml:"source,omitempty"`
	Results  []Result      `json:"results" yaml:"results"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Run evaluates every step of p against values. Failed checks
// and usage errors are recorded in the report, not returned;
// the error is non-nil only when ctx ends before the plan
// finishes, in which case the report holds the steps run so
// far.
func Run(
	ctx context.Context,
	e *assertion.Engine,
	p *Plan,
	values any,
) (*Report, error) {
	start := time.Now()
	report := &Report{
		Plan:    p.Name,
		Source:  p.Source,
		Results: make([]Result, 0, len(p.Steps)),
	}

	for i, s := range p.Steps {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		report.Results = append(report.Results, runStep(e, i, s, values))
	}

	report.Duration = time.Since(start)
	return report, nil
}

func runStep(e *assertion.Engine, i int, s Step, values any) Result {
	start := time.Now()
	actual := Lookup(values, s.Target)
	res := Result{
		Step:        i + 1,
		Check:       s.Check,
		Target:      s.Target,
		Description: s.Description,
		Actual:      introspect.Render(actual, false),
	}

	name, expected, err := s.Resolve()
	if err != nil {
		res.Message = err.Error()
		res.Usage = true
		return res
	}
	if !introspect.IsUndefined(expected) {
		res.Expected = introspect.Render(expected, false)
	}

	_, err = e.That(actual, describeTarget(s)).Run(name, stepArgs(e, name, expected, s.Message)...)
	res.Duration = time.Since(start)
	if err != nil {
		res.Message = err.Error()
		res.Usage = !errors.Is(err, primitive.ErrAssertion)
		return res
	}
	res.Passed = true
	return res
}

// stepArgs shapes the call-time arguments for the named check:
// two-arg checks receive the expected value, one-arg checks
// never do.
func stepArgs(e *assertion.Engine, name string, expected any, message string) []any {
	var args []any
	if check, ok := e.Catalog().Lookup(name); ok && check.Arity == assertion.TwoArg {
		args = append(args, expected)
	}
	if message != "" {
		args = append(args, message)
	}
	return args
}

// describeTarget falls back to the target path when a step has
// no description.
func describeTarget(s Step) string {
	if s.Description != "" {
		return s.Description
	}
	return s.Target
}

// RunAll runs plans concurrently, at most concurrency at a time,
// and returns their reports in input order. A concurrency below
// one runs the plans one after another.
func RunAll(
	ctx context.Context,
	e *assertion.Engine,
	plans []*Plan,
	values any,
	concurrency int,
) ([]*Report, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	reports := make([]*Report, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range plans {
		g.Go(func() error {
			r, err := Run(gctx, e, p, values)
			reports[i] = r
			return err
		})
	}

	err := g.Wait()
	return reports, err
}
