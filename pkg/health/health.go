// Package health runs diagnostic checks once and reports every outcome.
//
// Each registered check runs in its own goroutine under its own timeout, so a
// hanging dependency delays the report by at most that timeout. A panicking
// check is reported as failed instead of taking the process down.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// CheckFunc is a health check function. It should return nil if the checked
// component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// Result is the outcome of one check.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Err == nil
}

type checkConfig struct {
	name    string
	timeout time.Duration
	check   CheckFunc
}

// run executes the check once under its timeout.
func (c checkConfig) run(ctx context.Context) (res Result) {
	res.Name = c.name
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Err = errors.Errorf("check panicked: %v", p)
		}
		res.Duration = time.Since(start)
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res.Err = c.check(ctx)
	return res
}

// Checker holds a set of named checks.
type Checker struct {
	mu     sync.Mutex
	checks []checkConfig
}

// New creates an empty Checker.
func New() *Checker {
	return &Checker{}
}

// Add registers a check. A zero timeout leaves the check bounded only by the
// context passed to Run.
func (c *Checker) Add(name string, timeout time.Duration, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, checkConfig{name: name, timeout: timeout, check: check})
}

// Run executes every check concurrently and returns the results in
// registration order.
func (c *Checker) Run(ctx context.Context) []Result {
	c.mu.Lock()
	checks := make([]checkConfig, len(c.checks))
	copy(checks, c.checks)
	c.mu.Unlock()

	results := make([]Result, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check.run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Healthy reports whether every result passed.
func Healthy(results []Result) bool {
	for _, r := range results {
		if !r.OK() {
			return false
		}
	}
	return true
}
