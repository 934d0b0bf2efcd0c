package errack

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/remiges-tech/logharbour/logharbour"
)

const (
	defaultRetryInterval = time.Minute
	defaultMaxRetries    = 3
)

// Executor is one invocation of a recurring unit of work. AutoAckCommand implements it.
type Executor interface {
	Execute(ctx context.Context, params map[string]string) (Result, error)
}

// RunnerJob is a named executor with the parameters it is invoked with.
type RunnerJob struct {
	Name    string
	Command Executor
	Params  map[string]string
}

// RunnerConfig controls how failed runs are retried.
type RunnerConfig struct {
	RetryInterval time.Duration // wait after a failed run
	MaxRetries    int           // consecutive failures before a single-run job is given up
}

type runnerEntry struct {
	job RunnerJob
	mu  sync.Mutex // one invocation of a job at a time
}

// Runner is the scheduler for auto-ack jobs. Each job runs in its own goroutine and
// is invoked again at the time its last result asks for. Distinct jobs run
// concurrently; a single job never overlaps itself, including runs triggered with
// RunOnce.
type Runner struct {
	mu      sync.RWMutex
	entries map[string]*runnerEntry
	status  *StatusStore
	logger  *logharbour.Logger
	config  RunnerConfig
}

// NewRunner creates a runner. status may be nil.
func NewRunner(status *StatusStore, logger *logharbour.Logger, config *RunnerConfig) *Runner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if config == nil {
		config = &RunnerConfig{}
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaultRetryInterval
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if status == nil {
		status = NewStatusStore(nil)
	}
	return &Runner{
		entries: make(map[string]*runnerEntry),
		status:  status,
		logger:  logger.WithModule("runner"),
		config:  *config,
	}
}

// AddJob registers a job. Names must be unique.
func (r *Runner) AddJob(job RunnerJob) error {
	if job.Name == "" {
		return fmt.Errorf("job name cannot be empty")
	}
	if job.Command == nil {
		return fmt.Errorf("job %s has no command", job.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[job.Name]; exists {
		return fmt.Errorf("%w: job=%s", ErrJobAlreadyRegistered, job.Name)
	}
	r.entries[job.Name] = &runnerEntry{job: job}
	return nil
}

// Jobs returns the registered job names in sorted order.
func (r *Runner) Jobs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) entry(name string) (*runnerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: job=%s", ErrJobNotFound, name)
	}
	return e, nil
}

// RunOnce invokes the named job immediately and records its status. It waits for a
// scheduled invocation of the same job that is already in progress.
func (r *Runner) RunOnce(ctx context.Context, name string) (Result, error) {
	e, err := r.entry(name)
	if err != nil {
		return Result{}, err
	}
	return r.invoke(ctx, e)
}

func (r *Runner) invoke(ctx context.Context, e *runnerEntry) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	at := time.Now()
	res, err := e.job.Command.Execute(ctx, e.job.Params)
	if err != nil {
		if serr := r.status.RecordFailure(ctx, e.job.Name, err, at); serr != nil {
			r.logger.Warn().LogActivity("Failed to record run status", map[string]any{
				"job":   e.job.Name,
				"error": serr.Error(),
			})
		}
		return res, err
	}
	if serr := r.status.RecordSuccess(ctx, e.job.Name, res); serr != nil {
		r.logger.Warn().LogActivity("Failed to record run status", map[string]any{
			"job":   e.job.Name,
			"error": serr.Error(),
		})
	}
	return res, nil
}

// Run schedules every registered job and blocks until all of them are finished or
// ctx is cancelled. Jobs added after Run has started are not scheduled.
func (r *Runner) Run(ctx context.Context) {
	r.mu.RLock()
	entries := make([]*runnerEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(e *runnerEntry) {
			defer wg.Done()
			r.runJob(ctx, e)
		}(e)
	}
	wg.Wait()
}

func (r *Runner) runJob(ctx context.Context, e *runnerEntry) {
	name := e.job.Name
	singleRun := parseSingleRun(e.job.Params)
	failures := 0

	for {
		if ctx.Err() != nil {
			return
		}

		var wait time.Duration
		res, err := r.invoke(ctx, e)
		if err != nil {
			failures++
			var cfgErr *ConfigurationError
			if errors.As(err, &cfgErr) {
				r.logger.Error(err).LogActivity("Job misconfigured, not rescheduling", map[string]any{
					"job": name,
				})
				return
			}
			if singleRun && failures >= r.config.MaxRetries {
				r.logger.Error(err).LogActivity("Single run job failed, giving up", map[string]any{
					"job":      name,
					"failures": failures,
				})
				return
			}
			wait = r.config.RetryInterval
		} else {
			failures = 0
			next, ok := res.NextRun()
			if !ok {
				r.logger.Info().LogActivity("Single run job completed", map[string]any{
					"job":          name,
					"acknowledged": len(res.Acknowledged),
				})
				return
			}
			wait = time.Until(next)
		}

		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
