// Package jobmgr runs named background jobs with cancellation, lifecycle
// callbacks and in-memory tracking.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, jobmgr.LogReporter(log.Logger))
//
//	err := jm.Start("cooldowns", func(ctx context.Context) error {
//	    // do work until ctx is cancelled
//	    return nil
//	})
//
//	// later...
//	jm.StopAll()
//	jm.Wait()
//
// No retries, no persistence. Jobs are removed when they return.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var ErrAlreadyRunning = errors.New("job is already running")
var ErrNotRunning = errors.New("job is not running")

// Event is a job lifecycle transition.
type Event struct {
	Job   string
	State string // running, done or error
	Err   error
}

// StatusReporter receives lifecycle events for jobs.
type StatusReporter func(Event)

// LogReporter reports job events to l.
func LogReporter(l zerolog.Logger) StatusReporter {
	return func(e Event) {
		switch e.State {
		case StateError:
			l.Error().Err(e.Err).Str("job", e.Job).Msg("Job failed")
		case StateDone:
			l.Info().Str("job", e.Job).Msg("Job finished")
		default:
			l.Debug().Str("job", e.Job).Msg("Job started")
		}
	}
}

const (
	StateRunning = "running"
	StateDone    = "done"
	StateError   = "error"
)

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager starts, stops and tracks jobs. It is safe for concurrent use.
type Manager struct {
	ctx      context.Context
	reporter StatusReporter

	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup

	errOnce sync.Once
	errCh   chan error
}

// NewManager creates a Manager whose jobs derive from ctx. The reporter may
// be nil.
func NewManager(ctx context.Context, reporter StatusReporter) *Manager {
	return &Manager{
		ctx:      ctx,
		reporter: reporter,
		jobs:     make(map[string]*job),
		errCh:    make(chan error, 1),
	}
}

// Start runs runner in its own goroutine and returns immediately. The first
// job to fail is reported on Errors.
func (m *Manager) Start(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}
	ctx, cancel := context.WithCancel(m.ctx)
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer close(j.done)
		defer cancel()

		m.report(Event{Job: name, State: StateRunning})

		if err := runner(ctx); err != nil {
			m.report(Event{Job: name, State: StateError, Err: err})
			m.errOnce.Do(func() { m.errCh <- fmt.Errorf("job %s: %w", name, err) })
		} else {
			m.report(Event{Job: name, State: StateDone})
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Errors delivers the first job failure.
func (m *Manager) Errors() <-chan error {
	return m.errCh
}

// Stop cancels a running job and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}
	j.cancel()
	<-j.done
	return nil
}

// StopAll cancels every running job without waiting.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		j.cancel()
	}
}

// Wait blocks until every started job has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Status returns a human-readable summary of active jobs, e.g.
// "Running jobs: bot, cooldowns".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(e Event) {
	if m.reporter != nil {
		m.reporter(e)
	}
}
