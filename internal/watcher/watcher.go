// internal/watcher/watcher.go
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tamzrod/trainwatch/internal/poller"
	"github.com/tamzrod/trainwatch/internal/status"
)

// Callback receives every notified cycle.
// On success err is nil and s is the new status.
// On failure err is the fetch fault and s is a copy of the last known-good status.
type Callback func(s status.Status, err error)

// CancelFunc stops a watcher. Safe to call more than once.
type CancelFunc func()

// State is the watcher lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Watcher owns the previous-status cell and drives fetch/reduce cycles.
type Watcher struct {
	opts     Options
	callback Callback
	poller   *poller.Poller
	sched    Scheduler
	now      func() time.Time
	logger   *slog.Logger

	// cycle serializes fetch/reduce/replace; ticks that find it held are skipped.
	cycle sync.Mutex

	mu    sync.Mutex
	prev  status.Status
	state State
	stop  func()

	cancelOnce sync.Once
}

// New validates opts and builds an idle watcher.
// No request is issued and no timer is armed until Start.
func New(callback Callback, opts Options) (*Watcher, error) {
	if callback == nil {
		return nil, ErrNilCallback
	}
	if err := validate(opts); err != nil {
		return nil, err
	}

	match, _ := status.ParseMatch(string(opts.Match))
	opts.Match = match

	names := make([]string, len(opts.Endpoints))
	for i, ep := range opts.Endpoints {
		names[i] = ep.Name
	}

	p, err := poller.Build(opts.Endpoints, opts.UserAgent, opts.RepoPattern, opts.Timeout, opts.Client)
	if err != nil {
		return nil, fmt.Errorf("watcher: build poller: %w", err)
	}

	w := &Watcher{
		opts:     opts,
		callback: callback,
		poller:   p,
		sched:    opts.Scheduler,
		now:      opts.Clock,
		logger:   opts.Logger,
		prev:     status.NameSeed(opts.Seed, names),
		state:    Idle,
	}
	if w.sched == nil {
		w.sched = TickerScheduler{}
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("component", "watcher")

	return w, nil
}

// Watch builds and starts a watcher.
func Watch(callback Callback, opts Options) (CancelFunc, error) {
	w, err := New(callback, opts)
	if err != nil {
		return nil, err
	}
	return w.Start(), nil
}

// Start dispatches the forced first cycle (when Immediate) and arms the
// recurring schedule. Further calls return the same CancelFunc.
func (w *Watcher) Start() CancelFunc {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Idle {
		return w.Cancel
	}
	w.state = Running

	if w.opts.Immediate {
		go w.runCycle(true)
	}
	w.stop = w.sched.Every(w.opts.Rate, func() { w.runCycle(false) })

	w.logger.Info("watcher started",
		"rate", w.opts.Rate.String(),
		"immediate", w.opts.Immediate,
		"endpoints", len(w.opts.Endpoints),
		"match", string(w.opts.Match),
		"train", w.prev.Train,
	)

	return w.Cancel
}

// Cancel disarms the schedule. A cycle already in flight completes, and so
// does the forced first cycle dispatched by Start; later ticks are dropped.
func (w *Watcher) Cancel() {
	w.cancelOnce.Do(func() {
		w.mu.Lock()
		stop := w.stop
		w.stop = nil
		w.state = Cancelled
		w.mu.Unlock()

		if stop != nil {
			stop()
		}
		w.logger.Info("watcher cancelled")
	})
}

// State reports the lifecycle state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Status returns a copy of the current previous-status cell.
func (w *Watcher) Status() status.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prev.Clone()
}

// runCycle performs one fetch -> reduce -> (maybe) notify iteration.
// forced cycles always notify on success, wait for the cycle lock and
// run even if Cancel arrives first: they were dispatched by Start.
func (w *Watcher) runCycle(forced bool) {
	if forced {
		w.cycle.Lock()
	} else if !w.cycle.TryLock() {
		w.logger.Warn("cycle still in flight; skipping tick")
		return
	}
	defer w.cycle.Unlock()

	if !forced && w.State() == Cancelled {
		return
	}

	start := time.Now()
	res := w.poller.PollOnce(context.Background())
	durationMs := time.Since(start).Milliseconds()

	if res.Err != nil {
		w.logger.Error("cycle failed", "durationMs", durationMs, "error", res.Err)
		w.callback(w.Status(), res.Err)
		return
	}

	w.mu.Lock()
	next := status.Reduce(w.prev, res.Versions, w.now(), w.opts.Match)
	w.prev = next
	w.mu.Unlock()

	w.logger.Info("cycle complete",
		"durationMs", durationMs,
		"train", next.Train,
		"diffs", len(next.Diffs),
		"patches", len(next.Patches),
		"forced", forced,
	)

	if len(next.Diffs) > 0 || forced {
		w.callback(next.Clone(), nil)
	}
}
