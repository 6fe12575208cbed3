// Package scheduler fans pricing computations out to a background worker
// goroutine so large catalog runs never block the caller. Tasks are
// multiplexed over one long-lived worker via correlation IDs; each task
// settles exactly once through result, error, timeout or cancel-all.
//
// Cancellation is global: CancelAll settles every pending task and recycles
// the worker, so a stale in-flight computation can never deliver a late
// result into a new task's slot. Per-task cancellation is a known limitation
// of the reference behavior and is deliberately not offered.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/constants"
	"go.uber.org/zap"
)

var (
	// ErrWorkerUnavailable is reported when dispatching against a closed
	// scheduler. Callers decide whether to degrade to chunked synchronous
	// computation; the scheduler never silently runs on the caller's
	// goroutine.
	ErrWorkerUnavailable = errors.New("background worker unavailable")

	// ErrCancelled settles tasks discarded by CancelAll or Close.
	ErrCancelled = errors.New("task cancelled")
)

// TimeoutError settles a task whose worker reply missed the deadline.
type TimeoutError struct {
	ID      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s timed out after %s", e.ID, e.Timeout)
}

// ProgressFunc receives progress checkpoints in [0,1]. It is invoked from the
// worker goroutine and must not block.
type ProgressFunc func(progress float64)

// Config holds scheduler tuning parameters. Zero values fall back to defaults.
type Config struct {
	// TaskTimeout is the per-task deadline. Defaults to 30 seconds.
	TaskTimeout time.Duration

	// QueueDepth is the dispatch queue capacity. Defaults to 128.
	QueueDepth int
}

type outcome struct {
	data interface{}
	err  error
}

type pendingTask struct {
	id         string
	onProgress ProgressFunc
	done       chan outcome
	timer      *time.Timer
}

type workItem struct {
	task Task
	gen  uint64
}

// Scheduler owns the pending-task map and the background worker. The map is
// mutated only under the scheduler's lock, by dispatch, settle, timeout and
// cancel-all.
type Scheduler struct {
	logger  *zap.Logger
	timeout time.Duration
	depth   int

	// execFn runs a task's computation; replaced in tests.
	execFn func(Task, func(float64)) (interface{}, error)

	mu           sync.Mutex
	pending      map[string]*pendingTask
	gen          uint64
	tasks        chan workItem
	workerCancel context.CancelFunc
	closed       bool
}

// New creates a scheduler and starts its background worker.
func New(logger *zap.Logger, cfg Config) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = constants.DefaultTaskTimeoutSeconds * time.Second
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = constants.DefaultTaskQueueDepth
	}

	s := &Scheduler{
		logger:  logger,
		timeout: cfg.TaskTimeout,
		depth:   cfg.QueueDepth,
		execFn:  execute,
		pending: make(map[string]*pendingTask),
	}
	s.startWorkerLocked()
	return s
}

// startWorkerLocked spins up a fresh worker generation. Callers must hold the
// lock, except New which has exclusive access.
func (s *Scheduler) startWorkerLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	s.tasks = make(chan workItem, s.depth)
	s.workerCancel = cancel
	go s.runWorker(ctx, s.tasks)
}

// Pending is the caller's handle on a dispatched task.
type Pending struct {
	id   string
	done <-chan outcome
}

// ID returns the task's correlation ID.
func (p *Pending) ID() string { return p.id }

// Wait blocks until the task settles or ctx is done. The result is the
// kind-specific payload (*BatchResult, *ScenariosResult or *MarketResult).
func (p *Pending) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case oc := <-p.done:
		return oc.data, oc.err
	}
}

// Dispatch submits a task. It never fails synchronously: every failure mode,
// including a closed scheduler, a duplicate correlation ID or a full queue,
// settles through the returned handle.
func (s *Scheduler) Dispatch(task Task, onProgress ProgressFunc) *Pending {
	done := make(chan outcome, 1)
	handle := &Pending{id: task.ID, done: done}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- outcome{err: ErrWorkerUnavailable}
		return handle
	}
	if task.ID == "" {
		s.mu.Unlock()
		done <- outcome{err: calcerr.Validation("id", "correlation id is required")}
		return handle
	}
	if _, exists := s.pending[task.ID]; exists {
		s.mu.Unlock()
		done <- outcome{err: calcerr.Validationf("id", "correlation id %q already in flight", task.ID)}
		return handle
	}

	pt := &pendingTask{id: task.ID, onProgress: onProgress, done: done}
	gen := s.gen
	pt.timer = time.AfterFunc(s.timeout, func() { s.onTimeout(task.ID, gen) })
	s.pending[task.ID] = pt

	select {
	case s.tasks <- workItem{task: task, gen: gen}:
	default:
		delete(s.pending, task.ID)
		pt.timer.Stop()
		s.mu.Unlock()
		done <- outcome{err: calcerr.Validationf("queue", "dispatch queue full (%d tasks)", s.depth)}
		return handle
	}
	s.mu.Unlock()

	s.logger.Debug("task dispatched",
		zap.String("op", "scheduler.Dispatch"),
		zap.String("id", task.ID),
		zap.String("kind", string(task.Kind)),
	)
	return handle
}

// runWorker executes tasks to completion, one at a time. Progress and results
// carry the worker's generation so replies from a recycled worker are dropped.
func (s *Scheduler) runWorker(ctx context.Context, tasks <-chan workItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-tasks:
			s.mu.Lock()
			fn := s.execFn
			s.mu.Unlock()
			data, err := fn(item.task, func(progress float64) {
				s.postProgress(item.task.ID, item.gen, progress)
			})
			s.settle(item.task.ID, item.gen, outcome{data: data, err: err})
		}
	}
}

// settle resolves or rejects a pending task exactly once. Late replies (id no
// longer tracked) and stale-generation replies are dropped.
func (s *Scheduler) settle(id string, gen uint64, oc outcome) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	pt, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("dropping late reply for untracked task",
			zap.String("op", "scheduler.settle"),
			zap.String("id", id),
		)
		return
	}
	delete(s.pending, id)
	pt.timer.Stop()
	s.mu.Unlock()

	pt.done <- oc
}

// postProgress forwards a checkpoint to the task's progress callback without
// settling it.
func (s *Scheduler) postProgress(id string, gen uint64, progress float64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	pt, ok := s.pending[id]
	var fn ProgressFunc
	if ok {
		fn = pt.onProgress
	}
	s.mu.Unlock()

	if fn != nil {
		fn(progress)
	}
}

// onTimeout rejects a task that missed its deadline. The worker's eventual
// reply, if any, finds the id untracked and is ignored.
func (s *Scheduler) onTimeout(id string, gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	pt, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.mu.Unlock()

	s.logger.Warn("task timed out",
		zap.String("op", "scheduler.onTimeout"),
		zap.String("id", id),
		zap.Duration("timeout", s.timeout),
	)
	pt.done <- outcome{err: &TimeoutError{ID: id, Timeout: s.timeout}}
}

// CancelAll rejects every pending task and recycles the worker. No awaiting
// caller is left hanging: each settles with ErrCancelled.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	cancelled := s.drainLocked()
	if !s.closed {
		s.workerCancel()
		s.gen++
		s.startWorkerLocked()
	}
	s.mu.Unlock()

	for _, pt := range cancelled {
		pt.done <- outcome{err: ErrCancelled}
	}
	if len(cancelled) > 0 {
		s.logger.Info("cancelled all pending tasks",
			zap.String("op", "scheduler.CancelAll"),
			zap.Int("count", len(cancelled)),
		)
	}
}

// Close stops the worker permanently. Pending tasks settle with ErrCancelled;
// later dispatches settle with ErrWorkerUnavailable.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancelled := s.drainLocked()
	s.workerCancel()
	s.gen++
	s.mu.Unlock()

	for _, pt := range cancelled {
		pt.done <- outcome{err: ErrCancelled}
	}
}

// drainLocked removes every pending task, stopping its timer. Callers must
// hold the lock and settle the returned tasks after releasing it.
func (s *Scheduler) drainLocked() []*pendingTask {
	drained := make([]*pendingTask, 0, len(s.pending))
	for id, pt := range s.pending {
		pt.timer.Stop()
		drained = append(drained, pt)
		delete(s.pending, id)
	}
	return drained
}

// PendingCount reports the number of in-flight tasks.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
