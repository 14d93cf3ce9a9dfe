// Package worker drains the entry queue: each entry is stored, scored against
// every benchmark it belongs to, and pushed into the leaderboards.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/pkg/logger"
	"github.com/okian/aimtrack/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Recorder persists entries.
type Recorder interface {
	// Insert stores the entry; it reports false when the entry was already stored.
	Insert(ctx context.Context, e model.Entry) (bool, error)
}

// Scorer computes the benchmark standings an entry affects.
type Scorer interface {
	Standings(ctx context.Context, e model.Entry) ([]model.Standing, error)
}

// Updater records a standing on its leaderboard.
type Updater interface {
	UpdateBest(ctx context.Context, s model.Standing) (bool, error)
}

// Queue defines how workers receive entries.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Entry
}

// InMemoryWorker processes entries from a queue.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	scorer   Scorer
	updater  Updater
	name     string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, recorder Recorder, scorer Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: recorder,
		scorer:   scorer,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes entries until the queue is drained and closed, ctx ends or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// The forwarder stops with the worker instead of blocking on a send.
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	entries := w.queue.Dequeue(fctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "error processing entry", logger.String("key", e.Key()), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after the entry in flight.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, e model.Entry) error { //nolint:gocritic // hugeParam: Entry arrives by value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	stored, err := w.recorder.Insert(ctx, e)
	if err != nil {
		w.fail("store_error")
		return fmt.Errorf("store entry: %w", err)
	}
	if !stored {
		metrics.RecordEntryDuplicate()
		return nil
	}
	metrics.RecordEntryIngested()

	scoreStart := time.Now()
	standings, err := w.scorer.Standings(ctx, e)
	metrics.RecordEnergyLatency(float64(time.Since(scoreStart).Microseconds()) / 1000)
	if err != nil {
		w.fail("scoring_error")
		return fmt.Errorf("score entry: %w", err)
	}

	for _, s := range standings {
		updated, err := w.updater.UpdateBest(ctx, s)
		if err != nil {
			w.fail("leaderboard_error")
			return fmt.Errorf("update %s/%s: %w", s.Board, s.Benchmark, err)
		}
		if updated {
			metrics.RecordLeaderboardUpdate()
		}
	}
	return nil
}

func (w *InMemoryWorker) fail(kind string) {
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a worker pool. A workerCount below 1 selects a multiple of
// the CPU count.
func NewPool(workerCount int, q Queue, recorder Recorder, scorer Scorer, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, recorder, scorer, updater, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// busy when ctx or the pool timeout expires are stopped without waiting
// further; entries left in the queue are then lost.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(drainCtx)
		}
	}
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, drainCtx.Err())
	}
	return nil
}
