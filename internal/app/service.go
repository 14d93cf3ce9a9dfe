// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/aimtrack/internal/adapters/mq/queue"
	workerpool "github.com/okian/aimtrack/internal/adapters/mq/worker"
	"github.com/okian/aimtrack/internal/adapters/repository"
	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/internal/domain/dedupe"
	"github.com/okian/aimtrack/internal/domain/energy"
	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/internal/domain/progress"
	"github.com/okian/aimtrack/internal/domain/types"
	"github.com/okian/aimtrack/pkg/logger"
	"github.com/okian/aimtrack/pkg/metrics"
)

// Service implements the API dependencies for the benchmark tracker.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog      *benchmark.Catalog
	entries      *repository.EntryStore
	leaderboards *repository.Leaderboards
	deduper      dedupe.Deduper
	entryQueue   *eventqueue.InMemoryQueue
	workerPool   *workerpool.Pool
	evaluator    *progress.Evaluator

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	parallelism int
	now         func() time.Time

	started bool
	// cancelWorkers ends the pool's context once Stop has drained the queue.
	cancelWorkers context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		parallelism: runtime.GOMAXPROCS(0),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting benchmark service...")

	customCatalog := s.catalog != nil
	if s.catalog == nil {
		c, err := benchmark.Default()
		if err != nil {
			return fmt.Errorf("load built-in catalog: %w", err)
		}
		s.catalog = c
	}

	s.entries = repository.NewEntryStore()
	s.leaderboards = repository.NewLeaderboards()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.entryQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.evaluator = progress.NewEvaluator(progress.WithParallelism(s.parallelism))

	scorer := &standingsScorer{catalog: s.catalog, entries: s.entries}
	s.workerPool = workerpool.NewPool(s.workerCount, s.entryQueue, s.entries, scorer, s.leaderboards)
	// Workers outlive ctx; only Stop ends them, after draining the queue.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelWorkers = cancel
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "benchmark service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("divisions", len(s.catalog.Divisions())),
		logger.Bool("customCatalog", customCatalog),
	)

	return nil
}

// Stop closes the queue and waits for the workers to drain it. Entries
// accepted by Submit are stored before Stop returns unless ctx expires first.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping benchmark service...")
	err := s.workerPool.Shutdown(ctx)
	s.cancelWorkers()
	s.started = false
	if err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
		return fmt.Errorf("stop workers: %w", err)
	}
	s.logger.Info(ctx, "benchmark service stopped")
	return nil
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Submit queues an uploaded entry for ingestion. An entry whose attempt
// (user, scenario, ctime) was already uploaded is reported as a duplicate.
func (s *Service) Submit(ctx context.Context, e model.Entry) (types.SubmitStatus, error) { //nolint:gocritic // hugeParam: entries are values throughout
	if err := s.running(); err != nil {
		return types.SubmitAccepted, err
	}
	if e.UserID == "" || e.Hash == "" {
		metrics.RecordEntryRejected("invalid")
		return types.SubmitAccepted, fmt.Errorf("submit: %w", repository.ErrInvalidEntry)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	key := e.Key()
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordEntryDuplicate()
		s.logger.Debug(ctx, "duplicate entry skipped",
			logger.String("user", e.UserID),
			logger.String("hash", e.Hash),
			logger.Int64("ctime", e.CTime),
		)
		return types.SubmitDuplicate, nil
	}

	if !s.entryQueue.Enqueue(ctx, e) {
		s.deduper.Unrecord(ctx, key)
		metrics.RecordEntryRejected("backpressure")
		return types.SubmitAccepted, ErrBackpressure
	}

	s.logger.Debug(ctx, "entry queued",
		logger.String("id", e.ID),
		logger.String("user", e.UserID),
		logger.String("scenario", e.Scenario),
		logger.Float64("score", e.Score),
	)
	return types.SubmitAccepted, nil
}

func (s *Service) division(board string) (*benchmark.Division, error) {
	b, err := benchmark.ParseBoard(board)
	if err != nil {
		return nil, err
	}
	return s.catalog.Lookup(b)
}

// Entries lists a user's entries on the scenarios of board within dateQuery,
// oldest first.
func (s *Service) Entries(ctx context.Context, user, board, dateQuery string) ([]model.Entry, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	div, err := s.division(board)
	if err != nil {
		return nil, err
	}
	r, err := progress.ParseDateQuery(dateQuery, s.now())
	if err != nil {
		return nil, err
	}
	return s.entries.List(ctx, user, div.Hashes(), r.From, r.To), nil
}

// LatestTimestamp returns the ctime of the user's newest entry, or 0.
func (s *Service) LatestTimestamp(ctx context.Context, user string) (int64, error) {
	if err := s.running(); err != nil {
		return 0, err
	}
	return s.entries.Latest(ctx, user), nil
}

// Progress evaluates the user's energy history on every benchmark of board.
func (s *Service) Progress(ctx context.Context, user, board string) (progress.Report, error) {
	if err := s.running(); err != nil {
		return progress.Report{}, err
	}
	div, err := s.division(board)
	if err != nil {
		return progress.Report{}, err
	}

	start := time.Now()
	report, err := s.evaluator.Evaluate(ctx, div, s.entries.List(ctx, user, div.Hashes(), progress.All().From, progress.All().To))
	if err != nil {
		return progress.Report{}, fmt.Errorf("evaluate progress: %w", err)
	}
	metrics.RecordEnergyLatency(float64(time.Since(start).Microseconds()) / 1000)
	return report, nil
}

// Energy returns the energy score is worth on scenario hash of board.
func (s *Service) Energy(_ context.Context, board, hash string, score float64) (types.EnergyReading, error) {
	if err := s.running(); err != nil {
		return types.EnergyReading{}, err
	}
	div, err := s.division(board)
	if err != nil {
		return types.EnergyReading{}, err
	}
	sc, err := div.Scenario(hash)
	if err != nil {
		return types.EnergyReading{}, err
	}

	e := div.Tier.Score(score, sc.Thresholds)
	reading := types.EnergyReading{
		Board:    div.Board.String(),
		Hash:     sc.Hash,
		Scenario: sc.Name,
		Score:    score,
		Energy:   e,
		RankName: energy.RankName(e),
	}
	if b, ok := div.BenchmarkOf(hash); ok {
		reading.Benchmark = b.ID
	}
	return reading, nil
}

func (s *Service) benchmark(board, id string) (string, error) {
	div, err := s.division(board)
	if err != nil {
		return "", err
	}
	if _, err := div.Benchmark(id); err != nil {
		return "", err
	}
	return div.Board.String(), nil
}

// TopN returns the best n players of a benchmark leaderboard.
func (s *Service) TopN(ctx context.Context, board, bench string, n int) ([]types.LeaderboardEntry, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	key, err := s.benchmark(board, bench)
	if err != nil {
		return nil, err
	}
	return s.leaderboards.TopN(ctx, key, bench, n)
}

// Rank returns a player's row on a benchmark leaderboard.
func (s *Service) Rank(ctx context.Context, board, bench, user string) (types.LeaderboardEntry, error) {
	if err := s.running(); err != nil {
		return types.LeaderboardEntry{}, err
	}
	key, err := s.benchmark(board, bench)
	if err != nil {
		return types.LeaderboardEntry{}, err
	}
	return s.leaderboards.Rank(ctx, key, bench, user)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	// Stored totals stay readable after Stop.
	if s.entries != nil {
		stats["totalEntries"] = s.entries.Count(ctx)
		stats["totalPlayers"] = s.entries.Players(ctx)
		stats["leaderboards"] = len(s.leaderboards.Boards())
	}

	if s.started {
		queueLen := s.entryQueue.Len(ctx)
		players := s.entries.Players(ctx)

		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPlayers(players)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of keys in the deduper.
func (s *Service) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
