package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/linkcheck/internal/domain"
	"github.com/hamed0406/linkcheck/internal/probe"
)

// DefaultWorkers is the pool width used when none is configured.
const DefaultWorkers = 5

var (
	ErrNoChecker      = errors.New("batch: no checker configured")
	ErrInvalidWorkers = errors.New("batch: worker count must be at least 1")
)

// Runner checks a batch of URLs with a fixed pool of workers.
type Runner struct {
	Logger  *zap.Logger
	Checker probe.Checker
	Workers int
}

func NewRunner(logger *zap.Logger, checker probe.Checker, workers int) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers == 0 {
		workers = DefaultWorkers
	}
	return &Runner{Logger: logger, Checker: checker, Workers: workers}
}

// Run checks every URL once and returns results in input order: result[i]
// belongs to urls[i]. Per-URL failures come back as records; an error means
// the pool itself could not run.
//
// Cancelling ctx does not stop a running batch. Each check is bounded by its
// strategy's own timeout.
func (r *Runner) Run(ctx context.Context, urls []string) ([]domain.CheckResult, error) {
	if r.Checker == nil {
		return nil, ErrNoChecker
	}
	if r.Workers < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidWorkers, r.Workers)
	}
	results := make([]domain.CheckResult, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	ctx = context.WithoutCancel(ctx)
	id := uuid.NewString()
	start := time.Now()
	r.log().Info("batch_start",
		zap.String("batch_id", id),
		zap.Int("urls", len(urls)),
		zap.Int("workers", r.Workers),
	)

	workers := r.Workers
	if workers > len(urls) {
		workers = len(urls)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				// each worker owns results[i] for the indices it pulls
				results[i] = r.checkOne(ctx, id, urls[i])
			}
		}()
	}
	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	working := 0
	for _, res := range results {
		if res.Working {
			working++
		}
	}
	r.log().Info("batch_done",
		zap.String("batch_id", id),
		zap.Int("urls", len(urls)),
		zap.Int("working", working),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

func (r *Runner) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) checkOne(ctx context.Context, batchID, target string) (res domain.CheckResult) {
	defer func() {
		if p := recover(); p != nil {
			r.log().Error("check_panic",
				zap.String("batch_id", batchID),
				zap.String("url", target),
				zap.Any("panic", p),
			)
			res = domain.CheckResult{
				URL:          target,
				Status:       domain.FailureLabel("İstek Hatası"),
				ResponseTime: domain.NotApplicable,
				ContentType:  domain.Unknown,
				Server:       domain.Unknown,
				Content:      fmt.Sprintf("İstek başarısız: %v", p),
			}
		}
	}()

	res = r.Checker.Check(ctx, target)
	r.log().Debug("url_checked",
		zap.String("batch_id", batchID),
		zap.String("url", target),
		zap.Bool("working", res.Working),
		zap.String("status", res.Status),
		zap.String("response_time", res.ResponseTime),
	)
	return res
}
