package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yogeshhk/MiningResume/constants"
	"github.com/yogeshhk/MiningResume/internal/parser"
	"github.com/yogeshhk/MiningResume/internal/repository"
)

// Job is the smallest useful unit of background parse work.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// NewJob builds a Job for a document path with a fresh trace id.
func NewJob(path string) Job {
	return Job{Path: path, SubmittedAt: time.Now(), TraceID: uuid.New().String()}
}

// ParseQueue runs the parser over queued documents on a bounded worker pool,
// optionally persisting each result.
type ParseQueue struct {
	svc     *parser.Service
	results repository.ResultRepository // nil disables persistence
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ParseQueue)

func WithWorkers(n int) Option {
	return func(q *ParseQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ParseQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ParseQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewParseQueue(svc *parser.Service, results repository.ResultRepository, logger *slog.Logger, opts ...Option) *ParseQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ParseQueue{
		svc:     svc,
		results: results,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ParseQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.logger.Info("job status",
						"status", string(constants.JobStatusRunning),
						"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID)

					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					result := q.svc.ParseFile(ctx, job.Path)

					if q.results != nil {
						if _, err := q.results.Save(ctx, result); err != nil {
							q.logger.Error("result save failed",
								"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "error", err)
						}
					}
					cancel()

					if result.Success {
						q.logger.Info("processed document",
							"status", string(constants.JobStatusCompleted),
							"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID)
					} else {
						q.logger.Error("processing failed",
							"status", string(constants.JobStatusFailed),
							"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID,
							"error", deref(result.ErrorMessage))
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ParseQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document for parsing",
			"status", string(constants.JobStatusQueued), "path", job.Path)
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		q.ch <- job
	}
	return nil
}

func (q *ParseQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
