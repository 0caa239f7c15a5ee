package services

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

// ErrWorkerStopped is returned by Submit once the pool is shutting down.
var ErrWorkerStopped = errors.New("worker stopped")

// Job is one screening run executed by the pool.
type Job func(ctx context.Context) (*models.ScreeningResult, error)

// Worker bounds how many screenings call upstream models at once.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	// Submit queues job and blocks until it finishes, ctx ends, or the pool stops.
	Submit(ctx context.Context, job Job) (*models.ScreeningResult, error)
}

type jobResult struct {
	result *models.ScreeningResult
	err    error
}

type queuedJob struct {
	ctx   context.Context
	run   Job
	reply chan jobResult
}

type worker struct {
	jobQueue    chan *queuedJob
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	log         *zap.Logger
}

func NewWorker(concurrency, queueSize int, log *zap.Logger) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &worker{
		jobQueue:    make(chan *queuedJob, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		log:         logger.OrNop(log),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("🚀 Starting worker pool", zap.Int("concurrency", w.concurrency), zap.Int("queue_size", cap(w.jobQueue)))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.log.Info("✅ Worker pool started")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 Stopping worker pool...")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("✅ Worker pool stopped")
	})
}

// Submit implements Worker.
func (w *worker) Submit(ctx context.Context, job Job) (*models.ScreeningResult, error) {
	q := &queuedJob{ctx: ctx, run: job, reply: make(chan jobResult, 1)}

	select {
	case <-w.stopChan:
		return nil, ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- q:
		w.log.Debug("📥 Job enqueued", zap.Int("queued", len(w.jobQueue)))
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.stopChan:
		return nil, ErrWorkerStopped
	}

	select {
	case res := <-q.reply:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.stopChan:
		// a job already running still delivers its result
		select {
		case res := <-q.reply:
			return res.result, res.err
		default:
			return nil, ErrWorkerStopped
		}
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			log.Debug("👷 Worker stopped")
			return
		case <-ctx.Done():
			log.Debug("👷 Worker context done")
			return
		case q := <-w.jobQueue:
			if err := q.ctx.Err(); err != nil {
				// submitter gave up while the job was queued
				q.reply <- jobResult{err: err}
				continue
			}
			result, err := q.run(q.ctx)
			if err != nil {
				log.Debug("❌ Job failed", zap.Error(err))
			}
			q.reply <- jobResult{result: result, err: err}
		}
	}
}
