package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	DefaultWorkerCount = 2
	defaultQueueSize   = 32
	taskTimeout        = 5 * time.Minute
	maxRetryDelay      = 30 * time.Second
)

type FavoritesService interface {
	FavoritesRefresher
	SettingsLoader
}

// Options configure the scheduler. A zero Interval disables periodic
// refreshes; startup tasks still run.
type Options struct {
	Interval    time.Duration
	WorkerCount int
	RetryBase   time.Duration
}

type Scheduler struct {
	releases    ReleasesRefresher
	favorites   FavoritesService
	interval    time.Duration
	workerCount int
	retryBase   time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(releases ReleasesRefresher, favorites FavoritesService, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.WorkerCount <= 0 {
		opts.WorkerCount = DefaultWorkerCount
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = time.Second
	}

	return &Scheduler{
		releases:    releases,
		favorites:   favorites,
		interval:    opts.Interval,
		workerCount: opts.WorkerCount,
		retryBase:   opts.RetryBase,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, defaultQueueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.enqueueStartupTasks()

		if s.interval <= 0 {
			slog.Debug("Periodic refresh disabled")
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueRefreshTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if err := s.EnqueueTask(NewLoadSettingsTask(s.favorites)); err != nil {
		slog.Warn("Failed to enqueue LoadSettingsTask", "error", err)
	}
	s.enqueueRefreshTasks()
}

func (s *Scheduler) enqueueRefreshTasks() {
	if err := s.EnqueueTask(NewRefreshReleasesTask(s.releases)); err != nil {
		slog.Warn("Failed to enqueue RefreshReleasesTask", "error", err)
	}
	if err := s.EnqueueTask(NewRefreshFavoritesTask(s.favorites)); err != nil {
		slog.Warn("Failed to enqueue RefreshFavoritesTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	if s.ctx.Err() != nil {
		slog.Debug("Scheduler stopped during task", "type", string(task.GetType()), "id", task.GetID())
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(s.retryBase, task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "target", task.GetTarget(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

// retryDelay doubles base for every attempt, capped at 30s.
func retryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		return maxRetryDelay
	}

	delay := base * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
