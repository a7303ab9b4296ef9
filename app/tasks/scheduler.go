package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Scheduler rebuilds the feeds on a fixed interval. Tasks run one at a time
// on a single worker, so the output files only ever have one writer.
type Scheduler struct {
	builder   Builder
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(builder Builder, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		builder:   builder,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.EnqueueTask(NewBuildFeedTask(s.builder)); err != nil {
					slog.Debug("Skipping rebuild", "reason", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// EnqueueTask queues a task unless one is already pending.
func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case task := <-s.taskQueue:
			s.executeTask(task)
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	if err := task.Execute(s.ctx); err != nil {
		slog.Error("Task failed",
			"task_id", task.GetID(),
			"task_type", task.GetType(),
			"duration", task.GetDuration(),
			"error", err)
		return
	}

	slog.Debug("Task completed",
		"task_id", task.GetID(),
		"task_type", task.GetType(),
		"duration", task.GetDuration())
}
