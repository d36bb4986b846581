// Package scheduler serializes the work done on one Program.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("elmls.scheduler")

// ErrStopped is returned when a task is submitted after StopScheduler.
var ErrStopped = errors.New("scheduler: stopped")

type Task struct {
	Name    string
	Execute func() error
}

type Scheduler struct {
	taskQueue       chan Task
	lowPriorityLock sync.Mutex
	stopChan        chan struct{}
	wg              sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewScheduler creates a new Scheduler with the specified queue size
func NewScheduler(queueSize int) *Scheduler {
	return &Scheduler{
		taskQueue: make(chan Task, queueSize),
		stopChan:  make(chan struct{}),
	}
}

// RunScheduler starts the scheduler loop. Tasks run one at a time in
// submission order.
func (s *Scheduler) RunScheduler() {
	go func() {
		for {
			select {
			case task, ok := <-s.taskQueue:
				if !ok {
					// Channel closed, exit the loop
					return
				}
				s.execute(task)
			case <-s.stopChan:
				// Stop signal received, drain the taskQueue and exit
				for task := range s.taskQueue {
					log.Debugf("draining task: %s", task.Name)
					s.execute(task)
				}
				return
			}
		}
	}()
}

func (s *Scheduler) execute(task Task) {
	defer s.wg.Done()
	log.Debugf("executing %s task", task.Name)
	if err := task.Execute(); err != nil {
		log.Errorf("task %s: %s", task.Name, err)
	}
}

// enqueue hands task to the loop, blocking while the queue is full.
func (s *Scheduler) enqueue(task Task) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return ErrStopped
	}
	s.wg.Add(1)
	s.taskQueue <- task
	return nil
}

// tryEnqueue is enqueue without blocking.
func (s *Scheduler) tryEnqueue(task Task) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	select {
	case s.taskQueue <- task:
		return true
	default:
		s.wg.Done()
		return false
	}
}

// SchedulePeriodicTask queues lowTask on startup and then once per
// interval. A tick is skipped when the queue is full.
func (s *Scheduler) SchedulePeriodicTask(interval time.Duration, lowTask Task) {
	ticker := time.NewTicker(interval)

	schedule := func() {
		s.lowPriorityLock.Lock()
		defer s.lowPriorityLock.Unlock()

		if s.tryEnqueue(lowTask) {
			log.Debugf("scheduled %s", lowTask.Name)
		} else {
			log.Debugf("skipped scheduling %s, queue is full", lowTask.Name)
		}
	}

	// Run the task on startup in a non-blocking manner
	go schedule()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				go schedule()
			case <-s.stopChan:
				// Stop scheduling periodic tasks
				return
			}
		}
	}()
}

// ScheduleHighPriorityTask runs a task asap without waiting for it.
func (s *Scheduler) ScheduleHighPriorityTask(task Task) error {
	return s.enqueue(task)
}

// Do runs fn on the scheduler and waits for it. When ctx ends first
// the task still runs but its result is discarded.
func (s *Scheduler) Do(ctx context.Context, name string, fn func() error) error {
	done := make(chan error, 1)
	err := s.enqueue(Task{
		Name: name,
		Execute: func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("task %s panicked: %v", name, r)
				}
				done <- err
			}()
			return fn()
		},
	})
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StopScheduler waits for all tasks to complete and stops the scheduler
func (s *Scheduler) StopScheduler() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	log.Debug("stopping scheduler")
	close(s.stopChan)  // Signal the scheduler to stop
	close(s.taskQueue) // Close the task queue to prevent further submissions
	s.mu.Unlock()

	s.wg.Wait() // Wait for all tasks to complete
	log.Debug("scheduler stopped")
}
