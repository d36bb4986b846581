package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jfmengels/elm-language-server/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerStop(t *testing.T) {
	s := scheduler.NewScheduler(10)

	taskExecuted := make(chan string, 10)
	testTask := scheduler.Task{
		Name: "TestTask",
		Execute: func() error {
			time.Sleep(10 * time.Millisecond) // Simulate work
			taskExecuted <- "TestTask executed"
			return nil
		},
	}

	s.RunScheduler()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.ScheduleHighPriorityTask(testTask))
	}
	s.StopScheduler()

	assert.Len(t, taskExecuted, 5, "stopping waits for queued tasks")
	assert.ErrorIs(t, s.ScheduleHighPriorityTask(testTask), scheduler.ErrStopped)
	assert.ErrorIs(t, s.Do(context.Background(), "late", func() error { return nil }), scheduler.ErrStopped)

	// stopping twice is harmless
	s.StopScheduler()
}

func TestSchedulerDo(t *testing.T) {
	s := scheduler.NewScheduler(4)
	s.RunScheduler()
	defer s.StopScheduler()

	var order []int
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Do(context.Background(), "append", func() error {
			order = append(order, i)
			return nil
		}))
	}
	assert.Equal(t, []int{0, 1, 2}, order)

	boom := errors.New("boom")
	assert.ErrorIs(t, s.Do(context.Background(), "fail", func() error { return boom }), boom)

	err := s.Do(context.Background(), "panic", func() error { panic("kaboom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestSchedulerDoCanceled(t *testing.T) {
	s := scheduler.NewScheduler(4)
	s.RunScheduler()
	defer s.StopScheduler()

	release := make(chan struct{})
	require.NoError(t, s.ScheduleHighPriorityTask(scheduler.Task{
		Name:    "block",
		Execute: func() error { <-release; return nil },
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Bool
	err := s.Do(ctx, "discarded", func() error { ran.Store(true); return nil })
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, s.Do(context.Background(), "after", func() error { return nil }))
	assert.True(t, ran.Load(), "a discarded task still runs")
}

func TestSchedulePeriodicTask(t *testing.T) {
	s := scheduler.NewScheduler(4)
	s.RunScheduler()

	var runs atomic.Int32
	s.SchedulePeriodicTask(5*time.Millisecond, scheduler.Task{
		Name:    "warm",
		Execute: func() error { runs.Add(1); return nil },
	})

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
	s.StopScheduler()
}
