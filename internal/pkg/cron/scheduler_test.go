package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddJobRejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler()
	assert.Error(t, s.AddJob("broken", 0, 0, func(ctx context.Context) error { return nil }))
}

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")

	var calls atomic.Int32
	require.NoError(t, s.AddJob("ok", time.Hour, 0, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))
	require.NoError(t, s.AddJob("failing", time.Hour, 0, func(ctx context.Context) error {
		calls.Add(1)
		return boom
	}))

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_TimeoutBoundsRun(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.AddJob("slow", time.Hour, 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_StartRunsOnTicksUntilStopped(t *testing.T) {
	s := NewScheduler()

	var calls atomic.Int32
	require.NoError(t, s.AddJob("tick", 5*time.Millisecond, 0, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))

	s.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}
