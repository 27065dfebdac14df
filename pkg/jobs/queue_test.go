package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	done := make(chan struct{}, 2)

	q := NewQueue("payment-events", func(ctx context.Context, job Job) error {
		mu.Lock()
		seen[job.ID] = true
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "evt_1", Type: "payment_intent.succeeded"}))
	require.NoError(t, q.Enqueue(Job{ID: "evt_2", Type: "payment_intent.payment_failed"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("job not processed")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, seen["evt_1"])
	assert.True(t, seen["evt_2"])
}

func TestQueueRetriesThenReportsExhaustion(t *testing.T) {
	var attempts int32
	exhausted := make(chan Job, 1)

	q := NewQueue("payment-events", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("database unavailable")
	}, QueueConfig{
		Workers:     1,
		MaxRetries:  2,
		RetryDelay:  5 * time.Millisecond,
		OnExhausted: func(job Job, err error) { exhausted <- job },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "evt_1"}))

	select {
	case job := <-exhausted:
		assert.Equal(t, "evt_1", job.ID)
		assert.Equal(t, 3, job.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job never exhausted")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueRejectsJobsWhenNotRunning(t *testing.T) {
	q := NewQueue("payment-events", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{ID: "evt_1"}), ErrQueueStopped)
	assert.Equal(t, "payment-events", q.Name())
	assert.Zero(t, q.Pending())

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(Job{ID: "evt_2"}), ErrQueueStopped)
}

func TestQueueEnqueueFailsFastWhenBufferFull(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	q := NewQueue("payment-events", func(ctx context.Context, job Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.NoError(t, q.Enqueue(Job{ID: "evt_1"}))
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the first job")
	}
	require.NoError(t, q.Enqueue(Job{ID: "evt_2"}))
	assert.Equal(t, 1, q.Pending())
	assert.ErrorIs(t, q.Enqueue(Job{ID: "evt_3"}), ErrQueueFull)
}

func TestQueueTreatsPanicAsFailedAttempt(t *testing.T) {
	exhausted := make(chan error, 1)
	q := NewQueue("payment-events", func(ctx context.Context, job Job) error {
		panic("nil enrollment")
	}, QueueConfig{
		Workers:     1,
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
		OnExhausted: func(job Job, err error) { exhausted <- err },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "evt_1"}))
	select {
	case err := <-exhausted:
		assert.Contains(t, err.Error(), "nil enrollment")
	case <-time.After(2 * time.Second):
		t.Fatal("panicking job never exhausted")
	}
}

func TestQueueBackoffDoublesUpToCap(t *testing.T) {
	q := NewQueue("payment-events", nil, QueueConfig{RetryDelay: time.Second, MaxRetryDelay: 5 * time.Second})
	assert.Equal(t, time.Second, q.backoff(1))
	assert.Equal(t, 2*time.Second, q.backoff(2))
	assert.Equal(t, 4*time.Second, q.backoff(3))
	assert.Equal(t, 5*time.Second, q.backoff(4))
	assert.Equal(t, 5*time.Second, q.backoff(10))
}
