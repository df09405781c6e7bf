package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	To string
}

func TestQueueDeliversTypedPayload(t *testing.T) {
	var mu sync.Mutex
	var got []delivery
	done := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, job Job[delivery]) error {
		mu.Lock()
		got = append(got, job.Payload)
		mu.Unlock()
		close(done)
		return nil
	}, QueueConfig{Workers: 1})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[delivery]{ID: "j1", Payload: delivery{To: "tutee@example.edu"}}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "tutee@example.edu", got[0].To)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, job Job[delivery]) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 2 {
			return errors.New("transient failure")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[delivery]{ID: "j1"}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not retried")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job[delivery]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job[delivery]{ID: "j1"}))
}
