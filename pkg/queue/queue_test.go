package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeue(t *testing.T) {
	q := New(2)
	q.Enqueue([]byte("a"))
	q.Enqueue([]byte("b"))
	assert.Equal(t, 2, q.Len())

	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", string(v))
}

func TestBlocksWhenFull(t *testing.T) {
	q := New(1)
	q.Enqueue([]byte("x"))

	done := make(chan struct{})
	go func() {
		q.Enqueue([]byte("y"))
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("enqueue should have blocked on a full queue")
	case <-time.After(50 * time.Millisecond):
	}

	q.Dequeue()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue never unblocked after a dequeue freed space")
	}
}

func TestCloseDrainsThenReturnsFalse(t *testing.T) {
	q := New(4)
	q.Enqueue([]byte("1"))
	q.Enqueue([]byte("2"))
	q.Close()

	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "1", string(v))

	v, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "2", string(v))

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestCloseIsIdempotentAndConcurrencySafe(t *testing.T) {
	q := New(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Close()
		}()
	}
	wg.Wait()
}
