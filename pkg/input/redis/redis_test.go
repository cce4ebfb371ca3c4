package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgger-go/flowgger/pkg/encoder/passthrough"
	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/queue"
	"github.com/flowgger-go/flowgger/pkg/record"
)

type echoDecoder struct{}

func (echoDecoder) Decode(raw []byte) (record.Record, error) {
	return record.Record{Hostname: "h", FullMsg: record.Str(string(raw))}, nil
}

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return srv, client
}

func TestRunProcessesQueuedItemAndRemovesFromTmp(t *testing.T) {
	srv, client := newClient(t)
	_, err := srv.Lpush("logs", "hello")
	require.NoError(t, err)

	q := queue.New(8)
	p := input.Pipeline{Decoder: echoDecoder{}, Encoder: passthrough.New(), Queue: q}
	in := New(client, "logs", 1, p)
	in.BlockTimeout = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Run(ctx)

	done := make(chan []byte, 1)
	go func() {
		v, _ := q.Dequeue()
		done <- v
	}()

	select {
	case v := <-done:
		assert.Equal(t, "hello", string(v))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dequeue")
	}

	time.Sleep(50 * time.Millisecond)
	n, err := client.LLen(context.Background(), "logs.tmp.1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRunDrainsStaleTmpListOnStartup(t *testing.T) {
	srv, client := newClient(t)
	_, err := srv.Lpush("logs.tmp.1", "stuck")
	require.NoError(t, err)

	q := queue.New(8)
	p := input.Pipeline{Decoder: echoDecoder{}, Encoder: passthrough.New(), Queue: q}
	in := New(client, "logs", 1, p)
	in.BlockTimeout = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Run(ctx)

	done := make(chan []byte, 1)
	go func() {
		v, _ := q.Dequeue()
		done <- v
	}()

	select {
	case v := <-done:
		assert.Equal(t, "stuck", string(v))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dequeue")
	}
}
