package filetail

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowgger-go/flowgger/pkg/encoder/passthrough"
	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/queue"
	"github.com/flowgger-go/flowgger/pkg/record"
	"github.com/flowgger-go/flowgger/pkg/splitter/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDecoder struct{}

func (echoDecoder) Decode(raw []byte) (record.Record, error) {
	return record.Record{Hostname: "h", FullMsg: record.Str(string(raw))}, nil
}

func waitDequeue(t *testing.T, q *queue.Queue) ([]byte, bool) {
	t.Helper()
	type result struct {
		v  []byte
		ok bool
	}
	done := make(chan result, 1)
	go func() {
		v, ok := q.Dequeue()
		done <- result{v, ok}
	}()
	select {
	case r := <-done:
		return r.v, r.ok
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for dequeue")
		return nil, false
	}
}

func TestRunTailsExistingFileFromEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0o644))

	q := queue.New(8)
	p := input.Pipeline{Decoder: echoDecoder{}, Encoder: passthrough.New(), Queue: q}
	in := New(filepath.Join(dir, "*.log"), line.New(nil), p)
	in.PollInterval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("new line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	v, ok := waitDequeue(t, q)
	require.True(t, ok)
	assert.Equal(t, "new line", string(v))
}

func TestRunTailsNewlyCreatedFile(t *testing.T) {
	dir := t.TempDir()

	q := queue.New(8)
	p := input.Pipeline{Decoder: echoDecoder{}, Encoder: passthrough.New(), Queue: q}
	in := New(filepath.Join(dir, "*.log"), line.New(nil), p)
	in.PollInterval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(dir, "fresh.log")
	require.NoError(t, os.WriteFile(path, []byte("first line\n"), 0o644))

	v, ok := waitDequeue(t, q)
	require.True(t, ok)
	assert.Equal(t, "first line", string(v))
}
