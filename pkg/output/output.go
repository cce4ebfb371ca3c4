// Package output defines the sink side of the pipeline: workers that drain
// the shared queue, apply an optional merger, and deliver bytes to a
// transport.
package output

import (
	"context"

	"github.com/flowgger-go/flowgger/pkg/merger"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

// Output drains q until it closes or ctx is cancelled, applying m (which
// may be noop.Merger) to each dequeued record before delivery. Run is
// invoked once per worker goroutine; Workers reports how many of them
// pipeline.Run starts for this sink.
type Output interface {
	Run(ctx context.Context, q *queue.Queue, m merger.Merger)
	Workers() int
}
