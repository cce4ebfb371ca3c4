// Package debug implements the stderr sink used for local inspection and
// smoke-testing a pipeline without a real downstream collector.
package debug

import (
	"context"
	"io"
	"os"

	"github.com/flowgger-go/flowgger/pkg/merger"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

type Output struct {
	Writer io.Writer
}

func New() *Output { return &Output{Writer: os.Stderr} }

func (*Output) Workers() int { return 1 }

func (o *Output) Run(ctx context.Context, q *queue.Queue, m merger.Merger) {
	w := o.Writer
	if w == nil {
		w = os.Stderr
	}
	for {
		v, ok := q.Dequeue()
		if !ok {
			return
		}
		w.Write(m.Merge(v))

		if ctx.Err() != nil {
			return
		}
	}
}
