// Package pipeline wires the input acceptors, the bounded queue, and the
// output worker pools together, and owns their shared lifecycle: outputs
// start first and block on dequeue, then inputs start producing, and on
// shutdown the queue is closed once every input's Run has returned. Output
// workers exit when the queue is closed and empty, or, once ctx is
// cancelled, after the record they are handling; records still queued at
// that point are not delivered.
package pipeline

import (
	"context"
	"sync"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/merger"
	"github.com/flowgger-go/flowgger/pkg/output"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

// OutputBinding pairs an output sink with the merger that frames records
// before the sink writes them.
type OutputBinding struct {
	Output output.Output
	Merger merger.Merger
}

type Pipeline struct {
	Queue   *queue.Queue
	Inputs  []input.Input
	Outputs []OutputBinding
}

func New(queueSize int, inputs []input.Input, outputs []OutputBinding) *Pipeline {
	return &Pipeline{Queue: queue.New(queueSize), Inputs: inputs, Outputs: outputs}
}

// Run blocks until every input has stopped (normally because ctx was
// cancelled) and every output worker has exited.
func (p *Pipeline) Run(ctx context.Context) {
	var outWG sync.WaitGroup
	for _, ob := range p.Outputs {
		workers := ob.Output.Workers()
		if workers <= 0 {
			workers = 1
		}
		for w := 0; w < workers; w++ {
			outWG.Add(1)
			go func(ob OutputBinding) {
				defer outWG.Done()
				ob.Output.Run(ctx, p.Queue, ob.Merger)
			}(ob)
		}
	}

	var inWG sync.WaitGroup
	for _, in := range p.Inputs {
		inWG.Add(1)
		go func(in input.Input) {
			defer inWG.Done()
			in.Run(ctx)
		}(in)
	}

	inWG.Wait()
	p.Queue.Close()
	outWG.Wait()
}
