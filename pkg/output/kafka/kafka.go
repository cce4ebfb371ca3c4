// Package kafka implements the Kafka output sink. The broker frames
// messages itself, so no merger is normally configured for this sink
// (output.framing defaults to noop for Kafka per the merger selection
// table).
package kafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/merger"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

// producer is the slice of *kgo.Client this package depends on, narrowed
// so tests can substitute a fake.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// Output produces each dequeued record to Topic via an already-constructed
// franz-go client. The client itself batches and retries; Output is a
// thin adapter from the queue to Client.Produce.
type Output struct {
	Client      producer
	Topic       string
	WorkerCount int
}

func New(client *kgo.Client, topic string) *Output {
	return &Output{Client: client, Topic: topic, WorkerCount: 1}
}

func (o *Output) Workers() int {
	if o.WorkerCount <= 0 {
		return 1
	}
	return o.WorkerCount
}

func (o *Output) Run(ctx context.Context, q *queue.Queue, m merger.Merger) {
	for {
		v, ok := q.Dequeue()
		if !ok {
			return
		}

		rec := &kgo.Record{Topic: o.Topic, Value: m.Merge(v)}
		o.Client.Produce(ctx, rec, func(_ *kgo.Record, err error) {
			if err != nil {
				log.Errorf("kafka output: produce to %s failed: %v", o.Topic, err)
			}
		})

		if ctx.Err() != nil {
			return
		}
	}
}
