// Package nats implements an optional NATS publish sink, adapted from the
// teacher's pkg/nats client wrapper: a third broker output alongside Kafka,
// for topologies that already run a NATS bus between collectors.
package nats

import (
	"context"

	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/merger"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

// publisher narrows *nats.Conn/Client to what this sink needs, so tests
// can substitute a fake.
type publisher interface {
	Publish(subject string, data []byte) error
}

type Output struct {
	Client      publisher
	Subject     string
	WorkerCount int
}

func New(client publisher, subject string) *Output {
	return &Output{Client: client, Subject: subject, WorkerCount: 1}
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
		if err := o.Client.Publish(o.Subject, m.Merge(v)); err != nil {
			log.Errorf("nats output: publish to %s failed: %v", o.Subject, err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}
