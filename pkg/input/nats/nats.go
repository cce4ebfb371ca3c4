// Package nats implements an optional NATS subscribe input, symmetric to
// the nats output: a third broker source alongside TCP/TLS/UDP, for
// topologies that already run a NATS bus feeding collectors.
package nats

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
)

// subscription narrows *nats.Subscription to what this source needs.
type subscription interface {
	Unsubscribe() error
}

// subscriber narrows *nats.Conn to what this source needs, so tests can
// substitute a fake.
type subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (subscription, error)
}

type connAdapter struct{ *nats.Conn }

func (c connAdapter) Subscribe(subject string, cb nats.MsgHandler) (subscription, error) {
	return c.Conn.Subscribe(subject, cb)
}

type Input struct {
	Client   subscriber
	Subject  string
	Pipeline input.Pipeline
}

func New(client *nats.Conn, subject string, p input.Pipeline) *Input {
	return &Input{Client: connAdapter{client}, Subject: subject, Pipeline: p}
}

func (i *Input) Run(ctx context.Context) {
	sub, err := i.Client.Subscribe(i.Subject, func(msg *nats.Msg) {
		if procErr := i.Pipeline.Handle(msg.Data); procErr != nil {
			log.DecodeError(input.ErrKind(procErr), msg.Data)
		}
	})
	if err != nil {
		log.Errorf("nats input: subscribe to %s: %v", i.Subject, err)
		return
	}

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		log.Warnf("nats input: unsubscribe from %s: %v", i.Subject, err)
	}
}
