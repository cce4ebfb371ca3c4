// Package input defines the acceptor side of the pipeline: dedicated
// goroutines that accept connections or poll a source, drive a splitter
// over the bytes they receive, and push decode -> encode results onto the
// shared queue.
package input

import (
	"context"

	"github.com/flowgger-go/flowgger/pkg/decoder"
	"github.com/flowgger-go/flowgger/pkg/encoder"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

// Input runs its accept loop until ctx is cancelled. Implementations spawn
// their own per-connection goroutines as needed; Run itself blocks until
// the input is done accepting. The destination queue is bound at
// construction time via a Pipeline, not passed to Run.
type Input interface {
	Run(ctx context.Context)
}

// Pipeline holds the shared decode/encode/enqueue step every splitter-
// driven input runs once per frame. OnDecoded/OnEncoded/OnDropped are
// optional hooks a diagnostics surface can set to track running totals;
// left nil, Handle does plain decode -> encode -> enqueue.
type Pipeline struct {
	Decoder decoder.Decoder
	Encoder encoder.Encoder
	Queue   *queue.Queue

	OnDecoded func()
	OnEncoded func()
	OnDropped func()
}

// Handle decodes one frame, encodes the resulting record, and enqueues the
// bytes. Decode/encode errors are logged by the caller (which has the
// splitter-specific context to log against) and do not stop the loop.
func (p Pipeline) Handle(raw []byte) error {
	rec, err := p.Decoder.Decode(raw)
	if err != nil {
		p.dropped()
		return err
	}
	p.decoded()

	out, err := p.Encoder.Encode(rec)
	if err != nil {
		p.dropped()
		return err
	}
	p.encoded()

	p.Queue.Enqueue(out)
	return nil
}

func (p Pipeline) decoded() {
	if p.OnDecoded != nil {
		p.OnDecoded()
	}
}

func (p Pipeline) encoded() {
	if p.OnEncoded != nil {
		p.OnEncoded()
	}
}

func (p Pipeline) dropped() {
	if p.OnDropped != nil {
		p.OnDropped()
	}
}

// ErrKind labels err for the "<kind>: [<raw>]" diagnostic line: the
// decoder taxonomy kind when available, otherwise a generic encode tag.
func ErrKind(err error) string {
	if k := decoder.KindOf(err); k != "" {
		return string(k)
	}
	return "encode_error"
}
